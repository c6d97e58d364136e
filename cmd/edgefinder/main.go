// Package main provides the edgefinder CLI: market scans, de-vig and Kelly
// tools, and the bet ledger from the command line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/edge-finder/internal/analysis"
	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/devig"
	"github.com/yourusername/edge-finder/internal/kelly"
	"github.com/yourusername/edge-finder/internal/ledger"
	"github.com/yourusername/edge-finder/internal/logger"
	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/oddsapi"
	"github.com/yourusername/edge-finder/internal/repository"
	"github.com/yourusername/edge-finder/internal/scanner"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "edgefinder",
	Short: "Find +EV bets, arbitrage and middles across sportsbooks",
	Long: `EdgeFinder compares odds across sportsbooks, strips the vig to estimate
fair probabilities, and surfaces positive expected value bets, arbitrage
opportunities and middles. Stakes are sized with fractional Kelly.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			region := os.Getenv("AWS_REGION")
			secretName := os.Getenv("AWS_SECRET_NAME")
			if region == "" || secretName == "" {
				return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
			}
			if err := config.LoadSecretsFromAWS(cmd.Context(), cfg, region, secretName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}

		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = logger.New(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(scanCmd, arbCmd, devigCmd, sizeCmd, clvCmd, sportsCmd, versionCmd, newBetsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edgefinder %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [sports...]",
	Short: "Scan sports for +EV bets, arbitrage and middles",
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := runScan(cmd.Context(), args)
		if err != nil {
			return err
		}
		for _, res := range results {
			printEVBets(res)
			printArbs(res)
			printMiddles(res)
		}
		return nil
	},
}

var arbCmd = &cobra.Command{
	Use:   "arb [sports...]",
	Short: "Scan sports for arbitrage opportunities only",
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := runScan(cmd.Context(), args)
		if err != nil {
			return err
		}
		found := false
		for _, res := range results {
			if len(res.Arbs) > 0 {
				printArbs(res)
				found = true
			}
		}
		if !found {
			fmt.Println("No arbitrage opportunities found.")
		}
		return nil
	},
}

var devigCmd = &cobra.Command{
	Use:   "devig <odds> [odds...]",
	Short: "Strip the vig from a set of American prices",
	Long: `Removes the bookmaker margin from the quoted prices of mutually exclusive
outcomes. Methods: ` + strings.Join(devig.Methods(), ", ") + `.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, _ := cmd.Flags().GetString("method")

		var implied []float64
		var american []int
		for _, arg := range args {
			price, err := strconv.Atoi(arg)
			if err != nil || price == 0 {
				return fmt.Errorf("invalid American price %q", arg)
			}
			american = append(american, price)
			implied = append(implied, 1.0/models.AmericanToDecimal(price))
		}

		result, err := devig.Devig(implied, devig.Method(method))
		if err != nil {
			return err
		}

		fmt.Printf("Method: %s   Vig removed: %.2f%%\n\n", result.Method, result.VigRemoved*100)
		fmt.Printf("%-10s %-12s %-12s %s\n", "Quoted", "Implied", "Fair", "Fair odds")
		for i, p := range result.FairProbs {
			fmt.Printf("%-10s %-12.4f %-12.4f %+d\n",
				formatAmerican(american[i]), implied[i], p, models.ProbToAmerican(p))
		}
		return nil
	},
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size a bet with fractional Kelly",
	RunE: func(cmd *cobra.Command, args []string) error {
		prob, _ := cmd.Flags().GetFloat64("prob")
		odds, _ := cmd.Flags().GetInt("odds")
		bankroll, _ := cmd.Flags().GetFloat64("bankroll")

		if prob <= 0 || prob >= 1 {
			return fmt.Errorf("--prob must be between 0 and 1 exclusive")
		}
		if odds == 0 {
			return fmt.Errorf("--odds must be a non-zero American price")
		}
		if bankroll <= 0 {
			bankroll = cfg.Betting.Bankroll
		}

		dec := models.AmericanToDecimal(odds)
		result := kelly.Criterion(prob, dec, bankroll,
			cfg.Betting.KellyFraction, cfg.Betting.MaxBetPercent)

		fmt.Printf("Win probability: %.2f%%   Odds: %s (%.3f)\n", prob*100, formatAmerican(odds), dec)
		fmt.Printf("Edge:            %+.4f\n", result.Edge)
		fmt.Printf("Full Kelly:      %.4f\n", result.FullKelly)
		fmt.Printf("Fraction used:   %.4f (%.2f Kelly, capped at %.0f%%)\n",
			result.RecommendedFraction, cfg.Betting.KellyFraction, cfg.Betting.MaxBetPercent*100)
		fmt.Printf("Stake:           $%.2f of $%.2f\n", result.RecommendedStake, bankroll)
		if result.RecommendedStake == 0 {
			fmt.Println("\nNo bet: the edge is zero or negative at this price.")
		}
		return nil
	},
}

var clvCmd = &cobra.Command{
	Use:   "clv <bet-odds> <closing-odds>",
	Short: "Compute closing line value for a placed bet",
	Long: `Compares the American price you took against the closing price. Positive
CLV means you beat the close, the strongest predictor of long-term edge.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		betOdds, err := strconv.Atoi(args[0])
		if err != nil || betOdds == 0 {
			return fmt.Errorf("invalid American price %q", args[0])
		}
		closeOdds, err := strconv.Atoi(args[1])
		if err != nil || closeOdds == 0 {
			return fmt.Errorf("invalid American price %q", args[1])
		}

		clv := analysis.CLV(models.AmericanToDecimal(betOdds), models.AmericanToDecimal(closeOdds))
		fmt.Printf("Bet at %s, closed %s: CLV %+.2f%%\n",
			formatAmerican(betOdds), formatAmerican(closeOdds), clv)
		return nil
	},
}

var sportsCmd = &cobra.Command{
	Use:   "sports",
	Short: "List sports available from the odds provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := oddsapi.NewClient(cfg.OddsAPI, appLog)
		defer client.Close()

		sports, err := client.Sports(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%-30s %-25s %s\n", "Key", "Group", "Title")
		for _, s := range sports {
			if !s.Active {
				continue
			}
			fmt.Printf("%-30s %-25s %s\n", s.Key, s.Group, s.Title)
		}
		return nil
	},
}

func newBetsCmd() *cobra.Command {
	betsCmd := &cobra.Command{
		Use:   "bets",
		Short: "Track bets in the ledger",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a bet; stake defaults to the Kelly recommendation",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			event, _ := cmd.Flags().GetString("event")
			selection, _ := cmd.Flags().GetString("selection")
			odds, _ := cmd.Flags().GetInt("odds")
			prob, _ := cmd.Flags().GetFloat64("prob")
			stake, _ := cmd.Flags().GetFloat64("stake")
			notes, _ := cmd.Flags().GetString("notes")

			bet, err := svc.CreateBet(cmd.Context(), ledger.CreateParams{
				Event:        event,
				Selection:    selection,
				AmericanOdds: odds,
				WinProb:      prob,
				Stake:        stake,
				Notes:        notes,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Recorded %s: %s %s for $%.2f (EV %+.2f%%)\n",
				bet.ID, bet.Selection, formatAmerican(bet.AmericanOdds), bet.Stake, bet.EVPercent)
			return nil
		},
	}
	addCmd.Flags().String("event", "", "Event name")
	addCmd.Flags().String("selection", "", "Selection backed")
	addCmd.Flags().Int("odds", 0, "American price taken")
	addCmd.Flags().Float64("prob", 0, "Estimated win probability")
	addCmd.Flags().Float64("stake", 0, "Stake; 0 sizes with fractional Kelly")
	addCmd.Flags().String("notes", "", "Free-form notes")
	addCmd.MarkFlagRequired("event")
	addCmd.MarkFlagRequired("selection")
	addCmd.MarkFlagRequired("odds")
	addCmd.MarkFlagRequired("prob")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent bets",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			limit, _ := cmd.Flags().GetInt("limit")
			bets, err := svc.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Printf("%-36s %-8s %-10s %-8s %s\n", "ID", "Status", "Stake", "Odds", "Event / Selection")
			for _, bet := range bets {
				fmt.Printf("%-36s %-8s $%-9.2f %-8s %s / %s\n",
					bet.ID, bet.Status, bet.Stake, formatAmerican(bet.AmericanOdds),
					bet.Event, bet.Selection)
			}
			return nil
		},
	}
	listCmd.Flags().Int("limit", 50, "Maximum bets to list")

	settleCmd := &cobra.Command{
		Use:   "settle <id> <won|lost|void>",
		Short: "Settle a pending bet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", models.ErrInvalidID, args[0])
			}

			bet, err := svc.Settle(cmd.Context(), id, models.BetStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("Settled %s as %s (%+.2f)\n", bet.ID, bet.Status, bet.ResultAmount)
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ledger performance",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Bets:             %d (%d pending, %d void)\n", stats.TotalBets, stats.Pending, stats.Voids)
			fmt.Printf("Record:           %d-%d (%.1f%%)\n", stats.Wins, stats.Losses, stats.WinRate*100)
			fmt.Printf("Total staked:     $%.2f\n", stats.TotalStaked)
			fmt.Printf("Profit/loss:      $%+.2f\n", stats.ProfitLoss)
			fmt.Printf("ROI:              %+.2f%%\n", stats.ROIPercent)
			fmt.Printf("Pending exposure: $%.2f\n", stats.PendingExposure)
			return nil
		},
	}

	betsCmd.AddCommand(addCmd, listCmd, settleCmd, statsCmd)
	return betsCmd
}

func init() {
	devigCmd.Flags().String("method", string(devig.DefaultMethod), "De-vig method")
	sizeCmd.Flags().Float64("prob", 0, "Estimated win probability")
	sizeCmd.Flags().Int("odds", 0, "American price offered")
	sizeCmd.Flags().Float64("bankroll", 0, "Bankroll; defaults to the configured value")
}

func runScan(ctx context.Context, sports []string) ([]*scanner.Result, error) {
	if len(sports) == 0 {
		for name := range cfg.Sports.Keys {
			sports = append(sports, name)
		}
		if len(sports) == 0 {
			return nil, fmt.Errorf("no sports given and none configured")
		}
		sort.Strings(sports)
	}

	client := oddsapi.NewClient(cfg.OddsAPI, appLog)
	defer client.Close()

	svc := scanner.NewService(cfg, client, appLog)
	return svc.Scan(ctx, sports, nil)
}

func openLedger(ctx context.Context) (*ledger.Service, func(), error) {
	if !cfg.LedgerEnabled() {
		return nil, nil, fmt.Errorf("no ledger database configured; set database.host in %s", configFile)
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	repo := repository.NewPostgresBetRepository(db)
	return ledger.NewService(repo, cfg.Betting, appLog), db.Close, nil
}

func printEVBets(res *scanner.Result) {
	fmt.Printf("=== %s: %d +EV bets ===\n", res.Sport, len(res.EVBets))
	for _, bet := range res.EVBets {
		fmt.Printf("%+.2f%%  %s %s (%s)  %s at %s  fair %s  stake $%.2f\n",
			bet.EVPercent,
			bet.Market.Event,
			bet.Market.Selection,
			bet.Market.MarketType,
			formatAmerican(bet.BestOdds.American),
			bet.BestOdds.Bookmaker,
			formatAmerican(bet.FairAmerican()),
			bet.RecommendedStake,
		)
	}
	fmt.Println()
}

func printArbs(res *scanner.Result) {
	if len(res.Arbs) == 0 {
		return
	}
	fmt.Printf("=== %s: %d arbitrage opportunities ===\n", res.Sport, len(res.Arbs))
	for _, arb := range res.Arbs {
		fmt.Printf("%.2f%%  %s (%s)\n", arb.ProfitPercent, arb.Event, arb.MarketType)
		for _, stake := range arb.Stakes {
			fmt.Printf("        $%.2f on %s at %s\n", stake.Stake, stake.Selection, stake.Bookmaker)
		}
	}
	fmt.Println()
}

func printMiddles(res *scanner.Result) {
	if len(res.Middles) == 0 {
		return
	}
	fmt.Printf("=== %s: %d middles ===\n", res.Sport, len(res.Middles))
	for _, mid := range res.Middles {
		fmt.Printf("%.1f pts  %s: %s %s (%s) / %s %s (%s)\n",
			mid.MiddleSize, mid.Event,
			mid.SideA, formatAmerican(mid.OddsA), mid.BookA,
			mid.SideB, formatAmerican(mid.OddsB), mid.BookB)
	}
	fmt.Println()
}

func formatAmerican(odds int) string {
	return fmt.Sprintf("%+d", odds)
}
