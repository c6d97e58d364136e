package models

import "errors"

// Custom errors
var (
	ErrZeroAmericanOdds = errors.New("american odds of zero are undefined")
	ErrNilMarket        = errors.New("market is nil")
	ErrMismatchedPair   = errors.New("markets do not quote the same line")
	ErrNotFound         = errors.New("record not found")
	ErrInvalidID        = errors.New("invalid ID format")
)
