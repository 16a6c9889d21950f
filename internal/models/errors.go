package models

import "errors"

// Sentinel errors shared across packages.
var (
	ErrNotFound          = errors.New("record not found")
	ErrStaleQuote        = errors.New("quote captured after commence time")
	ErrScoreMismatch     = errors.New("cross-source score mismatch")
	ErrSeasonNotLoaded   = errors.New("season not loaded")
	ErrInsufficientTrain = errors.New("insufficient training seasons")
)
