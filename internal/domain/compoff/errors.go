package compoff

import "errors"

var (
	ErrCompOffNotFound     = errors.New("comp-off not found")
	ErrCompOffNotEarned    = errors.New("comp-off is not in earned state")
	ErrCompOffNotUsed      = errors.New("comp-off is not in used state")
	ErrCompOffExists       = errors.New("comp-off already granted for this source")
	ErrSplitExceedsCredit  = errors.New("split amount exceeds comp-off credit")
	ErrInvalidCreditAmount = errors.New("credit days must be positive")
)
