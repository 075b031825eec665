package ledger

import (
	"errors"
	"fmt"
)

// ErrInvalidSplit is returned when an expense's declared shares are
// inconsistent with its amount or structurally malformed. It is never
// silently corrected: a group computation that hits it fails whole, so a
// caller can never display a sheet missing one expense's effect.
//
// Check with errors.Is(err, ledger.ErrInvalidSplit).
var ErrInvalidSplit = errors.New("invalid split")

// invalidSplit builds an ErrInvalidSplit naming the offending expense.
func invalidSplit(expenseID, format string, args ...any) error {
	return fmt.Errorf("%w: expense %s: %s", ErrInvalidSplit, expenseID, fmt.Sprintf(format, args...))
}
