package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/money"
)

// SplitMethod is the rule for dividing an expense among its participants.
type SplitMethod string

const (
	// SplitEqual divides the amount equally among the listed participants.
	// Share values are ignored.
	SplitEqual SplitMethod = "equal"

	// SplitUnequal uses each share value as an absolute currency amount.
	// The share values must sum to the expense amount.
	SplitUnequal SplitMethod = "unequal"

	// SplitPercentage uses each share value as percentage points.
	// The share values must sum to 100.
	SplitPercentage SplitMethod = "percentage"
)

// Valid reports whether m is one of the known split methods.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitUnequal, SplitPercentage:
		return true
	}
	return false
}

// Share is one participant's declared share of an expense. The meaning of
// Value depends on the expense's SplitMethod; for SplitEqual it is ignored.
type Share struct {
	// ParticipantID identifies the participant. Must be unique within one
	// expense's share list.
	ParticipantID string

	// Value is the raw share value: a currency amount for SplitUnequal,
	// percentage points for SplitPercentage. Decimal so that fractional
	// percentages (e.g. 33.5) are representable exactly.
	Value decimal.Decimal
}

// Expense is an immutable record of a shared cost. The payer covered the full
// amount; each participant owes the payer their resolved share.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g. "Plane Tickets").
	Description string

	// PayerID is the user who paid the full amount. The payer does not have
	// to appear in Shares; when they do, their own share cancels out.
	PayerID string

	// Amount is the full positive amount paid, in minor units.
	Amount money.Amount

	// SplitMethod selects how Shares are interpreted.
	SplitMethod SplitMethod

	// Shares lists the participants and their raw share values, in input
	// order. Order matters: leftover minor units from rounding are assigned
	// to the earliest participants.
	Shares []Share

	// CreatedAt is the Unix timestamp when the expense was recorded.
	// Informational only; it never affects balance computation.
	CreatedAt int64
}

// ParticipantIDs returns the participant ids in share order.
func (e *Expense) ParticipantIDs() []string {
	ids := make([]string, len(e.Shares))
	for i, s := range e.Shares {
		ids[i] = s.ParticipantID
	}
	return ids
}
