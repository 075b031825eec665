// Package ledger computes balances from group expenses: it resolves each
// expense's split into per-participant contributions, folds a group's
// expenses into net pairwise balances, and aggregates those balances into a
// per-user summary across groups.
//
// The engine is pure: it holds no state between calls, never mutates its
// input, and does all currency arithmetic in integer minor units.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// sumTolerance is how far a declared share sum may drift from the expense
// amount (or from 100 for percentages) before the split is rejected: one
// minor unit, i.e. ±0.01 in major units.
var sumTolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Contribution is one participant's resolved owed amount for a single
// expense.
type Contribution struct {
	ParticipantID string
	Owed          money.Amount
}

// ResolveContributions converts an expense into one contribution per
// participant, in share order. For SplitEqual and SplitPercentage the
// contributions sum to the expense amount exactly: leftover minor units are
// assigned to the earliest participants. For SplitUnequal the raw share
// values are used directly.
//
// Returns ErrInvalidSplit if the expense amount is not positive, the
// participant list is empty or contains duplicates, the split method is
// unknown, or the shares do not reconcile with the amount.
func ResolveContributions(e *models.Expense) ([]Contribution, error) {
	if !e.Amount.IsPositive() {
		return nil, invalidSplit(e.ID, "amount %s must be positive", e.Amount)
	}
	if len(e.Shares) == 0 {
		return nil, invalidSplit(e.ID, "participant list is empty")
	}
	seen := make(map[string]bool, len(e.Shares))
	for _, s := range e.Shares {
		if s.ParticipantID == "" {
			return nil, invalidSplit(e.ID, "share with empty participant id")
		}
		if seen[s.ParticipantID] {
			return nil, invalidSplit(e.ID, "duplicate participant %s", s.ParticipantID)
		}
		seen[s.ParticipantID] = true
	}

	switch e.SplitMethod {
	case models.SplitEqual:
		return resolveEqual(e), nil
	case models.SplitUnequal:
		return resolveUnequal(e)
	case models.SplitPercentage:
		return resolvePercentage(e)
	default:
		return nil, invalidSplit(e.ID, "unknown split method %q", e.SplitMethod)
	}
}

// resolveEqual divides the amount equally, giving the leftover minor units to
// the first participants in input order: 10.00 over three people is
// 3.34, 3.33, 3.33.
func resolveEqual(e *models.Expense) []Contribution {
	n := int64(len(e.Shares))
	base := int64(e.Amount) / n
	rem := int64(e.Amount) % n

	contributions := make([]Contribution, len(e.Shares))
	for i, s := range e.Shares {
		owed := base
		if int64(i) < rem {
			owed++
		}
		contributions[i] = Contribution{ParticipantID: s.ParticipantID, Owed: money.Amount(owed)}
	}
	return contributions
}

// resolveUnequal uses each share value as an absolute amount. The values must
// be positive, representable in minor units, and sum to the expense amount
// within tolerance.
func resolveUnequal(e *models.Expense) ([]Contribution, error) {
	contributions := make([]Contribution, len(e.Shares))
	var sum money.Amount
	for i, s := range e.Shares {
		owed, err := money.FromDecimal(s.Value)
		if err != nil {
			return nil, invalidSplit(e.ID, "share for %s: %v", s.ParticipantID, err)
		}
		if !owed.IsPositive() {
			return nil, invalidSplit(e.ID, "share %s for %s must be positive", owed, s.ParticipantID)
		}
		contributions[i] = Contribution{ParticipantID: s.ParticipantID, Owed: owed}
		sum += owed
	}
	if diff := (sum - e.Amount).Abs(); diff > 1 {
		return nil, invalidSplit(e.ID, "shares sum to %s, expense amount is %s", sum, e.Amount)
	}
	return contributions, nil
}

// resolvePercentage converts percentage-point shares to amounts. Each exact
// share is floored to minor units and the leftover is distributed to the
// earliest participants, so the contributions always sum to the expense
// amount exactly.
func resolvePercentage(e *models.Expense) ([]Contribution, error) {
	var pctSum decimal.Decimal
	for _, s := range e.Shares {
		if s.Value.IsNegative() || s.Value.GreaterThan(hundred) {
			return nil, invalidSplit(e.ID, "percentage %s for %s outside [0,100]", s.Value, s.ParticipantID)
		}
		pctSum = pctSum.Add(s.Value)
	}
	if diff := pctSum.Sub(hundred).Abs(); diff.GreaterThan(sumTolerance) {
		return nil, invalidSplit(e.ID, "percentages sum to %s, want 100", pctSum)
	}

	amountMinor := decimal.NewFromInt(int64(e.Amount))
	contributions := make([]Contribution, len(e.Shares))
	var floored int64
	for i, s := range e.Shares {
		exact := s.Value.Mul(amountMinor).Div(hundred)
		owed := exact.Floor().IntPart()
		contributions[i] = Contribution{ParticipantID: s.ParticipantID, Owed: money.Amount(owed)}
		floored += owed
	}
	distributeRemainder(contributions, int64(e.Amount)-floored)
	return contributions, nil
}

// distributeRemainder spreads leftover minor units one at a time over the
// first participants in input order. A negative leftover (percentages summing
// just above 100) is taken back the same way, skipping shares already at
// zero so that no contribution goes negative.
func distributeRemainder(contributions []Contribution, leftover int64) {
	if leftover >= 0 {
		for i := int64(0); i < leftover; i++ {
			contributions[i%int64(len(contributions))].Owed++
		}
		return
	}
	// The floored shares always sum to more than the overage being removed,
	// so a positive share remains until leftover reaches zero.
	for i := 0; leftover < 0; i = (i + 1) % len(contributions) {
		if contributions[i].Owed > 0 {
			contributions[i].Owed--
			leftover++
		}
	}
}
