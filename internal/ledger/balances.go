package ledger

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// pairKey is the canonical key for an unordered user pair: low sorts before
// high lexicographically. One key per pair avoids double bookkeeping.
type pairKey struct {
	low, high string
}

// PairBalance is the net balance between two users in a group. Net is
// positive and means Counterparty owes User that amount.
type PairBalance struct {
	User         string
	Counterparty string
	Net          money.Amount
}

// GroupBalanceSheet holds the net pairwise balances for one group. It is
// derived, never persisted; build one with ComputeGroupBalanceSheet.
type GroupBalanceSheet struct {
	// net maps each canonical pair to a signed amount: positive means
	// key.high owes key.low.
	net     map[pairKey]money.Amount
	members map[string]bool
}

// NewGroupBalanceSheet returns an empty sheet.
func NewGroupBalanceSheet() *GroupBalanceSheet {
	return &GroupBalanceSheet{
		net:     make(map[pairKey]money.Amount),
		members: make(map[string]bool),
	}
}

// ComputeGroupBalanceSheet folds a group's complete expense list into a
// sheet of net pairwise balances. Accumulation is commutative, so the order
// of the expense list does not affect the result.
//
// If any expense fails split resolution the whole computation fails with
// ErrInvalidSplit naming that expense; no partial sheet is returned.
func ComputeGroupBalanceSheet(expenses []*models.Expense) (*GroupBalanceSheet, error) {
	sheet := NewGroupBalanceSheet()
	for _, e := range expenses {
		contributions, err := ResolveContributions(e)
		if err != nil {
			return nil, err
		}
		sheet.members[e.PayerID] = true
		for _, c := range contributions {
			sheet.members[c.ParticipantID] = true
			// The payer's own share is not a debt to themselves.
			if c.ParticipantID == e.PayerID {
				continue
			}
			sheet.add(c.ParticipantID, e.PayerID, c.Owed)
		}
	}
	return sheet, nil
}

// add records that debtor owes creditor amount, folding it into the pair's
// canonical entry.
func (s *GroupBalanceSheet) add(debtor, creditor string, amount money.Amount) {
	if debtor == creditor || amount.IsZero() {
		return
	}
	if debtor < creditor {
		// debtor is key.low; positive means high owes low, so low owing
		// high goes in negative.
		s.net[pairKey{debtor, creditor}] -= amount
	} else {
		s.net[pairKey{creditor, debtor}] += amount
	}
}

// ApplySettlement folds a recorded payment from one user to another into the
// sheet: paying a creditor reduces the payer's debt, and an overpayment
// flips the direction.
func (s *GroupBalanceSheet) ApplySettlement(from, to string, amount money.Amount) {
	s.members[from] = true
	s.members[to] = true
	// A payment acts as a credit in the opposite direction of a debt.
	s.add(to, from, amount)
}

// Net returns the net balance between user and counterparty from the user's
// perspective: positive means counterparty owes user. Zero for unknown users
// or a settled pair.
func (s *GroupBalanceSheet) Net(user, counterparty string) money.Amount {
	if user == counterparty {
		return money.Zero
	}
	if user < counterparty {
		return s.net[pairKey{user, counterparty}]
	}
	return -s.net[pairKey{counterparty, user}]
}

// Settled reports whether the two users owe each other nothing.
func (s *GroupBalanceSheet) Settled(a, b string) bool {
	return s.Net(a, b).IsZero()
}

// Members returns every user that appears in the sheet, sorted.
func (s *GroupBalanceSheet) Members() []string {
	members := make([]string, 0, len(s.members))
	for m := range s.members {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}

// MemberNet returns a user's net position in the group: what others owe them
// minus what they owe others. Summed across all members this is always zero.
func (s *GroupBalanceSheet) MemberNet(user string) money.Amount {
	var net money.Amount
	for m := range s.members {
		net += s.Net(user, m)
	}
	return net
}

// Entries returns the non-settled pair balances, oriented so Net is always
// positive (Counterparty owes User), sorted by creditor then debtor. Settled
// pairs are omitted; consumers observe them as zero via Net and Settled.
func (s *GroupBalanceSheet) Entries() []PairBalance {
	entries := make([]PairBalance, 0, len(s.net))
	for k, v := range s.net {
		switch {
		case v.IsPositive():
			entries = append(entries, PairBalance{User: k.low, Counterparty: k.high, Net: v})
		case v.IsNegative():
			entries = append(entries, PairBalance{User: k.high, Counterparty: k.low, Net: -v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].User != entries[j].User {
			return entries[i].User < entries[j].User
		}
		return entries[i].Counterparty < entries[j].Counterparty
	})
	return entries
}
