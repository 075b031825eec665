package ledger

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

func TestComputeGroupBalanceSheet_SingleEqualExpense(t *testing.T) {
	// 30.00 paid by u1, split equally among u1, u2, u3:
	// u2 and u3 each owe u1 10.00; u1's own share is not a debt.
	expenses := []*models.Expense{{
		ID: "e1", PayerID: "u1", Amount: 3000,
		SplitMethod: models.SplitEqual,
		Shares:      equalShares("u1", "u2", "u3"),
	}}

	sheet, err := ComputeGroupBalanceSheet(expenses)
	if err != nil {
		t.Fatalf("ComputeGroupBalanceSheet failed: %v", err)
	}

	if got := sheet.Net("u1", "u2"); got != 1000 {
		t.Errorf("Net(u1, u2) = %s, want 10.00", got)
	}
	if got := sheet.Net("u1", "u3"); got != 1000 {
		t.Errorf("Net(u1, u3) = %s, want 10.00", got)
	}
	if got := sheet.Net("u2", "u1"); got != -1000 {
		t.Errorf("Net(u2, u1) = %s, want -10.00", got)
	}
	if !sheet.Settled("u2", "u3") {
		t.Error("u2 and u3 should be settled")
	}
	if got := sheet.Net("u1", "u1"); !got.IsZero() {
		t.Errorf("self net = %s, want zero", got)
	}

	entries := sheet.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.User != "u1" || e.Net != 1000 {
			t.Errorf("unexpected entry %+v", e)
		}
	}
}

func TestComputeGroupBalanceSheet_OffsettingExpenses(t *testing.T) {
	// E1: 50 paid by u1 split between u1 and u2 -> u2 owes u1 25.
	// E2: 20 paid by u2 split between u1 and u2 -> u1 owes u2 10.
	// Net: u2 owes u1 15.00.
	expenses := []*models.Expense{
		{
			ID: "e1", PayerID: "u1", Amount: 5000,
			SplitMethod: models.SplitEqual,
			Shares:      equalShares("u1", "u2"),
		},
		{
			ID: "e2", PayerID: "u2", Amount: 2000,
			SplitMethod: models.SplitEqual,
			Shares:      equalShares("u1", "u2"),
		},
	}

	sheet, err := ComputeGroupBalanceSheet(expenses)
	if err != nil {
		t.Fatalf("ComputeGroupBalanceSheet failed: %v", err)
	}
	if got := sheet.Net("u1", "u2"); got != 1500 {
		t.Errorf("Net(u1, u2) = %s, want 15.00", got)
	}
}

func TestComputeGroupBalanceSheet_PayerOutsideParticipants(t *testing.T) {
	// u3 pays for u1 and u2 without taking a share.
	expenses := []*models.Expense{{
		ID: "e1", PayerID: "u3", Amount: 4000,
		SplitMethod: models.SplitEqual,
		Shares:      equalShares("u1", "u2"),
	}}

	sheet, err := ComputeGroupBalanceSheet(expenses)
	if err != nil {
		t.Fatalf("ComputeGroupBalanceSheet failed: %v", err)
	}
	if got := sheet.Net("u3", "u1"); got != 2000 {
		t.Errorf("Net(u3, u1) = %s, want 20.00", got)
	}
	if got := sheet.Net("u3", "u2"); got != 2000 {
		t.Errorf("Net(u3, u2) = %s, want 20.00", got)
	}
}

func TestComputeGroupBalanceSheet_InvalidExpenseFailsWhole(t *testing.T) {
	expenses := []*models.Expense{
		{
			ID: "good", PayerID: "u1", Amount: 1000,
			SplitMethod: models.SplitEqual,
			Shares:      equalShares("u1", "u2"),
		},
		{
			ID: "bad", PayerID: "u1", Amount: 10000,
			SplitMethod: models.SplitUnequal,
			Shares: []models.Share{
				{ParticipantID: "u1", Value: dec("40")},
				{ParticipantID: "u2", Value: dec("50")},
			},
		},
	}

	sheet, err := ComputeGroupBalanceSheet(expenses)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("error = %v, want ErrInvalidSplit", err)
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error %q does not name the offending expense", err)
	}
	if sheet != nil {
		t.Error("expected no partial sheet on failure")
	}
}

// Accumulation is commutative: any permutation of the expense list yields an
// identical sheet.
func TestComputeGroupBalanceSheet_PermutationInvariance(t *testing.T) {
	expenses := []*models.Expense{
		{ID: "e1", PayerID: "u1", Amount: 3001, SplitMethod: models.SplitEqual, Shares: equalShares("u1", "u2", "u3")},
		{ID: "e2", PayerID: "u2", Amount: 1250, SplitMethod: models.SplitEqual, Shares: equalShares("u2", "u3")},
		{ID: "e3", PayerID: "u3", Amount: 9999, SplitMethod: models.SplitPercentage, Shares: []models.Share{
			{ParticipantID: "u1", Value: dec("25")},
			{ParticipantID: "u2", Value: dec("25")},
			{ParticipantID: "u3", Value: dec("50")},
		}},
		{ID: "e4", PayerID: "u1", Amount: 700, SplitMethod: models.SplitUnequal, Shares: []models.Share{
			{ParticipantID: "u2", Value: dec("3.00")},
			{ParticipantID: "u3", Value: dec("4.00")},
		}},
	}

	reference, err := ComputeGroupBalanceSheet(expenses)
	if err != nil {
		t.Fatalf("ComputeGroupBalanceSheet failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]*models.Expense, len(expenses))
		copy(shuffled, expenses)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		sheet, err := ComputeGroupBalanceSheet(shuffled)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		for _, a := range reference.Members() {
			for _, b := range reference.Members() {
				if got, want := sheet.Net(a, b), reference.Net(a, b); got != want {
					t.Fatalf("trial %d: Net(%s, %s) = %s, want %s", trial, a, b, got, want)
				}
			}
		}
	}
}

// Every user's net position summed across the group is zero: debts and
// credits always cancel out.
func TestComputeGroupBalanceSheet_ZeroSum(t *testing.T) {
	expenses := []*models.Expense{
		{ID: "e1", PayerID: "u1", Amount: 3001, SplitMethod: models.SplitEqual, Shares: equalShares("u1", "u2", "u3", "u4")},
		{ID: "e2", PayerID: "u4", Amount: 555, SplitMethod: models.SplitEqual, Shares: equalShares("u1", "u2")},
		{ID: "e3", PayerID: "u2", Amount: 12345, SplitMethod: models.SplitPercentage, Shares: []models.Share{
			{ParticipantID: "u1", Value: dec("10")},
			{ParticipantID: "u3", Value: dec("90")},
		}},
	}

	sheet, err := ComputeGroupBalanceSheet(expenses)
	if err != nil {
		t.Fatalf("ComputeGroupBalanceSheet failed: %v", err)
	}

	var total money.Amount
	for _, m := range sheet.Members() {
		total += sheet.MemberNet(m)
	}
	if !total.IsZero() {
		t.Errorf("group net positions sum to %s, want zero", total)
	}
}

func TestComputeGroupBalanceSheet_SelfPaymentNeutrality(t *testing.T) {
	// The payer covering only themselves produces no balances at all.
	expenses := []*models.Expense{{
		ID: "solo", PayerID: "u1", Amount: 1500,
		SplitMethod: models.SplitEqual,
		Shares:      equalShares("u1"),
	}}

	sheet, err := ComputeGroupBalanceSheet(expenses)
	if err != nil {
		t.Fatalf("ComputeGroupBalanceSheet failed: %v", err)
	}
	if entries := sheet.Entries(); len(entries) != 0 {
		t.Errorf("got %d entries, want none", len(entries))
	}
	if got := sheet.MemberNet("u1"); !got.IsZero() {
		t.Errorf("MemberNet(u1) = %s, want zero", got)
	}
}

func TestApplySettlement(t *testing.T) {
	expenses := []*models.Expense{{
		ID: "e1", PayerID: "u1", Amount: 3000,
		SplitMethod: models.SplitEqual,
		Shares:      equalShares("u1", "u2", "u3"),
	}}

	sheet, err := ComputeGroupBalanceSheet(expenses)
	if err != nil {
		t.Fatalf("ComputeGroupBalanceSheet failed: %v", err)
	}

	// u2 pays their 10.00 debt in full.
	sheet.ApplySettlement("u2", "u1", 1000)
	if !sheet.Settled("u1", "u2") {
		t.Errorf("u1/u2 should be settled, net = %s", sheet.Net("u1", "u2"))
	}

	// u3 overpays; the direction flips.
	sheet.ApplySettlement("u3", "u1", 1500)
	if got := sheet.Net("u3", "u1"); got != 500 {
		t.Errorf("Net(u3, u1) after overpayment = %s, want 5.00", got)
	}
}

func TestEmptySheet(t *testing.T) {
	sheet, err := ComputeGroupBalanceSheet(nil)
	if err != nil {
		t.Fatalf("ComputeGroupBalanceSheet failed: %v", err)
	}
	if len(sheet.Entries()) != 0 || len(sheet.Members()) != 0 {
		t.Error("empty expense list should produce an empty sheet")
	}
	if !sheet.Settled("a", "b") {
		t.Error("unknown users should read as settled")
	}
}
