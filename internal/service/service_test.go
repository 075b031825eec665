package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// newTestStore creates a temp-file SQLite store torn down with the test.
func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "splitledger-svc-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createGroup(t *testing.T, store storage.Store, name string, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: name, Members: members}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func equalShares(ids ...string) []models.Share {
	shares := make([]models.Share, len(ids))
	for i, id := range ids {
		shares[i] = models.Share{ParticipantID: id}
	}
	return shares
}

func TestExpenseService_Create(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store)
	ctx := context.Background()
	group := createGroup(t, store, "Trip", "alice", "bob")

	t.Run("valid expense is stored with contributions returned", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			Description: "Dinner",
			PayerID:     "alice",
			Amount:      3000,
			SplitMethod: models.SplitEqual,
			Shares:      equalShares("alice", "bob", "carol"),
		}
		contributions, err := svc.Create(ctx, expense)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if len(contributions) != 3 {
			t.Fatalf("got %d contributions, want 3", len(contributions))
		}
		if contributions[0].Owed != 1000 {
			t.Errorf("first contribution = %s, want 10.00", contributions[0].Owed)
		}

		// carol was not a group member; she must have been auto-added.
		updated, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if !updated.HasMember("carol") {
			t.Errorf("carol not auto-added, members = %v", updated.Members)
		}
	})

	t.Run("invalid split is rejected and never stored", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			Description: "Broken",
			PayerID:     "alice",
			Amount:      10000,
			SplitMethod: models.SplitUnequal,
			Shares: []models.Share{
				{ParticipantID: "alice", Value: decimal.RequireFromString("40")},
				{ParticipantID: "bob", Value: decimal.RequireFromString("50")},
			},
		}
		_, err := svc.Create(ctx, expense)
		if !errors.Is(err, ledger.ErrInvalidSplit) {
			t.Fatalf("error = %v, want ErrInvalidSplit", err)
		}

		expenses, err := store.ListExpenses(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		for _, e := range expenses {
			if e.Description == "Broken" {
				t.Error("invalid expense was persisted")
			}
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     "missing",
			PayerID:     "alice",
			Amount:      100,
			SplitMethod: models.SplitEqual,
			Shares:      equalShares("alice"),
		}
		if _, err := svc.Create(ctx, expense); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing payer", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			Amount:      100,
			SplitMethod: models.SplitEqual,
			Shares:      equalShares("alice"),
		}
		if _, err := svc.Create(ctx, expense); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestExpenseService_GetListDelete(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store)
	ctx := context.Background()
	group := createGroup(t, store, "Flat", "alice", "bob")

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: "Rent",
		PayerID:     "alice",
		Amount:      100000,
		SplitMethod: models.SplitPercentage,
		Shares: []models.Share{
			{ParticipantID: "alice", Value: decimal.RequireFromString("60")},
			{ParticipantID: "bob", Value: decimal.RequireFromString("40")},
		},
	}
	if _, err := svc.Create(ctx, expense); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, contributions, err := svc.Get(ctx, expense.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Description != "Rent" {
		t.Errorf("Description = %s, want Rent", got.Description)
	}
	if len(contributions) != 2 || contributions[0].Owed != 60000 || contributions[1].Owed != 40000 {
		t.Errorf("unexpected contributions %+v", contributions)
	}

	expenses, err := svc.List(ctx, group.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Errorf("got %d expenses, want 1", len(expenses))
	}

	if err := svc.Delete(ctx, expense.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, _, err := svc.Get(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error after delete = %v, want ErrNotFound", err)
	}
}

func TestGroupService_Settlements(t *testing.T) {
	store := newTestStore(t)
	svc := NewGroupService(store)
	ctx := context.Background()
	group := createGroup(t, store, "Trip", "alice", "bob")

	tests := []struct {
		name       string
		settlement models.Settlement
		wantErr    error
	}{
		{
			name:       "valid settlement",
			settlement: models.Settlement{GroupID: group.ID, FromUserID: "bob", ToUserID: "alice", Amount: 1000},
		},
		{
			name:       "self settlement",
			settlement: models.Settlement{GroupID: group.ID, FromUserID: "bob", ToUserID: "bob", Amount: 1000},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "non-positive amount",
			settlement: models.Settlement{GroupID: group.ID, FromUserID: "bob", ToUserID: "alice", Amount: 0},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "non-member party",
			settlement: models.Settlement{GroupID: group.ID, FromUserID: "mallory", ToUserID: "alice", Amount: 100},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "unknown group",
			settlement: models.Settlement{GroupID: "missing", FromUserID: "bob", ToUserID: "alice", Amount: 100},
			wantErr:    storage.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RecordSettlement(ctx, &tt.settlement)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("RecordSettlement failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	settlements, err := svc.ListSettlements(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(settlements) != 1 {
		t.Errorf("got %d settlements, want 1", len(settlements))
	}
}

func TestBalanceService_GroupBalances(t *testing.T) {
	store := newTestStore(t)
	expenses := NewExpenseService(store)
	groups := NewGroupService(store)
	balances := NewBalanceService(store)
	ctx := context.Background()
	group := createGroup(t, store, "Trip", "alice", "bob")

	// alice pays 50 split equally, bob pays 20 split equally:
	// net bob owes alice 15.00.
	for _, e := range []*models.Expense{
		{GroupID: group.ID, Description: "Fuel", PayerID: "alice", Amount: 5000,
			SplitMethod: models.SplitEqual, Shares: equalShares("alice", "bob")},
		{GroupID: group.ID, Description: "Snacks", PayerID: "bob", Amount: 2000,
			SplitMethod: models.SplitEqual, Shares: equalShares("alice", "bob")},
	} {
		if _, err := expenses.Create(ctx, e); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	view, err := balances.GroupBalances(ctx, group.ID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	if len(view.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(view.Pairs))
	}
	pair := view.Pairs[0]
	if pair.User != "alice" || pair.Counterparty != "bob" || pair.Net != 1500 {
		t.Errorf("unexpected pair %+v", pair)
	}
	if len(view.Simplified) != 1 || view.Simplified[0].From != "bob" || view.Simplified[0].Amount != 1500 {
		t.Errorf("unexpected settle-up plan %+v", view.Simplified)
	}

	// bob settles up; the group reads settled afterwards.
	if err := groups.RecordSettlement(ctx, &models.Settlement{
		GroupID: group.ID, FromUserID: "bob", ToUserID: "alice", Amount: 1500,
	}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	view, err = balances.GroupBalances(ctx, group.ID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	if len(view.Pairs) != 0 {
		t.Errorf("expected settled group, got pairs %+v", view.Pairs)
	}
	if len(view.Simplified) != 0 {
		t.Errorf("expected empty plan, got %+v", view.Simplified)
	}
	for _, m := range view.Members {
		if !m.Net.IsZero() {
			t.Errorf("member %s net = %s, want zero", m.UserID, m.Net)
		}
	}
}

func TestBalanceService_GroupBalances_InvalidExpense(t *testing.T) {
	store := newTestStore(t)
	balances := NewBalanceService(store)
	ctx := context.Background()
	group := createGroup(t, store, "Trip", "alice", "bob")

	// Write a malformed expense directly to the store, bypassing service
	// validation, to confirm read-side failure is all-or-nothing.
	bad := &models.Expense{
		GroupID:     group.ID,
		Description: "Corrupt",
		PayerID:     "alice",
		Amount:      10000,
		SplitMethod: models.SplitUnequal,
		Shares: []models.Share{
			{ParticipantID: "alice", Value: decimal.RequireFromString("40")},
			{ParticipantID: "bob", Value: decimal.RequireFromString("50")},
		},
	}
	if err := store.CreateExpense(ctx, bad); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if _, err := balances.GroupBalances(ctx, group.ID); !errors.Is(err, ledger.ErrInvalidSplit) {
		t.Errorf("error = %v, want ErrInvalidSplit", err)
	}
}

func TestBalanceService_UserSummary(t *testing.T) {
	store := newTestStore(t)
	expenses := NewExpenseService(store)
	balances := NewBalanceService(store)
	ctx := context.Background()

	trip := createGroup(t, store, "Trip", "alice", "bob", "carol")
	flat := createGroup(t, store, "Flat", "alice", "bob")

	// Trip: alice paid 30.00 for everyone -> owed 20.00.
	if _, err := expenses.Create(ctx, &models.Expense{
		GroupID: trip.ID, Description: "Dinner", PayerID: "alice", Amount: 3000,
		SplitMethod: models.SplitEqual, Shares: equalShares("alice", "bob", "carol"),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Flat: bob paid 40.00 for both -> alice owes 20.00.
	if _, err := expenses.Create(ctx, &models.Expense{
		GroupID: flat.ID, Description: "Internet", PayerID: "bob", Amount: 4000,
		SplitMethod: models.SplitEqual, Shares: equalShares("alice", "bob"),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	summary, err := balances.UserSummary(ctx, "alice")
	if err != nil {
		t.Fatalf("UserSummary failed: %v", err)
	}
	if summary.TotalOwedToUser != 2000 {
		t.Errorf("TotalOwedToUser = %s, want 20.00", summary.TotalOwedToUser)
	}
	if summary.TotalUserOwes != 2000 {
		t.Errorf("TotalUserOwes = %s, want 20.00", summary.TotalUserOwes)
	}
	if len(summary.Groups) != 2 {
		t.Errorf("got %d group summaries, want 2", len(summary.Groups))
	}

	// carol only belongs to the trip group.
	summary, err = balances.UserSummary(ctx, "carol")
	if err != nil {
		t.Fatalf("UserSummary failed: %v", err)
	}
	if len(summary.Groups) != 1 {
		t.Errorf("got %d group summaries, want 1", len(summary.Groups))
	}
	if summary.TotalUserOwes != 1000 {
		t.Errorf("TotalUserOwes = %s, want 10.00", summary.TotalUserOwes)
	}
}
