package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// maxConcurrentSheets bounds how many group sheets a user summary computes
// at once.
const maxConcurrentSheets = 8

// MemberNet is one member's net position within a group.
type MemberNet struct {
	UserID string
	Net    money.Amount
}

// GroupBalances is the full balance view for one group: pairwise balances,
// member net positions, and a simplified settle-up plan.
type GroupBalances struct {
	GroupID    string
	Pairs      []ledger.PairBalance
	Members    []MemberNet
	Simplified []ledger.DebtEdge
}

// BalanceService computes balances from stored expenses and settlements. It
// holds no state of its own; every call works on a fresh snapshot read from
// the store.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a new BalanceService with the given storage
// backend.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// groupSheet reads a group's complete expense and settlement snapshot and
// folds it into a balance sheet.
func (s *BalanceService) groupSheet(ctx context.Context, groupID string) (*ledger.GroupBalanceSheet, error) {
	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}
	sheet, err := ledger.ComputeGroupBalanceSheet(expenses)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, settlement := range settlements {
		sheet.ApplySettlement(settlement.FromUserID, settlement.ToUserID, settlement.Amount)
	}
	return sheet, nil
}

// GroupBalances computes the balance view for one group.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID string) (*GroupBalances, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	sheet, err := s.groupSheet(ctx, groupID)
	if err != nil {
		slog.Error("GroupBalances failed", "group_id", groupID, "error", err)
		return nil, err
	}

	members := sheet.Members()
	nets := make([]MemberNet, len(members))
	for i, m := range members {
		nets[i] = MemberNet{UserID: m, Net: sheet.MemberNet(m)}
	}

	balances := &GroupBalances{
		GroupID:    groupID,
		Pairs:      sheet.Entries(),
		Members:    nets,
		Simplified: ledger.SimplifyDebts(sheet),
	}
	slog.Info("Group balances computed",
		"group_id", groupID,
		"members_count", len(balances.Members),
		"pairs_count", len(balances.Pairs),
	)
	return balances, nil
}

// UserSummary aggregates a user's balances across all their groups. Each
// group's sheet is an independent computation over its own snapshot, so the
// sheets are computed concurrently.
func (s *BalanceService) UserSummary(ctx context.Context, userID string) (ledger.UserBalanceSummary, error) {
	groupIDs, err := s.store.ListUserGroups(ctx, userID)
	if err != nil {
		return ledger.UserBalanceSummary{}, err
	}

	sheets := make(map[string]*ledger.GroupBalanceSheet, len(groupIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSheets)
	for _, groupID := range groupIDs {
		g.Go(func() error {
			sheet, err := s.groupSheet(gctx, groupID)
			if err != nil {
				return err
			}
			mu.Lock()
			sheets[groupID] = sheet
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("UserSummary failed", "user_id", userID, "error", err)
		return ledger.UserBalanceSummary{}, err
	}

	summary := ledger.ComputeUserSummary(userID, sheets)
	slog.Info("User summary computed",
		"user_id", userID,
		"groups_count", len(groupIDs),
		"owed_to_user", summary.TotalOwedToUser,
		"user_owes", summary.TotalUserOwes,
	)
	return summary, nil
}
