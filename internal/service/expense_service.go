// Package service implements the application services on top of the storage
// layer and the ledger engine. Services validate input, talk to the store,
// and return domain errors (ledger.ErrInvalidSplit, storage.ErrNotFound,
// ErrInvalidInput) for the transport layer to map.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ErrInvalidInput is returned for malformed requests that are not split
// inconsistencies: missing ids, empty names, bad settlement parties.
var ErrInvalidInput = errors.New("invalid input")

// ExpenseService manages expense records for groups.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// isParticipant checks if the user is in the participants list.
func isParticipant(userID string, participants []string) bool {
	for _, p := range participants {
		if p == userID {
			return true
		}
	}
	return false
}

// findNewParticipants returns participants that are not already in
// existingMembers.
func findNewParticipants(participants, existingMembers []string) []string {
	memberSet := make(map[string]bool, len(existingMembers))
	for _, m := range existingMembers {
		memberSet[m] = true
	}
	var newOnes []string
	for _, p := range participants {
		if !memberSet[p] {
			newOnes = append(newOnes, p)
		}
	}
	return newOnes
}

// autoAddParticipantsToGroup adds any expense participants (and the payer)
// not already in the group. Failures are logged, not returned: the expense is
// already persisted and membership catch-up is best effort.
func (s *ExpenseService) autoAddParticipantsToGroup(ctx context.Context, groupID string, participants []string, payerID string) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Warn("autoAddParticipantsToGroup: failed to get group", "group_id", groupID, "error", err)
		return
	}

	allPeople := make([]string, 0, len(participants)+1)
	allPeople = append(allPeople, participants...)
	if payerID != "" && !isParticipant(payerID, participants) {
		allPeople = append(allPeople, payerID)
	}

	newMembers := findNewParticipants(allPeople, group.Members)
	if len(newMembers) == 0 {
		return
	}

	if err := s.store.AddGroupMembers(ctx, groupID, newMembers); err != nil {
		slog.Error("autoAddParticipantsToGroup: failed to add members", "group_id", groupID, "error", err)
		return
	}
	slog.Info("Auto-added participants to group", "group_id", groupID, "new_members", newMembers)
}

// Create validates an expense through the ledger engine and persists it. An
// expense whose split cannot be resolved is never stored. Returns the
// resolved contributions for immediate display.
func (s *ExpenseService) Create(ctx context.Context, expense *models.Expense) ([]ledger.Contribution, error) {
	if expense.GroupID == "" {
		return nil, fmt.Errorf("%w: group id required", ErrInvalidInput)
	}
	if expense.PayerID == "" {
		return nil, fmt.Errorf("%w: payer id required", ErrInvalidInput)
	}
	if _, err := s.store.GetGroup(ctx, expense.GroupID); err != nil {
		return nil, err
	}

	contributions, err := ledger.ResolveContributions(expense)
	if err != nil {
		slog.Error("Create expense: split validation failed", "group_id", expense.GroupID, "error", err)
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("Create expense failed", "group_id", expense.GroupID, "error", err)
		return nil, err
	}

	s.autoAddParticipantsToGroup(ctx, expense.GroupID, expense.ParticipantIDs(), expense.PayerID)

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount,
		"split_method", expense.SplitMethod,
	)
	return contributions, nil
}

// Get retrieves an expense with its contributions recomputed from the stored
// shares.
func (s *ExpenseService) Get(ctx context.Context, expenseID string) (*models.Expense, []ledger.Contribution, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	contributions, err := ledger.ResolveContributions(expense)
	if err != nil {
		// Stored data no longer resolving means a corrupt record, not a
		// bad request.
		slog.Error("Get expense: stored split no longer resolves", "expense_id", expenseID, "error", err)
		return nil, nil, err
	}
	return expense, contributions, nil
}

// List returns the complete expense set for a group.
func (s *ExpenseService) List(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, groupID)
}

// Delete removes an expense.
func (s *ExpenseService) Delete(ctx context.Context, expenseID string) error {
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		slog.Error("Delete expense failed", "expense_id", expenseID, "error", err)
		return err
	}
	slog.Info("Expense deleted", "expense_id", expenseID)
	return nil
}
