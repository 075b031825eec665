// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for expense, group, and settlement storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// ListExpenses must return the complete, consistent expense set for a group:
// balance computation is only valid on a full snapshot, never a partial page.
type Store interface {
	// CreateExpense persists a new expense. ID and CreatedAt are populated
	// by the store when unset.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID, including its shares in input
	// order. Returns ErrNotFound if it does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses returns every expense in a group, shares included,
	// ordered by creation time.
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense and its shares.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateGroup persists a new group. ID and CreatedAt are populated by
	// the store when unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID with its member list.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// UpdateGroup updates a group's name and member list.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group, its expenses, and its settlements.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMembers adds members to a group, ignoring ones already there.
	AddGroupMembers(ctx context.Context, groupID string, members []string) error

	// ListUserGroups returns the ids of every group the user is a member of.
	ListUserGroups(ctx context.Context, userID string) ([]string, error)

	// CreateSettlement persists a new settlement. ID and CreatedAt are
	// populated by the store when unset.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements returns every settlement in a group, ordered by
	// creation time.
	ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
