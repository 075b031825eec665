package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupService manages groups, their members, and settlements.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// Create creates a new group.
func (s *GroupService) Create(ctx context.Context, group *models.Group) error {
	if group.Name == "" {
		return fmt.Errorf("%w: group name required", ErrInvalidInput)
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return err
	}
	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return nil
}

// Get retrieves a group by ID.
func (s *GroupService) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// List retrieves all groups.
func (s *GroupService) List(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// Update updates a group's name and member list, returning the stored state.
func (s *GroupService) Update(ctx context.Context, group *models.Group) (*models.Group, error) {
	if group.Name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, err
	}
	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	slog.Info("Group updated", "group_id", group.ID)
	return updated, nil
}

// Delete removes a group and everything in it.
func (s *GroupService) Delete(ctx context.Context, groupID string) error {
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// AddMembers adds members to a group, returning the updated group.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, members []string) (*models.Group, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: no members given", ErrInvalidInput)
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.store.AddGroupMembers(ctx, groupID, members); err != nil {
		slog.Error("AddMembers failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return s.store.GetGroup(ctx, groupID)
}

// RecordSettlement validates and records a settle-up payment between two
// group members.
func (s *GroupService) RecordSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.FromUserID == "" || settlement.ToUserID == "" {
		return fmt.Errorf("%w: settlement requires both parties", ErrInvalidInput)
	}
	if settlement.FromUserID == settlement.ToUserID {
		return fmt.Errorf("%w: a user cannot settle with themselves", ErrInvalidInput)
	}
	if !settlement.Amount.IsPositive() {
		return fmt.Errorf("%w: settlement amount must be positive", ErrInvalidInput)
	}

	group, err := s.store.GetGroup(ctx, settlement.GroupID)
	if err != nil {
		return err
	}
	if !group.HasMember(settlement.FromUserID) || !group.HasMember(settlement.ToUserID) {
		return fmt.Errorf("%w: both parties must be group members", ErrInvalidInput)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "group_id", settlement.GroupID, "error", err)
		return err
	}
	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
		"from", settlement.FromUserID,
		"to", settlement.ToUserID,
		"amount", settlement.Amount,
	)
	return nil
}

// ListSettlements returns every settlement recorded in a group.
func (s *GroupService) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListSettlements(ctx, groupID)
}
