package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/family-tree/internal/apperror"
	"github.com/sakif/family-tree/internal/model"
	"github.com/sakif/family-tree/internal/repository"
)

const (
	MaxMemberNameLength  = 200
	MaxDescriptionLength = 5000
)

// MemberService handles member business rules. Membership access control
// rides on tree ownership: every operation resolves the owning tree through
// TreeService first.
//
// ParentID and relationship targets are deliberately not validated against
// the members table; the data model tolerates dangling references and the
// client may create members in any order.
type MemberService struct {
	members repository.MemberRepository
	trees   *TreeService
	logger  *slog.Logger
}

func NewMemberService(members repository.MemberRepository, trees *TreeService, logger *slog.Logger) *MemberService {
	return &MemberService{members: members, trees: trees, logger: logger}
}

func validateMember(m *model.Member) error {
	if strings.TrimSpace(m.Name) == "" {
		return apperror.ValidationFailed("name", "member name is required")
	}
	if len(m.Name) > MaxMemberNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("member name must be %d characters or less", MaxMemberNameLength))
	}
	if strings.TrimSpace(m.Relation) == "" {
		return apperror.ValidationFailed("relation", "relation label is required")
	}
	if len(m.Description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if !model.ValidGender(m.Gender) {
		return apperror.ValidationFailed("gender", "gender must be male, female, other, or empty")
	}
	for _, rel := range m.Relationships {
		if rel.Type == "" || rel.TargetID == "" {
			return apperror.ValidationFailed("relationships", "each relationship needs a type and a targetId")
		}
	}
	return nil
}

// Create adds a member to a tree the caller owns.
func (s *MemberService) Create(ctx context.Context, userID string, treeID int64, member *model.Member) (*model.Member, error) {
	if _, err := s.trees.Get(ctx, userID, treeID); err != nil {
		return nil, err
	}
	member.TreeID = treeID
	if err := validateMember(member); err != nil {
		return nil, err
	}

	if err := s.members.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("service/member: creating member: %w", err)
	}

	s.logger.Info("member created",
		slog.String("memberID", member.ID),
		slog.Int64("treeID", treeID),
	)
	return member, nil
}

func (s *MemberService) Get(ctx context.Context, userID, id string) (*model.Member, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/member: fetching member %s: %w", id, err)
	}
	if _, err := s.trees.Get(ctx, userID, member.TreeID); err != nil {
		return nil, err
	}
	return member, nil
}

// ListByTree returns every member of a tree the caller owns.
func (s *MemberService) ListByTree(ctx context.Context, userID string, treeID int64) ([]model.Member, error) {
	if _, err := s.trees.Get(ctx, userID, treeID); err != nil {
		return nil, err
	}
	members, err := s.members.ListByTree(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("service/member: listing members of tree %d: %w", treeID, err)
	}
	return members, nil
}

// Update replaces the mutable fields of a member. The member stays in its
// tree; moving members between trees is not supported.
func (s *MemberService) Update(ctx context.Context, userID, id string, updated *model.Member) (*model.Member, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.TreeID = existing.TreeID
	updated.CreatedAt = existing.CreatedAt
	if err := validateMember(updated); err != nil {
		return nil, err
	}

	if err := s.members.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("service/member: updating member %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a single member. References from other members are left
// dangling on purpose; readers render them as unknown.
func (s *MemberService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.members.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/member: deleting member %s: %w", id, err)
	}

	s.logger.Info("member deleted", slog.String("memberID", id))
	return nil
}
