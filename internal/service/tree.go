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

const MaxTreeNameLength = 200

// TreeService handles family-tree business rules. The interesting rule is
// ownership: every mutation checks that the caller owns the tree, and list
// is scoped to the caller.
type TreeService struct {
	trees  repository.TreeRepository
	logger *slog.Logger
}

func NewTreeService(trees repository.TreeRepository, logger *slog.Logger) *TreeService {
	return &TreeService{trees: trees, logger: logger}
}

func (s *TreeService) Create(ctx context.Context, userID, name string) (*model.FamilyTree, error) {
	name = strings.TrimSpace(name)
	if len(name) > MaxTreeNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("tree name must be %d characters or less", MaxTreeNameLength))
	}

	tree := &model.FamilyTree{Name: name, UserID: userID}
	if err := s.trees.Create(ctx, tree); err != nil {
		return nil, fmt.Errorf("service/tree: creating tree: %w", err)
	}

	s.logger.Info("tree created",
		slog.Int64("treeID", tree.ID),
		slog.String("userID", userID),
	)
	return tree, nil
}

// Get returns a tree the caller owns.
func (s *TreeService) Get(ctx context.Context, userID string, id int64) (*model.FamilyTree, error) {
	tree, err := s.trees.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/tree: fetching tree %d: %w", id, err)
	}
	if tree.UserID != "" && tree.UserID != userID {
		return nil, apperror.Forbidden("you do not own this tree")
	}
	return tree, nil
}

func (s *TreeService) List(ctx context.Context, userID string) ([]model.FamilyTree, error) {
	trees, err := s.trees.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/tree: listing trees: %w", err)
	}
	return trees, nil
}

// Update renames the tree or moves its root member pointer. The root member
// id is a logical reference and is stored without checking it resolves.
func (s *TreeService) Update(ctx context.Context, userID string, id int64, name, rootMemberID string) (*model.FamilyTree, error) {
	tree, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if len(name) > MaxTreeNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("tree name must be %d characters or less", MaxTreeNameLength))
	}

	tree.Name = name
	tree.RootMemberID = rootMemberID
	if err := s.trees.Update(ctx, tree); err != nil {
		return nil, fmt.Errorf("service/tree: updating tree %d: %w", id, err)
	}
	return tree, nil
}

// Delete removes the tree and all its members.
func (s *TreeService) Delete(ctx context.Context, userID string, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.trees.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/tree: deleting tree %d: %w", id, err)
	}

	s.logger.Info("tree deleted",
		slog.Int64("treeID", id),
		slog.String("userID", userID),
	)
	return nil
}
