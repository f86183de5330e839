package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/family-tree/internal/apperror"
	"github.com/sakif/family-tree/internal/model"
	"github.com/sakif/family-tree/internal/repository"
)

// TreeRepo implements repository.TreeRepository.
type TreeRepo struct {
	conn *sql.DB
}

var _ repository.TreeRepository = (*TreeRepo)(nil)

const treeCols = `id, name, root_member_id, user_id, created_at, updated_at`

func scanTree(scanner interface{ Scan(...any) error }) (*model.FamilyTree, error) {
	var t model.FamilyTree
	err := scanner.Scan(&t.ID, &t.Name, &t.RootMemberID, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new tree and fills in its serial ID and timestamps.
func (r *TreeRepo) Create(ctx context.Context, tree *model.FamilyTree) error {
	now := time.Now().UTC()
	tree.CreatedAt = now
	tree.UpdatedAt = now

	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO family_trees (name, root_member_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		tree.Name, tree.RootMemberID, tree.UserID, tree.CreatedAt, tree.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting tree: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: tree insert id: %w", err)
	}
	tree.ID = id
	return nil
}

func (r *TreeRepo) GetByID(ctx context.Context, id int64) (*model.FamilyTree, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+treeCols+` FROM family_trees WHERE id = ?`, id)

	t, err := scanTree(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("tree", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting tree %d: %w", id, err)
	}
	return t, nil
}

// ListByUser returns the trees owned by userID, newest first.
func (r *TreeRepo) ListByUser(ctx context.Context, userID string) ([]model.FamilyTree, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+treeCols+` FROM family_trees WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing trees for user %s: %w", userID, err)
	}
	defer rows.Close()

	trees := []model.FamilyTree{}
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning tree: %w", err)
		}
		trees = append(trees, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating trees: %w", err)
	}
	return trees, nil
}

// Update overwrites name, root member, and owner of an existing tree.
func (r *TreeRepo) Update(ctx context.Context, tree *model.FamilyTree) error {
	tree.UpdatedAt = time.Now().UTC()

	res, err := r.conn.ExecContext(ctx,
		`UPDATE family_trees SET name = ?, root_member_id = ?, user_id = ?, updated_at = ?
		 WHERE id = ?`,
		tree.Name, tree.RootMemberID, tree.UserID, tree.UpdatedAt, tree.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating tree %d: %w", tree.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: tree update rows: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("tree", strconv.FormatInt(tree.ID, 10))
	}
	return nil
}

// Delete removes the tree and every member in it. Member rows referencing
// the deleted ones from other trees are unaffected.
func (r *TreeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM family_trees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting tree %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: tree delete rows: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("tree", strconv.FormatInt(id, 10))
	}

	if _, err := r.conn.ExecContext(ctx, `DELETE FROM members WHERE tree_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting members of tree %d: %w", id, err)
	}
	return nil
}
