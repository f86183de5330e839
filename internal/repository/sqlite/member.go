package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/family-tree/internal/apperror"
	"github.com/sakif/family-tree/internal/model"
	"github.com/sakif/family-tree/internal/repository"
)

// MemberRepo implements repository.MemberRepository.
//
// The relationships list is stored as a JSON text column rather than a join
// table. Relationship targets are logical references that may dangle, so
// there is nothing relational to gain from normalizing them, and the list is
// always read and written as a unit with its member.
type MemberRepo struct {
	conn *sql.DB
}

var _ repository.MemberRepository = (*MemberRepo)(nil)

const memberCols = `id, tree_id, name, relation, parent_id, birth_date, death_date,
	gender, description, relationships, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	var relJSON string
	err := scanner.Scan(&m.ID, &m.TreeID, &m.Name, &m.Relation, &m.ParentID,
		&m.BirthDate, &m.DeathDate, &m.Gender, &m.Description, &relJSON,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(relJSON), &m.Relationships); err != nil {
		return nil, fmt.Errorf("decoding relationships for member %s: %w", m.ID, err)
	}
	return &m, nil
}

func marshalRelationships(rels []model.Relationship) (string, error) {
	if rels == nil {
		rels = []model.Relationship{}
	}
	b, err := json.Marshal(rels)
	if err != nil {
		return "", fmt.Errorf("encoding relationships: %w", err)
	}
	return string(b), nil
}

// Create inserts a new member. The caller-supplied ID is kept when present
// (the web client builds trees offline with its own ids); otherwise a fresh
// xid is generated.
func (r *MemberRepo) Create(ctx context.Context, member *model.Member) error {
	if member.ID == "" {
		member.ID = xid.New().String()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	relJSON, err := marshalRelationships(member.Relationships)
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO members (id, tree_id, name, relation, parent_id, birth_date,
		   death_date, gender, description, relationships, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.TreeID, member.Name, member.Relation, member.ParentID,
		member.BirthDate, member.DeathDate, member.Gender, member.Description,
		relJSON, member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting member %s: %w", member.ID, err)
	}
	return nil
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+memberCols+` FROM members WHERE id = ?`, id)

	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("member", id)
		}
		return nil, fmt.Errorf("sqlite: getting member %s: %w", id, err)
	}
	return m, nil
}

// ListByTree returns every member of a tree in insertion order. Members whose
// parent_id no longer resolves are returned as-is; rendering them as unknown
// ancestors is the reader's job.
func (r *MemberRepo) ListByTree(ctx context.Context, treeID int64) ([]model.Member, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+memberCols+` FROM members WHERE tree_id = ? ORDER BY created_at`,
		treeID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing members of tree %d: %w", treeID, err)
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating members: %w", err)
	}
	return members, nil
}

// Update overwrites all mutable fields of an existing member. The owning
// tree never changes.
func (r *MemberRepo) Update(ctx context.Context, member *model.Member) error {
	member.UpdatedAt = time.Now().UTC()

	relJSON, err := marshalRelationships(member.Relationships)
	if err != nil {
		return err
	}

	res, err := r.conn.ExecContext(ctx,
		`UPDATE members SET name = ?, relation = ?, parent_id = ?, birth_date = ?,
		   death_date = ?, gender = ?, description = ?, relationships = ?, updated_at = ?
		 WHERE id = ?`,
		member.Name, member.Relation, member.ParentID, member.BirthDate,
		member.DeathDate, member.Gender, member.Description, relJSON,
		member.UpdatedAt, member.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating member %s: %w", member.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: member update rows: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("member", member.ID)
	}
	return nil
}

// Delete removes only the member row. Other members keep whatever parent_id
// or relationship targets pointed at it.
func (r *MemberRepo) Delete(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting member %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: member delete rows: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("member", id)
	}
	return nil
}
