// Package repository defines the storage interfaces the service layer
// programs against. The SQLite implementation lives in repository/sqlite;
// Unavailable stands in when no database is configured.
package repository

import (
	"context"

	"github.com/sakif/family-tree/internal/model"
)

type UserRepository interface {
	// Upsert creates or updates a user keyed by email. On the update path the
	// caller's non-empty fields win and empty fields keep the stored values;
	// the internal ID never changes. After the call user reflects the
	// persisted row.
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type TreeRepository interface {
	Create(ctx context.Context, tree *model.FamilyTree) error
	GetByID(ctx context.Context, id int64) (*model.FamilyTree, error)
	ListByUser(ctx context.Context, userID string) ([]model.FamilyTree, error)
	Update(ctx context.Context, tree *model.FamilyTree) error
	// Delete removes the tree and all of its members.
	Delete(ctx context.Context, id int64) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	ListByTree(ctx context.Context, treeID int64) ([]model.Member, error)
	Update(ctx context.Context, member *model.Member) error
	// Delete removes the member only. References to it from other members
	// (parentId, relationship targets) are left dangling by design.
	Delete(ctx context.Context, id string) error
}

// Store bundles the three repositories behind one value so the wiring layer
// can pass a single dependency around.
type Store interface {
	Users() UserRepository
	Trees() TreeRepository
	Members() MemberRepository
	Close() error
}
