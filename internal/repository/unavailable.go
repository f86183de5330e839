package repository

import (
	"context"

	"github.com/sakif/family-tree/internal/apperror"
	"github.com/sakif/family-tree/internal/model"
)

// Unavailable is the Store used when no database path is configured. Every
// operation fails with apperror.ErrUnavailable, which the HTTP layer turns
// into a 500, so requests degrade instead of the process crashing on a nil
// handle.
type Unavailable struct{}

var _ Store = Unavailable{}

func (Unavailable) Users() UserRepository     { return unavailableUsers{} }
func (Unavailable) Trees() TreeRepository     { return unavailableTrees{} }
func (Unavailable) Members() MemberRepository { return unavailableMembers{} }
func (Unavailable) Close() error              { return nil }

func errUnavailable() error {
	return apperror.Unavailable("database")
}

type unavailableUsers struct{}

func (unavailableUsers) Upsert(context.Context, *model.User) error { return errUnavailable() }
func (unavailableUsers) GetByID(context.Context, string) (*model.User, error) {
	return nil, errUnavailable()
}
func (unavailableUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, errUnavailable()
}

type unavailableTrees struct{}

func (unavailableTrees) Create(context.Context, *model.FamilyTree) error { return errUnavailable() }
func (unavailableTrees) GetByID(context.Context, int64) (*model.FamilyTree, error) {
	return nil, errUnavailable()
}
func (unavailableTrees) ListByUser(context.Context, string) ([]model.FamilyTree, error) {
	return nil, errUnavailable()
}
func (unavailableTrees) Update(context.Context, *model.FamilyTree) error { return errUnavailable() }
func (unavailableTrees) Delete(context.Context, int64) error             { return errUnavailable() }

type unavailableMembers struct{}

func (unavailableMembers) Create(context.Context, *model.Member) error { return errUnavailable() }
func (unavailableMembers) GetByID(context.Context, string) (*model.Member, error) {
	return nil, errUnavailable()
}
func (unavailableMembers) ListByTree(context.Context, int64) ([]model.Member, error) {
	return nil, errUnavailable()
}
func (unavailableMembers) Update(context.Context, *model.Member) error { return errUnavailable() }
func (unavailableMembers) Delete(context.Context, string) error        { return errUnavailable() }
