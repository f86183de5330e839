package model

import "time"

// FamilyTree is a named collection of members owned by a single user.
//
// RootMemberID is a logical reference to a Member id; it is not enforced as
// a foreign key. A tree whose root member was deleted still loads; readers
// treat the dangling reference as "no root selected".
type FamilyTree struct {
	ID           int64     `json:"id"           db:"id"`
	Name         string    `json:"name"         db:"name"`
	RootMemberID string    `json:"rootMemberId" db:"root_member_id"`
	UserID       string    `json:"userId"       db:"user_id"` // owning user (may be empty)
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}
