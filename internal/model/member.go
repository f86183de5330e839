package model

import "time"

// Gender values accepted for a member. The empty string means unset.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Relationship links a member to another member of the same tree.
//
// TargetID is a logical reference only: the target may have been deleted, in
// which case readers render it as an unknown relation rather than failing.
type Relationship struct {
	Type        string `json:"type"`                  // e.g. "spouse", "sibling"
	TargetID    string `json:"targetId"`
	Description string `json:"description,omitempty"`
}

// Member is a single person in a family tree.
//
// IDs are caller-supplied opaque strings (the web client generates them when
// building a tree offline); the server generates an xid when the caller
// leaves the field empty. ParentID is a logical reference to another member
// and is never validated against the members table; dangling parents are
// rendered as unknown ancestors.
//
// BirthDate and DeathDate are free-form strings ("1921", "Jan 1921", ...);
// the application never parses them.
type Member struct {
	ID            string         `json:"id"            db:"id"`
	TreeID        int64          `json:"treeId"        db:"tree_id"` // owning tree, required
	Name          string         `json:"name"          db:"name"`    // required
	Relation      string         `json:"relation"      db:"relation"` // free-text label, required
	ParentID      string         `json:"parentId"      db:"parent_id"`
	BirthDate     string         `json:"birthDate"     db:"birth_date"`
	DeathDate     string         `json:"deathDate"     db:"death_date"`
	Gender        string         `json:"gender"        db:"gender"`
	Description   string         `json:"description"   db:"description"`
	Relationships []Relationship `json:"relationships" db:"relationships"` // stored as a JSON column
	CreatedAt     time.Time      `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt"     db:"updated_at"`
}

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
