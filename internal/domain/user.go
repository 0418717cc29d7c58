package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAttorney  Role = "attorney"
	RoleParalegal Role = "paralegal"
)

// Label returns the capitalised form shown next to an author's name.
func (r Role) Label() string {
	switch r {
	case RoleAttorney:
		return string(AuthorAttorney)
	case RoleParalegal:
		return string(AuthorParalegal)
	case "":
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// User represents a user in the system (either an Attorney or a Paralegal).
// Attorneys carry a FullName; paralegals carry FirstName/LastName.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	FirstName    string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAttorney() bool {
	return u.Role == RoleAttorney
}

func (u *User) IsParalegal() bool {
	return u.Role == RoleParalegal
}

// Ref converts a stored user into the wire-level author reference.
// Attorneys are emitted attorney-shaped, everyone else paralegal-shaped.
func (u *User) Ref() UserRef {
	if u == nil {
		return NoUser()
	}
	if u.IsAttorney() {
		return AttorneyRef(u.FullName, u.Email, u.Role)
	}
	return ParalegalRef(u.FirstName, u.LastName, u.Email, u.Role)
}
