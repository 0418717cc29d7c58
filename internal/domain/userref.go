package domain

import (
	"bytes"
	"encoding/json"
)

// RefKind tags which shape a UserRef arrived in.
type RefKind int

const (
	RefAbsent    RefKind = iota // no author on record
	RefID                       // bare identifier, not yet hydrated to a profile
	RefAttorney                 // {fullName, email, role}
	RefParalegal                // {firstName?, lastName?, email?, role?}
)

// UserRef is a polymorphic author/learner reference. The zero value is Absent.
//
// FirstName and LastName are pointers so that key presence survives decoding:
// a paralegal record with both names set to "" is not the same as one
// carrying only an email.
type UserRef struct {
	Kind      RefKind
	ID        string
	FullName  string
	FirstName *string
	LastName  *string
	Email     string
	Role      Role
}

func NoUser() UserRef { return UserRef{} }

func IDRef(id string) UserRef {
	if id == "" {
		return NoUser()
	}
	return UserRef{Kind: RefID, ID: id}
}

func AttorneyRef(fullName, email string, role Role) UserRef {
	return UserRef{Kind: RefAttorney, FullName: fullName, Email: email, Role: role}
}

func ParalegalRef(firstName, lastName, email string, role Role) UserRef {
	return UserRef{Kind: RefParalegal, FirstName: &firstName, LastName: &lastName, Email: email, Role: role}
}

type userProfileJSON struct {
	ID        string  `json:"id,omitempty"`
	FullName  *string `json:"fullName,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     string  `json:"email,omitempty"`
	Role      Role    `json:"role,omitempty"`
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RefAbsent:
		return []byte("null"), nil
	case RefID:
		return json.Marshal(r.ID)
	case RefAttorney:
		fullName := r.FullName
		return json.Marshal(userProfileJSON{ID: r.ID, FullName: &fullName, Email: r.Email, Role: r.Role})
	default:
		return json.Marshal(userProfileJSON{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Role: r.Role})
	}
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	*r = UserRef{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = IDRef(id)
		return nil
	}
	var p userProfileJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.ID = p.ID
	r.Email = p.Email
	r.Role = p.Role
	if p.FullName != nil {
		r.Kind = RefAttorney
		r.FullName = *p.FullName
		return nil
	}
	r.Kind = RefParalegal
	r.FirstName = p.FirstName
	r.LastName = p.LastName
	return nil
}
