// Package identity turns author and learner references into something
// displayable. Resolution is total: every input yields a name and initials.
package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"lexdesk/training-monitor/internal/domain"
)

const (
	UnknownName = "Unknown"
	LoadingName = "User (Loading...)"
	// ParalegalName is used when a paralegal-shaped record has blank names.
	ParalegalName = "Paralegal"
	placeholder   = "?"
)

// Identity is the displayable form of a UserRef.
type Identity struct {
	DisplayName string
	Initials    string
	// Role is the role carried by the profile itself, if any.
	Role domain.Role
}

// Resolve applies the first matching rule:
// absent, bare id, full name, first/last name, email, unknown.
func Resolve(ref domain.UserRef) Identity {
	switch ref.Kind {
	case domain.RefAbsent:
		return Identity{DisplayName: UnknownName, Initials: placeholder}
	case domain.RefID:
		return Identity{DisplayName: LoadingName, Initials: placeholder}
	}

	if fullName := strings.TrimSpace(ref.FullName); fullName != "" {
		return Identity{DisplayName: fullName, Initials: fullNameInitials(fullName), Role: ref.Role}
	}

	if ref.FirstName != nil || ref.LastName != nil {
		first, last := deref(ref.FirstName), deref(ref.LastName)
		name := strings.TrimSpace(first + " " + last)
		if name == "" {
			name = ParalegalName
		}
		initials := firstLetter(first) + firstLetter(last)
		if initials == "" {
			initials = "P"
		}
		return Identity{DisplayName: name, Initials: initials, Role: ref.Role}
	}

	if email := strings.TrimSpace(ref.Email); email != "" {
		initials := firstLetter(email)
		if initials == "" {
			initials = placeholder
		}
		return Identity{DisplayName: email, Initials: initials, Role: ref.Role}
	}

	return Identity{DisplayName: UnknownName, Initials: placeholder, Role: ref.Role}
}

func fullNameInitials(fullName string) string {
	tokens := strings.Fields(fullName)
	switch len(tokens) {
	case 0:
		return "A"
	case 1:
		if s := firstLetter(tokens[0]); s != "" {
			return s
		}
		return "A"
	}
	initials := firstLetter(tokens[0]) + firstLetter(tokens[len(tokens)-1])
	if initials == "" {
		return "A"
	}
	return initials
}

// firstLetter returns the upper-cased first rune of s, ignoring leading space.
func firstLetter(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
