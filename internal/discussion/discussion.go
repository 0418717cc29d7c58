// Package discussion shapes per-item comment threads for display and checks
// comment bodies before they are submitted.
package discussion

import (
	"errors"
	"strings"
	"time"

	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/identity"
)

// DefaultRoleLabel is shown when neither the profile nor the comment carries a role.
const DefaultRoleLabel = "User"

var ErrEmptyBody = errors.New("comment body cannot be empty")

// ValidateBody rejects empty and whitespace-only bodies. The returned body
// is the caller's text unchanged.
func ValidateBody(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyBody
	}
	return body, nil
}

// Entry is a rendered comment or reply.
type Entry struct {
	ID        string
	Author    identity.Identity
	RoleLabel string
	Body      string
	CreatedAt time.Time
}

// Thread is a comment with its replies. Replies are a fixed second tier.
type Thread struct {
	Entry
	Replies []Entry
}

// Threads renders an item's discussion in server order.
func Threads(comments []domain.Comment) []Thread {
	threads := make([]Thread, 0, len(comments))
	for _, c := range comments {
		t := Thread{
			Entry:   newEntry(c.ID, c.Author, c.AuthorKindHint, c.Body, c.CreatedAt),
			Replies: make([]Entry, 0, len(c.Replies)),
		}
		for _, r := range c.Replies {
			t.Replies = append(t.Replies, newEntry(r.ID, r.Author, r.AuthorKindHint, r.Body, r.CreatedAt))
		}
		threads = append(threads, t)
	}
	return threads
}

// Count returns the number of comments and replies together.
func Count(comments []domain.Comment) int {
	n := len(comments)
	for _, c := range comments {
		n += len(c.Replies)
	}
	return n
}

func newEntry(id string, author domain.UserRef, hint domain.AuthorKind, body string, at time.Time) Entry {
	who := identity.Resolve(author)
	return Entry{
		ID:        id,
		Author:    who,
		RoleLabel: RoleLabel(who, hint),
		Body:      body,
		CreatedAt: at,
	}
}

// RoleLabel prefers the role on the resolved profile, then the hint recorded
// when the comment was written, then DefaultRoleLabel.
func RoleLabel(who identity.Identity, hint domain.AuthorKind) string {
	if label := who.Role.Label(); label != "" {
		return label
	}
	if hint != "" {
		return string(hint)
	}
	return DefaultRoleLabel
}
