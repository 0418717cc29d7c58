// Package monitor drives the attorney's training monitoring pages.
//
// Each page owns its state exclusively and re-fetches the whole assignment
// collection on load. Mutations (comments, replies) are never merged into
// local state: a successful submission is followed by a full reload, so ids,
// ordering and timestamps always come from the server.
//
// Loads may overlap. Every load takes a sequence number when it starts and
// only the most recently started load may apply its result; older
// completions are dropped.
package monitor

import (
	"context"
	"errors"

	"lexdesk/training-monitor/internal/domain"
)

var (
	ErrNotFound         = errors.New("training assignment not found")
	ErrItemNotFound     = errors.New("content item not found")
	ErrNotLoaded        = errors.New("training assignment is not loaded")
	ErrStaleResponse    = errors.New("response superseded by a newer request")
	ErrPageClosed       = errors.New("page has been closed")
	ErrOpenInProgress   = errors.New("file is already being opened")
	ErrMissingReference = errors.New("content item has no source reference")
)

// Backend is the remote collaborator. Only collection-level retrieval
// exists; there is no single-assignment fetch.
type Backend interface {
	ListAssignedTrainingDocuments(ctx context.Context) ([]domain.TrainingAssignment, error)
	PostComment(ctx context.Context, assignmentID string, kind domain.ItemKind, itemID, body string) error
	PostReply(ctx context.Context, assignmentID string, kind domain.ItemKind, itemID, commentID, body string) error
	ResolveFileAccessURL(ctx context.Context, fileRef string) (string, error)
}

// Level of a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notification is a transient message for the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows transient notifications.
type Notifier interface {
	Notify(n Notification)
}

// Navigator receives navigation commands emitted by pages.
type Navigator interface {
	// ToList returns the user to the assignment list.
	ToList()
}

// Opener opens a URL for the user (browser tab, viewer, terminal link).
type Opener interface {
	Open(ctx context.Context, url string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToList() { f() }

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }
