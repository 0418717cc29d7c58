package monitor

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/discussion"
	"lexdesk/training-monitor/internal/domain"
)

// DetailState is the lifecycle of the detail page.
type DetailState int

const (
	DetailLoading DetailState = iota
	DetailFound
	DetailNotFound
	DetailLoadFailed
)

func (s DetailState) String() string {
	switch s {
	case DetailFound:
		return "found"
	case DetailNotFound:
		return "not-found"
	case DetailLoadFailed:
		return "load-failed"
	}
	return "loading"
}

// DetailPage shows a single assignment. It always loads the full collection
// and picks its assignment out by id.
type DetailPage struct {
	assignmentID string
	backend      Backend
	notifier     Notifier
	navigator    Navigator
	opener       Opener
	logger       *zap.Logger

	mu         sync.Mutex
	seq        uint64
	closed     bool
	state      DetailState
	assignment *domain.TrainingAssignment
	loadErr    error
	opening    map[string]struct{}
}

func NewDetailPage(
	assignmentID string,
	backend Backend,
	notifier Notifier,
	navigator Navigator,
	opener Opener,
	logger *zap.Logger,
) *DetailPage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailPage{
		assignmentID: assignmentID,
		backend:      backend,
		notifier:     notifier,
		navigator:    navigator,
		opener:       opener,
		logger:       logger.Named("detail-page").With(zap.String("assignmentId", assignmentID)),
		state:        DetailLoading,
		opening:      make(map[string]struct{}),
	}
}

func (p *DetailPage) AssignmentID() string { return p.assignmentID }

// Load fetches the whole collection and locates this page's assignment.
// A missing id moves the page to DetailNotFound and sends the user back to
// the list; it is not retried.
func (p *DetailPage) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPageClosed
	}
	p.seq++
	seq := p.seq
	p.state = DetailLoading
	p.mu.Unlock()

	p.logger.Debug("loading training assignment", zap.Uint64("seq", seq))
	assignments, err := p.backend.ListAssignedTrainingDocuments(ctx)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Debug("dropping detail response for closed page", zap.Uint64("seq", seq))
		return ErrPageClosed
	}
	if seq != p.seq {
		p.mu.Unlock()
		p.logger.Debug("dropping stale detail response", zap.Uint64("seq", seq))
		return ErrStaleResponse
	}
	if err != nil {
		p.state = DetailLoadFailed
		p.assignment = nil
		p.loadErr = err
		p.mu.Unlock()

		p.logger.Warn("failed to load training assignment", zap.Error(err))
		p.notify(LevelError, "Failed to load training document.")
		return err
	}

	var found *domain.TrainingAssignment
	for i := range assignments {
		if assignments[i].ID == p.assignmentID {
			a := assignments[i]
			found = &a
			break
		}
	}
	if found == nil {
		p.state = DetailNotFound
		p.assignment = nil
		p.loadErr = ErrNotFound
		p.mu.Unlock()

		p.logger.Info("training assignment not found")
		p.notify(LevelError, "Training document not found.")
		if p.navigator != nil {
			p.navigator.ToList()
		}
		return ErrNotFound
	}
	p.state = DetailFound
	p.assignment = found
	p.loadErr = nil
	p.mu.Unlock()
	return nil
}

// Close abandons the page. Responses that arrive afterwards are dropped and
// no further requests are issued.
func (p *DetailPage) Close() {
	p.mu.Lock()
	p.closed = true
	p.seq++
	p.mu.Unlock()
}

func (p *DetailPage) State() DetailState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *DetailPage) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadErr
}

// Assignment returns a copy of the displayed assignment when the page is in
// DetailFound.
func (p *DetailPage) Assignment() (domain.TrainingAssignment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != DetailFound || p.assignment == nil {
		return domain.TrainingAssignment{}, false
	}
	return *p.assignment, true
}

// AddComment submits a new comment on an item and then reloads the page.
// Blank bodies are rejected before any request is made.
func (p *DetailPage) AddComment(ctx context.Context, itemID string, kind domain.ItemKind, body string) error {
	body, err := p.checkMutation(body)
	if err != nil {
		return err
	}
	if err := p.backend.PostComment(ctx, p.assignmentID, kind, itemID, body); err != nil {
		p.logger.Warn("failed to post comment", zap.String("itemId", itemID), zap.Error(err))
		p.notify(LevelError, "Failed to add comment.")
		return err
	}
	p.notify(LevelSuccess, "Comment added.")
	return p.reload(ctx)
}

// AddReply submits a reply to a comment and then reloads the page.
func (p *DetailPage) AddReply(ctx context.Context, itemID string, kind domain.ItemKind, commentID, body string) error {
	body, err := p.checkMutation(body)
	if err != nil {
		return err
	}
	if err := p.backend.PostReply(ctx, p.assignmentID, kind, itemID, commentID, body); err != nil {
		p.logger.Warn("failed to post reply",
			zap.String("itemId", itemID), zap.String("commentId", commentID), zap.Error(err))
		p.notify(LevelError, "Failed to add reply.")
		return err
	}
	p.notify(LevelSuccess, "Reply added.")
	return p.reload(ctx)
}

func (p *DetailPage) checkMutation(body string) (string, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return "", ErrPageClosed
	}
	body, err := discussion.ValidateBody(body)
	if err != nil {
		p.notify(LevelWarning, "Please enter a message.")
		return "", err
	}
	return body, nil
}

// reload re-runs the full load after a mutation. Being superseded by a newer
// load is not a failure: the newer load is authoritative.
func (p *DetailPage) reload(ctx context.Context) error {
	err := p.Load(ctx)
	if errors.Is(err, ErrStaleResponse) || errors.Is(err, ErrPageClosed) {
		return nil
	}
	return err
}

// OpenItem opens a content item. External links open directly; stored files
// are first exchanged for a short-lived signed URL. While an exchange for an
// item is pending, further calls for that item return ErrOpenInProgress and
// do nothing.
func (p *DetailPage) OpenItem(ctx context.Context, kind domain.ItemKind, itemID string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPageClosed
	}
	if p.state != DetailFound || p.assignment == nil {
		p.mu.Unlock()
		p.notify(LevelError, "Training document is not loaded.")
		return ErrNotLoaded
	}
	found, ok := p.assignment.FindItem(kind, itemID)
	if !ok {
		p.mu.Unlock()
		p.notify(LevelError, "File not found.")
		return ErrItemNotFound
	}
	item := *found

	if item.SourceRef == "" {
		p.mu.Unlock()
		p.notify(LevelError, "This item has no file attached.")
		return ErrMissingReference
	}

	if item.IsExternalLink {
		p.mu.Unlock()
		return p.open(ctx, item.SourceRef)
	}

	key := string(kind) + "/" + itemID
	if _, pending := p.opening[key]; pending {
		p.mu.Unlock()
		p.logger.Debug("ignoring open while resolution is pending", zap.String("itemId", itemID))
		return ErrOpenInProgress
	}
	p.opening[key] = struct{}{}
	p.mu.Unlock()

	url, err := p.backend.ResolveFileAccessURL(ctx, item.SourceRef)

	p.mu.Lock()
	delete(p.opening, key)
	closed := p.closed
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("failed to resolve file access url", zap.String("itemId", itemID), zap.Error(err))
		p.notify(LevelError, "Could not open file.")
		return err
	}
	if closed {
		return ErrPageClosed
	}
	return p.open(ctx, url)
}

// Opening reports whether a signed-URL exchange is pending for the item.
func (p *DetailPage) Opening(kind domain.ItemKind, itemID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.opening[string(kind)+"/"+itemID]
	return ok
}

func (p *DetailPage) open(ctx context.Context, url string) error {
	if p.opener == nil {
		return nil
	}
	if err := p.opener.Open(ctx, url); err != nil {
		p.logger.Warn("failed to open url", zap.Error(err))
		p.notify(LevelError, "Could not open file.")
		return err
	}
	return nil
}

func (p *DetailPage) notify(level Level, msg string) {
	if p.notifier != nil {
		p.notifier.Notify(Notification{Level: level, Message: msg})
	}
}
