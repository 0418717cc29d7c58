package monitor

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/domain"
)

// ListState is the lifecycle of the list page.
type ListState int

const (
	ListLoading ListState = iota
	ListLoaded
	ListLoadFailed
)

func (s ListState) String() string {
	switch s {
	case ListLoaded:
		return "loaded"
	case ListLoadFailed:
		return "load-failed"
	}
	return "loading"
}

// ListPage loads every assignment once and filters in memory.
type ListPage struct {
	backend  Backend
	notifier Notifier
	logger   *zap.Logger

	mu          sync.Mutex
	seq         uint64
	state       ListState
	assignments []domain.TrainingAssignment
	query       string
	loadErr     error
}

func NewListPage(backend Backend, notifier Notifier, logger *zap.Logger) *ListPage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListPage{
		backend:  backend,
		notifier: notifier,
		logger:   logger.Named("list-page"),
		state:    ListLoading,
	}
}

// Load fetches the full collection. If another Load started after this one,
// the result is dropped and ErrStaleResponse returned.
func (p *ListPage) Load(ctx context.Context) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.state = ListLoading
	p.mu.Unlock()

	p.logger.Debug("loading training assignments", zap.Uint64("seq", seq))
	assignments, err := p.backend.ListAssignedTrainingDocuments(ctx)

	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		p.logger.Debug("dropping stale list response", zap.Uint64("seq", seq))
		return ErrStaleResponse
	}
	if err != nil {
		p.state = ListLoadFailed
		p.assignments = nil
		p.loadErr = err
		p.mu.Unlock()

		p.logger.Warn("failed to load training assignments", zap.Error(err))
		p.notify(LevelError, "Failed to load training documents.")
		return err
	}
	p.state = ListLoaded
	p.assignments = assignments
	p.loadErr = nil
	p.mu.Unlock()

	p.logger.Debug("training assignments loaded", zap.Int("count", len(assignments)))
	return nil
}

// SetQuery replaces the free-text filter.
func (p *ListPage) SetQuery(query string) {
	p.mu.Lock()
	p.query = query
	p.mu.Unlock()
}

func (p *ListPage) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

func (p *ListPage) State() ListState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err is the last load error, if the page is in ListLoadFailed.
func (p *ListPage) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadErr
}

// All returns every loaded assignment, unfiltered.
func (p *ListPage) All() []domain.TrainingAssignment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TrainingAssignment(nil), p.assignments...)
}

// Visible returns the loaded assignments matching the current query.
func (p *ListPage) Visible() []domain.TrainingAssignment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != ListLoaded {
		return nil
	}
	return FilterAssignments(p.assignments, p.query)
}

// ShowEmpty reports whether the page should show its "nothing found"
// affordance: after a failed load, or when nothing matches.
func (p *ListPage) ShowEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case ListLoadFailed:
		return true
	case ListLoaded:
		return len(FilterAssignments(p.assignments, p.query)) == 0
	}
	return false
}

func (p *ListPage) notify(level Level, msg string) {
	if p.notifier != nil {
		p.notifier.Notify(Notification{Level: level, Message: msg})
	}
}
