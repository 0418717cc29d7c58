// Package progress prepares per-item progress records for display.
package progress

import (
	"time"

	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/identity"
)

// NotUpdated is shown when a record carries no timestamp.
const NotUpdated = "N/A"

// lastUpdatedLayout renders short month and day, e.g. "Mar 4".
const lastUpdatedLayout = "Jan 2"

// Status separates finished records from partial ones so renderers can badge
// them differently.
type Status int

const (
	StatusInProgress Status = iota
	StatusComplete
)

func (s Status) String() string {
	if s == StatusComplete {
		return "complete"
	}
	return "in-progress"
}

// Entry is one learner's record, ready to render.
type Entry struct {
	RecordID         string
	Learner          identity.Identity
	Percent          int
	Status           Status
	LastUpdatedLabel string
}

// Complete reports whether the learner has finished the item.
func (e Entry) Complete() bool { return e.Status == StatusComplete }

// View is the progress panel of a single content item.
type View struct {
	// Label is "Read" for documents and "Watched" for videos.
	Label        string
	LearnerCount int
	Entries      []Entry
}

// NewView builds the progress panel for an item. Records are kept in the
// order received; no aggregation across records happens here.
func NewView(item domain.ContentItem) View {
	v := View{
		Label:        item.Kind.ProgressLabel(),
		LearnerCount: len(item.Progress),
		Entries:      make([]Entry, 0, len(item.Progress)),
	}
	for _, rec := range item.Progress {
		v.Entries = append(v.Entries, NewEntry(rec))
	}
	return v
}

func NewEntry(rec domain.ProgressRecord) Entry {
	pct := clamp(rec.PercentComplete)
	status := StatusInProgress
	if pct == 100 {
		status = StatusComplete
	}
	return Entry{
		RecordID:         rec.ID,
		Learner:          identity.Resolve(rec.Learner),
		Percent:          pct,
		Status:           status,
		LastUpdatedLabel: FormatLastUpdated(rec.LastUpdated),
	}
}

// FormatLastUpdated renders a timestamp as short month+day, or NotUpdated.
func FormatLastUpdated(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotUpdated
	}
	return t.Format(lastUpdatedLayout)
}

func clamp(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
