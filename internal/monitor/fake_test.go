package monitor_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/monitor"
)

var errBackend = errors.New("backend unavailable")

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

// fakeBackend keeps assignments in memory and behaves like the server: new
// comments get server ids and timestamps and are appended in arrival order.
type fakeBackend struct {
	mu          sync.Mutex
	assignments []domain.TrainingAssignment
	nextID      int

	listCalls    int
	postCalls    int
	replyCalls   int
	resolveCalls []string

	listErr    error
	postErr    error
	resolveErr error

	// listGate, when set, is called at the start of the n-th list call
	// (1-based) outside the lock, letting tests hold a response back.
	listGate    func(call int)
	resolveGate chan struct{}
}

func newFakeBackend(assignments ...domain.TrainingAssignment) *fakeBackend {
	return &fakeBackend{assignments: assignments}
}

func (f *fakeBackend) ListAssignedTrainingDocuments(ctx context.Context) ([]domain.TrainingAssignment, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	gate := f.listGate
	f.mu.Unlock()

	if gate != nil {
		gate(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return cloneAssignments(f.assignments), nil
}

func (f *fakeBackend) PostComment(ctx context.Context, assignmentID string, kind domain.ItemKind, itemID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postCalls++
	if f.postErr != nil {
		return f.postErr
	}
	item := f.item(assignmentID, kind, itemID)
	if item == nil {
		return errBackend
	}
	f.nextID++
	item.Discussion = append(item.Discussion, domain.Comment{
		ID:             fmt.Sprintf("srv-c%d", f.nextID),
		Author:         domain.AttorneyRef("Jane Doe", "jane@firm.test", domain.RoleAttorney),
		AuthorKindHint: domain.AuthorAttorney,
		Body:           body,
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, f.nextID, 0, time.UTC),
	})
	return nil
}

func (f *fakeBackend) PostReply(ctx context.Context, assignmentID string, kind domain.ItemKind, itemID, commentID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replyCalls++
	if f.postErr != nil {
		return f.postErr
	}
	item := f.item(assignmentID, kind, itemID)
	if item == nil {
		return errBackend
	}
	for i := range item.Discussion {
		if item.Discussion[i].ID == commentID {
			f.nextID++
			item.Discussion[i].Replies = append(item.Discussion[i].Replies, domain.Reply{
				ID:   fmt.Sprintf("srv-r%d", f.nextID),
				Body: body,
			})
			return nil
		}
	}
	return errBackend
}

func (f *fakeBackend) ResolveFileAccessURL(ctx context.Context, fileRef string) (string, error) {
	f.mu.Lock()
	f.resolveCalls = append(f.resolveCalls, fileRef)
	gate := f.resolveGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return "https://signed.example/" + fileRef + "?sig=abc", nil
}

func (f *fakeBackend) item(assignmentID string, kind domain.ItemKind, itemID string) *domain.ContentItem {
	for i := range f.assignments {
		if f.assignments[i].ID != assignmentID {
			continue
		}
		items := f.assignments[i].Items.Files
		if kind == domain.KindVideo {
			items = f.assignments[i].Items.Videos
		}
		for j := range items {
			if items[j].ID == itemID {
				return &items[j]
			}
		}
	}
	return nil
}

func (f *fakeBackend) counts() (list, post, reply, resolve int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.postCalls, f.replyCalls, len(f.resolveCalls)
}

func cloneAssignments(in []domain.TrainingAssignment) []domain.TrainingAssignment {
	out := make([]domain.TrainingAssignment, len(in))
	for i, a := range in {
		a.Items.Files = cloneItems(a.Items.Files)
		a.Items.Videos = cloneItems(a.Items.Videos)
		out[i] = a
	}
	return out
}

func cloneItems(in []domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, len(in))
	for i, it := range in {
		comments := make([]domain.Comment, len(it.Discussion))
		for j, c := range it.Discussion {
			c.Replies = append([]domain.Reply(nil), c.Replies...)
			comments[j] = c
		}
		it.Discussion = comments
		it.Progress = append([]domain.ProgressRecord(nil), it.Progress...)
		out[i] = it
	}
	return out
}

type recorder struct {
	mu            sync.Mutex
	notifications []monitor.Notification
	toList        int
	opened        []string
	openErr       error
}

func (r *recorder) Notify(n monitor.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recorder) ToList() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toList++
}

func (r *recorder) Open(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, url)
	return r.openErr
}

func (r *recorder) levels() []monitor.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]monitor.Level, len(r.notifications))
	for i, n := range r.notifications {
		out[i] = n.Level
	}
	return out
}

func sampleAssignments() []domain.TrainingAssignment {
	return []domain.TrainingAssignment{
		{
			ID:          "a1",
			Name:        "Contract Basics",
			Description: "offer, acceptance and consideration",
			Priority:    domain.PriorityHigh,
			AssignedParalegals: []domain.UserRef{
				domain.ParalegalRef("Pat", "Lee", "", domain.RoleParalegal),
			},
			Items: domain.AssignmentItems{
				Files: []domain.ContentItem{
					{ID: "f1", Kind: domain.KindDocument, SourceRef: "docs/contract.pdf", DisplayName: "contract.pdf"},
					{ID: "f2", Kind: domain.KindDocument, SourceRef: "https://law.example/guide", IsExternalLink: true, DisplayName: "Guide"},
				},
				Videos: []domain.ContentItem{
					{
						ID: "v1", Kind: domain.KindVideo, SourceRef: "videos/intro.mp4", DisplayName: "intro.mp4",
						Discussion: []domain.Comment{{ID: "c1", Author: domain.IDRef("p1"), Body: "question"}},
					},
				},
			},
		},
		{
			ID:          "a2",
			Name:        "Filing 101",
			Description: "court filing overview",
		},
	}
}
