package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexdesk/training-monitor/internal/discussion"
	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/monitor"
)

type memBackend struct {
	assignments []domain.TrainingAssignment
	listErr     error
	postErr     error
	posted      []string
	resolved    []string
}

func (b *memBackend) ListAssignedTrainingDocuments(context.Context) ([]domain.TrainingAssignment, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]domain.TrainingAssignment, len(b.assignments))
	copy(out, b.assignments)
	return out, nil
}

func (b *memBackend) PostComment(_ context.Context, assignmentID string, kind domain.ItemKind, itemID, body string) error {
	if b.postErr != nil {
		return b.postErr
	}
	b.posted = append(b.posted, strings.Join([]string{assignmentID, string(kind), itemID, body}, "|"))
	item := b.item(assignmentID, kind, itemID)
	if item != nil {
		item.Discussion = append(item.Discussion, domain.Comment{
			ID: "srv-1", Author: domain.AttorneyRef("Jane Doe", "", domain.RoleAttorney), Body: body,
		})
	}
	return nil
}

func (b *memBackend) PostReply(_ context.Context, assignmentID string, kind domain.ItemKind, itemID, commentID, body string) error {
	if b.postErr != nil {
		return b.postErr
	}
	b.posted = append(b.posted, strings.Join([]string{assignmentID, string(kind), itemID, commentID, body}, "|"))
	return nil
}

func (b *memBackend) ResolveFileAccessURL(_ context.Context, fileRef string) (string, error) {
	b.resolved = append(b.resolved, fileRef)
	return "https://signed.test/" + fileRef, nil
}

func (b *memBackend) item(assignmentID string, kind domain.ItemKind, itemID string) *domain.ContentItem {
	for i := range b.assignments {
		if b.assignments[i].ID != assignmentID {
			continue
		}
		items := b.assignments[i].Items.Files
		if kind == domain.KindVideo {
			items = b.assignments[i].Items.Videos
		}
		for j := range items {
			if items[j].ID == itemID {
				return &items[j]
			}
		}
	}
	return nil
}

func sample() []domain.TrainingAssignment {
	updated := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	return []domain.TrainingAssignment{
		{
			ID:          "a1",
			Name:        "Contract Basics",
			Priority:    domain.PriorityHigh,
			Description: "Intro to contracts",
			AssignedParalegals: []domain.UserRef{
				domain.ParalegalRef("Sam", "Lee", "", domain.RoleParalegal),
				domain.IDRef("p-missing"),
			},
			Items: domain.AssignmentItems{
				Files: []domain.ContentItem{{
					ID: "f1", Kind: domain.KindDocument, SourceRef: "training/x/files/guide.pdf", DisplayName: "guide.pdf",
					Progress: []domain.ProgressRecord{
						{ID: "r1", Learner: domain.ParalegalRef("Sam", "Lee", "", domain.RoleParalegal), PercentComplete: 100, LastUpdated: &updated},
						{ID: "r2", Learner: domain.IDRef("p-missing"), PercentComplete: 40},
					},
					Discussion: []domain.Comment{{
						ID: "c1", Author: domain.AttorneyRef("Jane Doe", "", domain.RoleAttorney), Body: "Read section 2",
						Replies: []domain.Reply{{ID: "r-1", Author: domain.NoUser(), AuthorKindHint: domain.AuthorParalegal, Body: "Done"}},
					}},
				}},
				Videos: []domain.ContentItem{{
					ID: "v1", Kind: domain.KindVideo, SourceRef: "https://videos.example.com/intro", IsExternalLink: true, DisplayName: "Intro",
				}},
			},
		},
		{ID: "a2", Name: "Filing 101", Description: "Court filings"},
	}
}

func newApp(backend monitor.Backend) (*App, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &App{Backend: backend, Out: &out, Err: &errOut}, &out, &errOut
}

func TestListCommand(t *testing.T) {
	app, out, _ := newApp(&memBackend{assignments: sample()})

	require.NoError(t, app.Run(context.Background(), []string{"list"}))
	assert.Contains(t, out.String(), "a1  Contract Basics  [High]")
	assert.Contains(t, out.String(), "1 files, 1 videos, 2 paralegals assigned")
	assert.Contains(t, out.String(), "a2  Filing 101")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"list", "--query", "COURT"}))
	assert.NotContains(t, out.String(), "Contract Basics")
	assert.Contains(t, out.String(), "Filing 101")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"list", "-q", "zzz"}))
	assert.Equal(t, "No training documents found.\n", out.String())
}

func TestListCommandFailure(t *testing.T) {
	boom := errors.New("offline")
	app, out, errOut := newApp(&memBackend{listErr: boom})

	err := app.Run(context.Background(), []string{"list"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "No training documents found.\n", out.String())
	assert.Contains(t, errOut.String(), "[error] Failed to load training documents.")
}

func TestShowCommandRendersDetail(t *testing.T) {
	app, out, _ := newApp(&memBackend{assignments: sample()})

	require.NoError(t, app.Run(context.Background(), []string{"show", "a1"}))
	s := out.String()
	assert.Contains(t, s, "Assigned: [SL] Sam Lee, [?] User (Loading...)")
	assert.Contains(t, s, "Progress: 1 of 2 complete (50%)")
	assert.Contains(t, s, "[SL] Sam Lee  100% Read  updated Mar 4  [complete]")
	assert.Contains(t, s, "[?] User (Loading...)  40% Read  updated N/A")
	assert.Contains(t, s, "Discussion (2)")
	assert.Contains(t, s, "[JD] Jane Doe (Attorney) [id c1]: Read section 2")
	assert.Contains(t, s, "> [?] Unknown (Paralegal) [id r-1]: Done")
	assert.Contains(t, s, "VIDEOS (1)")
	assert.Contains(t, s, "Intro  [link, id v1]")
	assert.Contains(t, s, "no progress recorded yet")
}

func TestShowMissingAssignmentFallsBackToList(t *testing.T) {
	app, out, errOut := newApp(&memBackend{assignments: sample()})

	err := app.Run(context.Background(), []string{"show", "nope"})
	assert.ErrorIs(t, err, monitor.ErrNotFound)
	assert.Contains(t, errOut.String(), "[error] Training document not found.")
	assert.Contains(t, out.String(), "a1  Contract Basics")
}

func TestCommentCommandReloads(t *testing.T) {
	backend := &memBackend{assignments: sample()}
	app, out, errOut := newApp(backend)

	require.NoError(t, app.Run(context.Background(), []string{"comment", "a1", "files", "f1", "Please", "review"}))
	assert.Equal(t, []string{"a1|document|f1|Please review"}, backend.posted)
	assert.Contains(t, errOut.String(), "[success] Comment added.")
	assert.Contains(t, out.String(), "[id srv-1]: Please review")
	assert.Contains(t, out.String(), "Discussion (3)")
}

func TestCommentCommandRejectsBlankBody(t *testing.T) {
	backend := &memBackend{assignments: sample()}
	app, _, errOut := newApp(backend)

	err := app.Run(context.Background(), []string{"comment", "a1", "files", "f1", " "})
	assert.ErrorIs(t, err, discussion.ErrEmptyBody)
	assert.Empty(t, backend.posted)
	assert.Contains(t, errOut.String(), "[warning] Please enter a message.")
}

func TestReplyCommand(t *testing.T) {
	backend := &memBackend{assignments: sample()}
	app, _, _ := newApp(backend)

	require.NoError(t, app.Run(context.Background(), []string{"reply", "a1", "files", "f1", "c1", "Thanks"}))
	assert.Equal(t, []string{"a1|document|f1|c1|Thanks"}, backend.posted)

	backend.postErr = errors.New("server down")
	app, _, errOut := newApp(backend)
	assert.Error(t, app.Run(context.Background(), []string{"reply", "a1", "files", "f1", "c1", "Again"}))
	assert.Contains(t, errOut.String(), "[error] Failed to add reply.")
}

func TestOpenCommand(t *testing.T) {
	backend := &memBackend{assignments: sample()}
	app, out, errOut := newApp(backend)

	require.NoError(t, app.Run(context.Background(), []string{"open", "a1", "videos", "v1"}))
	assert.Equal(t, "Open: https://videos.example.com/intro\n", out.String())
	assert.Empty(t, backend.resolved)

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"open", "a1", "files", "f1"}))
	assert.Equal(t, "Open: https://signed.test/training/x/files/guide.pdf\n", out.String())
	assert.Equal(t, []string{"training/x/files/guide.pdf"}, backend.resolved)

	err := app.Run(context.Background(), []string{"open", "a1", "files", "missing"})
	assert.ErrorIs(t, err, monitor.ErrItemNotFound)
	assert.Contains(t, errOut.String(), "[error] File not found.")
}

func TestUsageErrors(t *testing.T) {
	app, _, _ := newApp(&memBackend{})

	for _, args := range [][]string{
		nil,
		{"frobnicate"},
		{"show"},
		{"comment", "a1", "slides", "f1", "hi"},
		{"open", "a1", "files"},
		{"login", "--email", "x@y.z"},
	} {
		assert.ErrorIs(t, app.Run(context.Background(), args), ErrUsage, "args %v", args)
	}
}

func TestLoginCommand(t *testing.T) {
	app, out, _ := newApp(&memBackend{})
	app.Login = func(_ context.Context, email, password string) (string, error) {
		if email == "jane@firm.com" && password == "pw" {
			return "tok-123", nil
		}
		return "", errors.New("bad credentials")
	}

	require.NoError(t, app.Run(context.Background(), []string{"login", "--email", "jane@firm.com", "--password", "pw"}))
	assert.Equal(t, "export MONITOR_TOKEN=tok-123\n", out.String())

	assert.Error(t, app.Run(context.Background(), []string{"login", "--email", "jane@firm.com", "--password", "nope"}))
}
