package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/monitor"
)

var _ monitor.Backend = (*Client)(nil)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]string
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recorded{method: r.Method, path: r.URL.EscapedPath(), auth: r.Header.Get("Authorization")}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &call.body))
		}
		rec.mu.Lock()
		rec.calls = append(rec.calls, call)
		rec.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second), rec
}

func TestLoginStoresToken(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/login" {
			_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","fullName":"Jane Doe","role":"attorney"}}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	res, err := c.Login(context.Background(), "jane@firm.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", res.User.FullName)
	assert.Equal(t, domain.RoleAttorney, res.User.Role)

	list, err := c.ListAssignedTrainingDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	got := calls.all()
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{"email": "jane@firm.com", "password": "pw"}, got[0].body)
	assert.Empty(t, got[0].auth)
	assert.Equal(t, "Bearer tok-1", got[1].auth)
}

func TestListAssignedTrainingDocumentsDecodesUserRefs(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"id": "a1", "name": "Contract Basics", "priority": "High",
			"assignedParalegals": ["p9", {"firstName": "", "lastName": ""}, null],
			"items": {"files": [{
				"id": "f1", "kind": "document", "sourceRef": "training/x/files/k", "displayName": "guide.pdf",
				"progress": [{"id": "r1", "learner": {"firstName": "Sam", "lastName": "Lee"}, "percentComplete": 100}],
				"discussion": [{"id": "c1", "author": {"fullName": "Jane Doe", "role": "attorney"}, "body": "hi", "replies": []}]
			}], "videos": []}
		}]`))
	})

	list, err := c.ListAssignedTrainingDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	a := list[0]
	assert.Equal(t, domain.IDRef("p9"), a.AssignedParalegals[0])
	assert.Equal(t, domain.RefParalegal, a.AssignedParalegals[1].Kind)
	assert.Equal(t, domain.NoUser(), a.AssignedParalegals[2])
	assert.Equal(t, 100, a.Items.Files[0].Progress[0].PercentComplete)
	assert.Equal(t, domain.RefAttorney, a.Items.Files[0].Discussion[0].Author.Kind)
}

func TestPostCommentAndReplyPaths(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	c.SetAuthToken("tok")
	ctx := context.Background()

	require.NoError(t, c.PostComment(ctx, "a1", domain.KindVideo, "v1", "  keep spacing "))
	require.NoError(t, c.PostReply(ctx, "a1", domain.KindDocument, "f1", "c/1", "reply"))

	got := calls.all()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, "/api/v1/training-documents/a1/videos/v1/comments", got[0].path)
	assert.Equal(t, "  keep spacing ", got[0].body["body"])
	assert.Equal(t, "/api/v1/training-documents/a1/files/f1/comments/c%2F1/replies", got[1].path)
	assert.Equal(t, "Bearer tok", got[1].auth)
}

func TestResolveFileAccessURL(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://s3.test/signed"}`))
	})

	url, err := c.ResolveFileAccessURL(context.Background(), "training/x/files/k")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/signed", url)
	got := calls.all()
	require.Len(t, got, 1)
	assert.Equal(t, "/api/v1/files/access-url", got[0].path)
	assert.Equal(t, "training/x/files/k", got[0].body["fileRef"])
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json error", http.StatusForbidden, `{"error":"access denied to this training document"}`, "access denied to this training document"},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down"},
		{"empty", http.StatusInternalServerError, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.ListAssignedTrainingDocuments(context.Background())
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestEmptyAccessURLIsAnError(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := c.ResolveFileAccessURL(context.Background(), "k")
	assert.Error(t, err)
}
