package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-token", time.Second)
	require.NoError(t, err)
	c.SetBaseURL(srv.URL)
	return c
}

func TestListOpenIssues(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/useful-tools/issues", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "tool", r.URL.Query().Get("labels"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `[{"number": 12, "title": "Add jq", "body": "https://github.com/jqlang/jq", "user": {"login": "bob"}}]`)
	})

	issues, err := c.ListOpenIssues(context.Background(), "acme/useful-tools", "tool")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 12, issues[0].Number)
	assert.Equal(t, "Add jq", issues[0].Title)
	assert.Equal(t, "bob", issues[0].User.Login)
}

func TestGetRepo(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/jqlang/jq", r.URL.Path)
		fmt.Fprint(w, `{"full_name": "jqlang/jq", "description": "JSON processor", "stargazers_count": 31000, "language": "C"}`)
	})

	meta, err := c.GetRepo(context.Background(), "jqlang/jq")
	require.NoError(t, err)
	assert.Equal(t, "jqlang/jq", meta.FullName)
	assert.Equal(t, 31000, meta.Stars)
	assert.Equal(t, "C", meta.Language)
}

func TestCommentAndClose(t *testing.T) {
	t.Parallel()

	var gotComment, gotPatch map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/repos/acme/useful-tools/issues/12/comments":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotComment))
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPatch && r.URL.Path == "/repos/acme/useful-tools/issues/12":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPatch))
			fmt.Fprint(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	})

	require.NoError(t, c.CommentOnIssue(context.Background(), "acme/useful-tools", 12, "done"))
	require.NoError(t, c.CloseIssue(context.Background(), "acme/useful-tools", 12))
	assert.Equal(t, map[string]string{"body": "done"}, gotComment)
	assert.Equal(t, map[string]string{"state": "closed"}, gotPatch)
}

func TestErrorStatusSurfaces(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	})

	_, err := c.ListOpenIssues(context.Background(), "acme/useful-tools", "tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestParseRepoURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://github.com/jqlang/jq", "jqlang/jq", true},
		{"http://github.com/jqlang/jq.git", "jqlang/jq", true},
		{"https://github.com/jqlang/jq/releases", "jqlang/jq", true},
		{"https://github.com/jqlang/jq?tab=readme", "jqlang/jq", true},
		{"https://example.com/jqlang/jq", "", false},
		{"https://github.com/onlyowner", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseRepoURL(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
