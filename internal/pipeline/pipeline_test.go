package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usefultools/curator/internal/enrich"
	"github.com/usefultools/curator/internal/github"
	"github.com/usefultools/curator/internal/telegram"
)

func TestExtractURLs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want []string
	}{
		{"plain", "check https://example.com/tool out", []string{"https://example.com/tool"}},
		{"multiple", "https://a.dev and http://b.dev/x", []string{"https://a.dev", "http://b.dev/x"}},
		{"trailing punctuation", "see https://example.com/tool.", []string{"https://example.com/tool"}},
		{"markdown link", "[tool](https://example.com/tool)", []string{"https://example.com/tool"}},
		{"none", "no links here", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractURLs(tc.text))
		})
	}
}

// --- shared fakes ---

type fakeCursor struct {
	last  int64
	saves int
}

func (c *fakeCursor) Load() (int64, error) { return c.last, nil }
func (c *fakeCursor) Save(last int64) error {
	c.last = last
	c.saves++
	return nil
}

type fakeInbox struct {
	updates    []telegram.Update
	gotOffset  int64
	err        error
	callsTotal int
}

func (f *fakeInbox) GetUpdates(_ context.Context, offset int64) ([]telegram.Update, error) {
	f.gotOffset = offset
	f.callsTotal++
	return f.updates, f.err
}

type fakeSender struct {
	sent   []string
	chat   string
	postID int64
	err    error
}

func (f *fakeSender) SendMessage(_ context.Context, chatID, text string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.chat = chatID
	f.sent = append(f.sent, text)
	return f.postID, nil
}

type fakePages struct {
	byURL map[string]enrich.Partial
}

func (f *fakePages) Fetch(_ context.Context, pageURL string) (enrich.Partial, bool) {
	p, ok := f.byURL[pageURL]
	return p, ok
}

type fakeLLM struct {
	partial enrich.Partial
	ok      bool
}

func (f *fakeLLM) Summarize(_ context.Context, _, _, _ string) (enrich.Partial, bool) {
	return f.partial, f.ok
}

type fakeTracker struct {
	issues    []github.Issue
	repos     map[string]*github.RepoMetadata
	comments  map[int]string
	closed    []int
	commentEr error
	closeErr  error
}

func newFakeTracker(issues ...github.Issue) *fakeTracker {
	return &fakeTracker{
		issues:   issues,
		repos:    map[string]*github.RepoMetadata{},
		comments: map[int]string{},
	}
}

func (f *fakeTracker) ListOpenIssues(_ context.Context, _, _ string) ([]github.Issue, error) {
	return f.issues, nil
}

func (f *fakeTracker) GetRepo(_ context.Context, fullName string) (*github.RepoMetadata, error) {
	if meta, ok := f.repos[fullName]; ok {
		return meta, nil
	}
	return nil, fmt.Errorf("repo %s not found", fullName)
}

func (f *fakeTracker) CommentOnIssue(_ context.Context, _ string, number int, body string) error {
	if f.commentEr != nil {
		return f.commentEr
	}
	f.comments[number] = body
	return nil
}

func (f *fakeTracker) CloseIssue(_ context.Context, _ string, number int) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closed = append(f.closed, number)
	return nil
}
