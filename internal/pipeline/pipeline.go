// Package pipeline implements the three drivers: inbox ingest, publish, and
// issue ingest. Each driver is stateless across invocations and follows the
// same shape: load the full log, do bounded external I/O per touched record,
// mutate in memory, rewrite the full log. No locking is performed; the
// external scheduler must never run two mutating drivers concurrently, or
// the last write silently wins.
package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/usefultools/curator/internal/enrich"
	"github.com/usefultools/curator/internal/github"
	"github.com/usefultools/curator/internal/telegram"
)

// InboxSource yields update envelopes from the messaging channel.
type InboxSource interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// MessageSender posts one formatted message and returns the provider message
// id on success.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, text string) (int64, error)
}

// PageMetadataFetcher is the fail-soft page title/description source.
type PageMetadataFetcher interface {
	Fetch(ctx context.Context, pageURL string) (enrich.Partial, bool)
}

// Summarizer is the fail-soft LLM enrichment source.
type Summarizer interface {
	Summarize(ctx context.Context, toolURL, title, description string) (enrich.Partial, bool)
}

// IssueTracker is the issue source plus its terminal side effects.
type IssueTracker interface {
	ListOpenIssues(ctx context.Context, repo, label string) ([]github.Issue, error)
	GetRepo(ctx context.Context, fullName string) (*github.RepoMetadata, error)
	CommentOnIssue(ctx context.Context, repo string, number int, body string) error
	CloseIssue(ctx context.Context, repo string, number int) error
}

// CursorStore persists the inbox poller's last-acknowledged update id.
type CursorStore interface {
	Load() (int64, error)
	Save(lastUpdateID int64) error
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// ExtractURLs pulls zero or more http(s) URLs out of free text, trimming
// trailing punctuation that message formatting tends to glue on.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimRight(m, ".,;:!?"))
	}
	return out
}
