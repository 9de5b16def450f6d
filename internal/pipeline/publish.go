package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usefultools/curator/internal/catalog"
	"github.com/usefultools/curator/internal/store"
)

// publishOrder is the stage preference when selecting the one item to post:
// enriched issue submissions ship before raw inbox links. Within a stage the
// oldest log entry wins because the log is append-ordered.
var publishOrder = []catalog.Status{
	catalog.StatusScheduled,
	catalog.StatusShortlisted,
	catalog.StatusInbox,
}

// Publisher selects exactly one pending item per run and posts it to the
// channel.
type Publisher struct {
	store     store.Store
	sender    MessageSender
	channelID string
	now       func() time.Time
	logger    *zap.Logger
}

// PublisherDeps wires the publish driver.
type PublisherDeps struct {
	Store     store.Store
	Sender    MessageSender
	ChannelID string
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewPublisher validates and wires the driver.
func NewPublisher(deps PublisherDeps) (*Publisher, error) {
	if deps.Store == nil || deps.Sender == nil {
		return nil, fmt.Errorf("store and sender are required")
	}
	if deps.ChannelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Publisher{
		store:     deps.Store,
		sender:    deps.Sender,
		channelID: deps.ChannelID,
		now:       deps.Now,
		logger:    deps.Logger,
	}, nil
}

// PublishResult is the structured summary of one publish run.
type PublishResult struct {
	RunID        string
	Published    bool
	ItemID       string
	PostID       int64
	SkippedLines int
}

// Run posts at most one item. The item is marked posted and the log
// rewritten only after the send reports success, so a failed run is
// retryable without double-posting. No pending item is a successful
// nothing-to-do run that leaves the file untouched.
func (p *Publisher) Run(ctx context.Context) (PublishResult, error) {
	result := PublishResult{RunID: uuid.NewString()}

	items, stats, err := p.store.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load log: %w", err)
	}
	result.SkippedLines = stats.Skipped

	idx := selectPending(items)
	if idx < 0 {
		p.logger.Info("nothing to do: no pending items", zap.String("run_id", result.RunID))
		return result, nil
	}

	item := items[idx]
	postID, err := p.sender.SendMessage(ctx, p.channelID, FormatPost(item))
	if err != nil {
		return result, fmt.Errorf("send post for %s: %w", item.ID, err)
	}

	now := p.now()
	if err := items[idx].Transition(catalog.StatusPosted); err != nil {
		return result, fmt.Errorf("mark %s posted: %w", item.ID, err)
	}
	items[idx].Published = &catalog.Published{
		Channel:  p.channelID,
		PostID:   postID,
		PostedAt: now,
	}
	if now.After(items[idx].UpdatedAt) {
		items[idx].UpdatedAt = now
	}

	if err := p.store.Save(ctx, items); err != nil {
		return result, fmt.Errorf("save log: %w", err)
	}

	result.Published = true
	result.ItemID = item.ID
	result.PostID = postID
	p.logger.Info("publish run complete",
		zap.String("run_id", result.RunID),
		zap.String("item_id", result.ItemID),
		zap.Int64("post_id", result.PostID),
		zap.Int("skipped_log_lines", result.SkippedLines),
	)
	return result, nil
}

func selectPending(items []catalog.Item) int {
	for _, status := range publishOrder {
		for i := range items {
			if items[i].Status == status {
				return i
			}
		}
	}
	return -1
}

// FormatPost renders the channel message for an item: title, summary, link,
// and up to the display cap of tags as hashtags.
func FormatPost(item catalog.Item) string {
	var b strings.Builder

	title := item.Title
	if title == "" {
		title = item.CanonicalURL
	}
	fmt.Fprintf(&b, "*%s*\n", title)

	if item.Summary != "" {
		fmt.Fprintf(&b, "%s\n", item.Summary)
	}
	if item.Content.BestFor != "" {
		fmt.Fprintf(&b, "Best for: %s\n", item.Content.BestFor)
	}
	fmt.Fprintf(&b, "\n%s", item.CanonicalURL)

	if len(item.Tags) > 0 {
		hashtags := make([]string, 0, len(item.Tags))
		for _, tag := range item.Tags {
			hashtags = append(hashtags, "#"+strings.ReplaceAll(tag, "/", "_"))
		}
		fmt.Fprintf(&b, "\n%s", strings.Join(hashtags, " "))
	}
	return b.String()
}
