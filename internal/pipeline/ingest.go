package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usefultools/curator/internal/catalog"
	"github.com/usefultools/curator/internal/store"
)

// Ingestor polls the messaging inbox for new messages and upserts one item
// per URL found.
type Ingestor struct {
	store       store.Store
	cursor      CursorStore
	source      InboxSource
	pages       PageMetadataFetcher
	inboxChatID string
	now         func() time.Time
	logger      *zap.Logger
}

// IngestorDeps wires the ingest driver.
type IngestorDeps struct {
	Store       store.Store
	Cursor      CursorStore
	Source      InboxSource
	Pages       PageMetadataFetcher
	InboxChatID string
	Now         func() time.Time
	Logger      *zap.Logger
}

// NewIngestor validates and wires the driver.
func NewIngestor(deps IngestorDeps) (*Ingestor, error) {
	if deps.Store == nil || deps.Cursor == nil || deps.Source == nil {
		return nil, fmt.Errorf("store, cursor, and source are required")
	}
	if deps.InboxChatID == "" {
		return nil, fmt.Errorf("inbox chat id is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Ingestor{
		store:       deps.Store,
		cursor:      deps.Cursor,
		source:      deps.Source,
		pages:       deps.Pages,
		inboxChatID: deps.InboxChatID,
		now:         deps.Now,
		logger:      deps.Logger,
	}, nil
}

// IngestResult is the structured summary of one ingest run.
type IngestResult struct {
	RunID        string
	Updates      int
	URLsFound    int
	Inserted     int
	Merged       int
	ItemIDs      []string
	SkippedLines int
}

// Run performs one poll-ingest cycle. A run that sees no updates leaves both
// the log and the cursor untouched.
func (g *Ingestor) Run(ctx context.Context) (IngestResult, error) {
	result := IngestResult{RunID: uuid.NewString()}

	lastSeen, err := g.cursor.Load()
	if err != nil {
		return result, fmt.Errorf("load cursor: %w", err)
	}

	updates, err := g.source.GetUpdates(ctx, lastSeen+1)
	if err != nil {
		return result, fmt.Errorf("poll inbox: %w", err)
	}
	result.Updates = len(updates)

	if len(updates) == 0 {
		g.logger.Info("nothing to do: no new updates", zap.String("run_id", result.RunID))
		return result, nil
	}

	items, stats, err := g.store.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load log: %w", err)
	}
	result.SkippedLines = stats.Skipped

	maxUpdateID := lastSeen
	changed := false
	for _, update := range updates {
		if update.ID > maxUpdateID {
			maxUpdateID = update.ID
		}
		msg := update.Message
		if msg == nil || msg.ChatID != g.inboxChatID {
			continue
		}

		for _, rawURL := range ExtractURLs(msg.Text) {
			result.URLsFound++
			now := g.now()
			candidate := catalog.NewItem(rawURL, catalog.StatusInbox, catalog.Source{
				Type:      catalog.SourceInbox,
				ChatID:    msg.ChatID,
				MessageID: msg.ID,
				Author:    msg.Author,
			}, now)
			g.enrichCandidate(ctx, &candidate)

			var wasUpdate bool
			items, wasUpdate = catalog.Upsert(items, candidate, now)
			if wasUpdate {
				result.Merged++
			} else {
				result.Inserted++
			}
			result.ItemIDs = append(result.ItemIDs, candidate.ID)
			changed = true
		}
	}

	if changed {
		if err := g.store.Save(ctx, items); err != nil {
			return result, fmt.Errorf("save log: %w", err)
		}
	}

	// The cursor advances whenever updates were observed, even URL-less
	// ones, so the next run does not re-fetch them.
	if maxUpdateID > lastSeen {
		if err := g.cursor.Save(maxUpdateID); err != nil {
			return result, fmt.Errorf("save cursor: %w", err)
		}
	}

	g.logger.Info("ingest run complete",
		zap.String("run_id", result.RunID),
		zap.Int("updates", result.Updates),
		zap.Int("urls_found", result.URLsFound),
		zap.Int("inserted", result.Inserted),
		zap.Int("merged", result.Merged),
		zap.Strings("item_ids", result.ItemIDs),
		zap.Int("skipped_log_lines", result.SkippedLines),
	)
	return result, nil
}

// enrichCandidate fills the candidate from page metadata when available and
// falls back to the URL host as a placeholder title.
func (g *Ingestor) enrichCandidate(ctx context.Context, candidate *catalog.Item) {
	if g.pages != nil {
		if partial, ok := g.pages.Fetch(ctx, candidate.CanonicalURL); ok {
			candidate.Title = partial.Title
			candidate.Summary = partial.Summary
		}
	}
	if candidate.Title == "" {
		if u, err := url.Parse(candidate.CanonicalURL); err == nil && u.Host != "" {
			candidate.Title = u.Host
		}
	}
}
