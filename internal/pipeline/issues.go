package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usefultools/curator/internal/catalog"
	"github.com/usefultools/curator/internal/github"
	"github.com/usefultools/curator/internal/store"
)

// fallbackSummary is the last resort when both enrichment sources degrade.
const fallbackSummary = "A useful web tool worth a look."

// IssueIngestor turns labeled intake issues into enriched, publish-ready
// items and closes the issues it ingested.
type IssueIngestor struct {
	store   store.Store
	tracker IssueTracker
	pages   PageMetadataFetcher
	llm     Summarizer
	repo    string
	label   string
	now     func() time.Time
	logger  *zap.Logger
}

// IssueIngestorDeps wires the issues driver. Pages and LLM are optional
// enrichment sources.
type IssueIngestorDeps struct {
	Store   store.Store
	Tracker IssueTracker
	Pages   PageMetadataFetcher
	LLM     Summarizer
	Repo    string
	Label   string
	Now     func() time.Time
	Logger  *zap.Logger
}

// NewIssueIngestor validates and wires the driver.
func NewIssueIngestor(deps IssueIngestorDeps) (*IssueIngestor, error) {
	if deps.Store == nil || deps.Tracker == nil {
		return nil, fmt.Errorf("store and tracker are required")
	}
	if deps.Repo == "" {
		return nil, fmt.Errorf("repo is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &IssueIngestor{
		store:   deps.Store,
		tracker: deps.Tracker,
		pages:   deps.Pages,
		llm:     deps.LLM,
		repo:    deps.Repo,
		label:   deps.Label,
		now:     deps.Now,
		logger:  deps.Logger,
	}, nil
}

// IssuesResult is the structured summary of one issues run.
type IssuesResult struct {
	RunID         string
	Issues        int
	Ingested      int
	SkippedIssues int
	Inserted      int
	Merged        int
	ItemIDs       []string
	ClosedIssues  []int
	SkippedLines  int
}

// Run ingests every open intake issue in one pass. The log is saved before
// the comment/close side effects so a failed close never loses an ingested
// record; re-runs stay idempotent through upsert. A failed comment or close
// is fatal for the run (it is the side effect the driver exists to perform).
func (g *IssueIngestor) Run(ctx context.Context) (IssuesResult, error) {
	result := IssuesResult{RunID: uuid.NewString()}

	issues, err := g.tracker.ListOpenIssues(ctx, g.repo, g.label)
	if err != nil {
		return result, fmt.Errorf("list issues: %w", err)
	}
	result.Issues = len(issues)

	if len(issues) == 0 {
		g.logger.Info("nothing to do: no open intake issues", zap.String("run_id", result.RunID))
		return result, nil
	}

	items, stats, err := g.store.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load log: %w", err)
	}
	result.SkippedLines = stats.Skipped

	type ingested struct {
		issue  github.Issue
		itemID string
	}
	var done []ingested

	for _, issue := range issues {
		urls := ExtractURLs(issue.Title + "\n" + issue.Body)
		if len(urls) == 0 {
			result.SkippedIssues++
			g.logger.Warn("skipping issue without a link",
				zap.String("run_id", result.RunID),
				zap.Int("issue", issue.Number),
			)
			continue
		}

		now := g.now()
		candidate := g.buildCandidate(ctx, urls[0], issue, now)

		var wasUpdate bool
		items, wasUpdate = catalog.Upsert(items, candidate, now)
		if wasUpdate {
			result.Merged++
		} else {
			result.Inserted++
		}
		result.Ingested++
		result.ItemIDs = append(result.ItemIDs, candidate.ID)
		done = append(done, ingested{issue: issue, itemID: candidate.ID})
	}

	if len(done) > 0 {
		if err := g.store.Save(ctx, items); err != nil {
			return result, fmt.Errorf("save log: %w", err)
		}
	}

	for _, d := range done {
		comment := fmt.Sprintf("Ingested as `%s`; it is now queued for publication. Thanks!", d.itemID)
		if err := g.tracker.CommentOnIssue(ctx, g.repo, d.issue.Number, comment); err != nil {
			return result, fmt.Errorf("confirm issue #%d: %w", d.issue.Number, err)
		}
		if err := g.tracker.CloseIssue(ctx, g.repo, d.issue.Number); err != nil {
			return result, fmt.Errorf("close issue #%d: %w", d.issue.Number, err)
		}
		result.ClosedIssues = append(result.ClosedIssues, d.issue.Number)
	}

	g.logger.Info("issues run complete",
		zap.String("run_id", result.RunID),
		zap.Int("issues", result.Issues),
		zap.Int("ingested", result.Ingested),
		zap.Int("skipped_issues", result.SkippedIssues),
		zap.Int("inserted", result.Inserted),
		zap.Int("merged", result.Merged),
		zap.Strings("item_ids", result.ItemIDs),
		zap.Ints("closed_issues", result.ClosedIssues),
		zap.Int("skipped_log_lines", result.SkippedLines),
	)
	return result, nil
}

// buildCandidate assembles an enriched, publish-ready item from an issue.
// Issue submissions enter the lifecycle at scheduled: the structured intake
// already did the shortlisting. Each enrichment source degrades to the next:
// repo metadata, then page metadata, then the LLM summary, then a fixed
// placeholder.
func (g *IssueIngestor) buildCandidate(ctx context.Context, rawURL string, issue github.Issue, now time.Time) catalog.Item {
	candidate := catalog.NewItem(rawURL, catalog.StatusScheduled, catalog.Source{
		Type:        catalog.SourceIssueTracker,
		IssueNumber: issue.Number,
		Author:      issue.User.Login,
	}, now)

	var (
		title       = issue.Title
		description string
		metrics     map[string]any
	)

	if fullName, ok := github.ParseRepoURL(rawURL); ok {
		if meta, err := g.tracker.GetRepo(ctx, fullName); err == nil && meta != nil {
			title = meta.FullName
			description = meta.Description
			metrics = map[string]any{"stars": meta.Stars}
			if meta.Language != "" {
				metrics["language"] = meta.Language
			}
		} else if err != nil {
			g.logger.Debug("repo metadata unavailable", zap.String("url", rawURL), zap.Error(err))
		}
	} else if g.pages != nil {
		if partial, ok := g.pages.Fetch(ctx, candidate.CanonicalURL); ok {
			if partial.Title != "" {
				title = partial.Title
			}
			description = partial.Summary
		}
	}

	candidate.Title = title
	candidate.Summary = description
	candidate.Content.Metrics = metrics

	if g.llm != nil {
		if partial, ok := g.llm.Summarize(ctx, candidate.CanonicalURL, title, description); ok {
			if partial.Summary != "" {
				candidate.Summary = partial.Summary
			}
			candidate.Content.Highlights = partial.Highlights
			candidate.Content.BestFor = partial.BestFor
			candidate.Tags = partial.Tags
		}
	}

	if candidate.Summary == "" {
		candidate.Summary = fallbackSummary
	}
	return candidate
}
