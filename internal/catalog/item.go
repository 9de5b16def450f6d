// Package catalog defines the curated link record, its identity derivation,
// the publication lifecycle, and the merge discipline shared by every driver.
package catalog

import "time"

// DefaultLanguage is assigned to items created without an explicit language.
const DefaultLanguage = "en"

// SourceType discriminates where an item was first contributed from.
type SourceType string

// Known source types.
const (
	SourceManual       SourceType = "manual"
	SourceInbox        SourceType = "messaging-inbox"
	SourceIssueTracker SourceType = "issue-tracker"
)

// Source carries provenance for an item. It is written once at creation and
// never overwritten by enrichment.
type Source struct {
	Type        SourceType `json:"type"`
	ChatID      string     `json:"chat_id,omitempty"`
	MessageID   int64      `json:"message_id,omitempty"`
	IssueNumber int        `json:"issue_number,omitempty"`
	Author      string     `json:"author,omitempty"`
}

// trustRank orders source types by how much their structured metadata is
// trusted during merges. Issue submissions carry curated fields; inbox
// messages carry raw placeholder text.
func (s Source) trustRank() int {
	switch s.Type {
	case SourceIssueTracker:
		return 2
	case SourceManual:
		return 1
	default:
		return 0
	}
}

// Published records the outcome of the publish transition.
type Published struct {
	Channel  string    `json:"channel"`
	PostID   int64     `json:"post_id"`
	PostedAt time.Time `json:"posted_at"`
}

// Content holds enrichment-derived fields. Merges are additive: a merge may
// add or replace keys but never silently drops a previously populated one.
type Content struct {
	Highlights []string       `json:"highlights,omitempty"`
	BestFor    string         `json:"best_for,omitempty"`
	Metrics    map[string]any `json:"metrics,omitempty"`
}

// IsZero reports whether no content field is populated.
func (c Content) IsZero() bool {
	return len(c.Highlights) == 0 && c.BestFor == "" && len(c.Metrics) == 0
}

// Item is one curated link record in the log.
type Item struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	CanonicalURL string     `json:"canonical_url"`
	Title        string     `json:"title,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Language     string     `json:"language"`
	Source       Source     `json:"source"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Published    *Published `json:"published,omitempty"`
	Content      Content    `json:"content,omitempty"`
}

// NewItem builds an item for a raw URL at the given lifecycle stage,
// deriving the canonical URL and content-addressed id.
func NewItem(rawURL string, status Status, src Source, now time.Time) Item {
	canonical := Canonicalize(rawURL)
	return Item{
		ID:           DeriveID(canonical),
		URL:          rawURL,
		CanonicalURL: canonical,
		Language:     DefaultLanguage,
		Source:       src,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
