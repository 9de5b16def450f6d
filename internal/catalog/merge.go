package catalog

import (
	"strings"
	"time"
)

// MaxDisplayTags caps how many tags an item keeps after a merge.
const MaxDisplayTags = 6

// Upsert inserts the candidate if its id is not present, otherwise merges
// the candidate onto the existing item with field-level precedence. It
// returns the updated collection and whether an existing item was updated.
//
// The merge only ever adds information: created_at and provenance survive
// from the existing item, content keys absent from the candidate are left
// untouched, and tags are unioned. This is what lets independent drivers
// share one log without a transaction.
func Upsert(items []Item, candidate Item, now time.Time) ([]Item, bool) {
	candidate.Tags = NormalizeTags(candidate.Tags)

	for idx := range items {
		if items[idx].ID != candidate.ID {
			continue
		}
		items[idx] = merge(items[idx], candidate, now)
		return items, true
	}

	if candidate.Language == "" {
		candidate.Language = DefaultLanguage
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	candidate.UpdatedAt = candidate.CreatedAt
	return append(items, candidate), false
}

func merge(existing, candidate Item, now time.Time) Item {
	merged := existing

	// updated_at is monotonic non-decreasing within an item's history.
	merged.UpdatedAt = now
	if merged.UpdatedAt.Before(existing.UpdatedAt) {
		merged.UpdatedAt = existing.UpdatedAt
	}

	if merged.Source.Type == "" {
		merged.Source = candidate.Source
	}

	// A candidate may only move the status forward; anything else keeps the
	// existing stage rather than silently reversing it.
	if candidate.Status != "" && CanTransition(existing.Status, candidate.Status) {
		merged.Status = candidate.Status
	}

	higherTrust := candidate.Source.trustRank() > existing.Source.trustRank()
	if candidate.Title != "" && (existing.Title == "" || higherTrust) {
		merged.Title = candidate.Title
	}
	if candidate.Summary != "" && (existing.Summary == "" || higherTrust) {
		merged.Summary = candidate.Summary
	}

	merged.Tags = unionTags(existing.Tags, candidate.Tags)
	merged.Content = mergeContent(existing.Content, candidate.Content)

	if candidate.Language != "" && merged.Language == "" {
		merged.Language = candidate.Language
	}
	if candidate.Published != nil && merged.Published == nil {
		merged.Published = candidate.Published
	}

	return merged
}

// mergeContent merges key-by-key: a key present in the candidate overwrites
// the same key on the existing item; absent keys are left untouched.
func mergeContent(existing, candidate Content) Content {
	merged := existing
	if len(candidate.Highlights) > 0 {
		merged.Highlights = candidate.Highlights
	}
	if candidate.BestFor != "" {
		merged.BestFor = candidate.BestFor
	}
	if len(candidate.Metrics) > 0 {
		if merged.Metrics == nil {
			merged.Metrics = make(map[string]any, len(candidate.Metrics))
		}
		for k, v := range candidate.Metrics {
			merged.Metrics[k] = v
		}
	}
	return merged
}

// NormalizeTag lowercases and trims a hierarchical category/subcategory tag.
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	parts := strings.Split(tag, "/")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, "/")
}

// NormalizeTags normalizes and deduplicates a tag list, preserving first
// occurrence order and the display cap.
func NormalizeTags(tags []string) []string {
	return unionTags(nil, tags)
}

func unionTags(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extra))
	var out []string
	for _, tag := range append(append([]string{}, existing...), extra...) {
		norm := NormalizeTag(tag)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
		if len(out) == MaxDisplayTags {
			break
		}
	}
	return out
}
