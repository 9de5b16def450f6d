// Package enrich fetches optional descriptive fields for an item: page
// metadata scraped from the URL itself and LLM-generated summaries. Every
// source here is fail-soft: on any failure it returns nothing and the
// caller falls back to the next-best field.
package enrich

// Partial is an optional partial record produced by one enrichment source.
// Empty fields mean "nothing learned", never "clear this".
type Partial struct {
	Title      string
	Summary    string
	Highlights []string
	BestFor    string
	Tags       []string
}

// IsZero reports whether the source learned nothing at all.
func (p Partial) IsZero() bool {
	return p.Title == "" && p.Summary == "" && len(p.Highlights) == 0 &&
		p.BestFor == "" && len(p.Tags) == 0
}
