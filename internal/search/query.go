package search

import (
	"context"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	apperrors "github.com/munajatapp/munajat-server/internal/errors"
	"github.com/munajatapp/munajat-server/internal/normalize"
)

// Params configures a section search.
type Params struct {
	Query    string // User's search text, any script, harakat optional
	PrayerID string // Restrict to one prayer (empty = all)
	Limit    int
	Offset   int
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{Limit: 20}
}

// Result is the outcome of a section search.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"tookMs"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching section.
type Hit struct {
	PrayerID     string            `json:"prayerId"`
	PrayerTitle  string            `json:"prayerTitle"`
	SectionIndex int               `json:"sectionIndex"`
	Score        float64           `json:"score"`
	Arabic       string            `json:"arabic,omitempty"`
	Persian      string            `json:"persian,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// Search finds sections matching params.Query. The query is matched both
// as typed and in bare form, across the Arabic and Persian fields plus
// prayer titles.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	raw := strings.TrimSpace(params.Query)
	if raw == "" {
		return nil, apperrors.Validation("search query must not be empty")
	}
	if params.Limit <= 0 {
		params.Limit = DefaultParams().Limit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSectionQuery(raw, params.PrayerID)
	req := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	req.Fields = []string{"prayer_id", "prayer_title", "section_index", "arabic", "persian"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("arabic")
	req.Highlight.AddField("persian")

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "search failed")
	}

	out := &Result{
		Query:  raw,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		if v, ok := h.Fields["prayer_id"].(string); ok {
			hit.PrayerID = v
		}
		if v, ok := h.Fields["prayer_title"].(string); ok {
			hit.PrayerTitle = v
		}
		if v, ok := h.Fields["section_index"].(float64); ok {
			hit.SectionIndex = int(v)
		}
		if v, ok := h.Fields["arabic"].(string); ok {
			hit.Arabic = v
		}
		if v, ok := h.Fields["persian"].(string); ok {
			hit.Persian = v
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, frags := range h.Fragments {
				if len(frags) > 0 {
					hit.Highlights[field] = frags[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	return out, nil
}

// buildSectionQuery matches the text as typed and in bare form across
// all text fields, optionally filtered to one prayer.
func buildSectionQuery(raw, prayerID string) query.Query {
	bare := normalize.Strip(raw)

	fields := []struct {
		name  string
		text  string
		boost float64
	}{
		{"arabic", raw, 2.0},
		{"arabic_bare", bare, 1.5},
		{"persian", raw, 2.0},
		{"persian_bare", bare, 1.5},
		{"prayer_title", raw, 1.0},
	}

	textQuery := bleve.NewDisjunctionQuery()
	for _, f := range fields {
		mq := bleve.NewMatchQuery(f.text)
		mq.SetField(f.name)
		mq.SetBoost(f.boost)
		textQuery.AddQuery(mq)
	}

	if prayerID == "" {
		return textQuery
	}

	idQuery := bleve.NewTermQuery(prayerID)
	idQuery.SetField("prayer_id")
	return bleve.NewConjunctionQuery(idQuery, textQuery)
}
