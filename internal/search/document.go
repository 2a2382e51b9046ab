// Package search provides full-text search over prayer sections using
// Bleve. Each section is indexed twice per language: once as written
// (with harakat) and once in bare form, so queries typed without
// diacritics still match the vocalized recitation text.
package search

import (
	"fmt"

	"github.com/munajatapp/munajat-server/internal/domain"
	"github.com/munajatapp/munajat-server/internal/normalize"
)

// SectionDocument is the indexable representation of one prayer section.
type SectionDocument struct {
	ID           string
	PrayerID     string
	PrayerTitle  string
	SectionIndex int
	Arabic       string
	Persian      string
}

// NewSectionDocument builds a document for one section of a prayer.
func NewSectionDocument(prayer domain.Prayer, section domain.Section) *SectionDocument {
	return &SectionDocument{
		ID:           SectionDocID(prayer.ID, section.SectionIndex),
		PrayerID:     prayer.ID,
		PrayerTitle:  prayer.Title,
		SectionIndex: section.SectionIndex,
		Arabic:       section.Arabic,
		Persian:      section.Persian,
	}
}

// SectionDocID returns the index key for a prayer section.
func SectionDocID(prayerID string, sectionIndex int) string {
	return fmt.Sprintf("%s#%d", prayerID, sectionIndex)
}

// ToMap converts the document to the map form Bleve indexes. Field names
// must match the mapping exactly. The bare fields are derived here so
// callers never have to remember to strip.
func (d *SectionDocument) ToMap() map[string]any {
	return map[string]any{
		"id":            d.ID,
		"prayer_id":     d.PrayerID,
		"prayer_title":  d.PrayerTitle,
		"section_index": d.SectionIndex,
		"arabic":        d.Arabic,
		"arabic_bare":   normalize.Strip(d.Arabic),
		"persian":       d.Persian,
		"persian_bare":  normalize.Strip(d.Persian),
	}
}
