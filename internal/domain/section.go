package domain

// Section is one bilingual paragraph unit of a prayer text.
// Sections are immutable once derived from source text; the index is
// positional and stable for a given text version.
type Section struct {
	SectionIndex int    `json:"sectionIndex"`
	Arabic       string `json:"arabic"`
	Persian      string `json:"persian"`
}
