package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/ar"
	"github.com/blevesearch/bleve/v2/analysis/lang/fa"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for section documents.
//
// Arabic and Persian get their language analyzers; each also gets a
// "bare" twin field with diacritics stripped before indexing, since a
// query typed on a phone keyboard rarely carries harakat. Term vectors
// are enabled on the text fields for highlighting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	arabicField := bleve.NewTextFieldMapping()
	arabicField.Analyzer = ar.AnalyzerName
	arabicField.Store = true
	arabicField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("arabic", arabicField)

	arabicBareField := bleve.NewTextFieldMapping()
	arabicBareField.Analyzer = ar.AnalyzerName
	arabicBareField.Store = false
	docMapping.AddFieldMappingsAt("arabic_bare", arabicBareField)

	persianField := bleve.NewTextFieldMapping()
	persianField.Analyzer = fa.AnalyzerName
	persianField.Store = true
	persianField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("persian", persianField)

	persianBareField := bleve.NewTextFieldMapping()
	persianBareField.Analyzer = fa.AnalyzerName
	persianBareField.Store = false
	docMapping.AddFieldMappingsAt("persian_bare", persianBareField)

	// Titles can mix Persian and transliterated Latin.
	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = simple.Name
	titleField.Store = true
	docMapping.AddFieldMappingsAt("prayer_title", titleField)

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idField)

	prayerIDField := bleve.NewTextFieldMapping()
	prayerIDField.Analyzer = keyword.Name
	prayerIDField.Store = true
	docMapping.AddFieldMappingsAt("prayer_id", prayerIDField)

	sectionIndexField := bleve.NewNumericFieldMapping()
	sectionIndexField.Store = true
	docMapping.AddFieldMappingsAt("section_index", sectionIndexField)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
