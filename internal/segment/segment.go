// Package segment splits raw prayer text into ordered bilingual sections.
//
// Prayer content files use the ◎ character to delimit sections. Within a
// section, the first non-blank line is the Arabic original and the second is
// the Persian translation. Segmentation is pure and deterministic: the same
// input always yields the same section sequence.
package segment

import (
	"strings"

	"github.com/munajatapp/munajat-server/internal/domain"
	"github.com/munajatapp/munajat-server/internal/errors"
)

// Delimiter separates sections in raw prayer content.
const Delimiter = "◎"

// Segment parses raw prayer content into an ordered section sequence.
//
// Chunks that are empty after trimming are dropped, as are chunks missing
// either the Arabic or the Persian line. Indices are assigned by post-filter
// position, so a dropped chunk shifts the indices of everything after it.
// Content that yields no sections at all is a format error. Callers that
// already hold a section sequence should keep it on error.
func Segment(raw string) ([]domain.Section, error) {
	chunks := strings.Split(raw, Delimiter)
	sections := make([]domain.Section, 0, len(chunks))

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		arabic, persian := splitLines(chunk)
		if arabic == "" || persian == "" {
			// Both texts are required; a half-filled chunk does not
			// consume an index.
			continue
		}

		sections = append(sections, domain.Section{
			SectionIndex: len(sections),
			Arabic:       arabic,
			Persian:      persian,
		})
	}

	// Empty input, bare delimiters, and chunks that all fail the bilingual
	// requirement end up the same way: a prayer no one can read.
	if len(sections) == 0 {
		return nil, errors.ContentFormat("prayer content has no usable sections")
	}

	return sections, nil
}

// splitLines extracts the first two non-blank lines of a chunk.
func splitLines(chunk string) (arabic, persian string) {
	for line := range strings.Lines(strings.TrimSpace(chunk)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if arabic == "" {
			arabic = line
			continue
		}
		persian = line
		return arabic, persian
	}
	return arabic, persian
}
