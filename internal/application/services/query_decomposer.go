package services

import (
	"regexp"
	"sort"
	"strings"
)

// serviceVocabulary lists known service phrases, multi-word phrases first so
// that "general assessment" claims its span before "assessment" could. The
// slice order is the tie-break for phrases starting at the same offset.
var serviceVocabulary = []string{
	"general assessment",
	"minor assessment",
	"intermediate assessment",
	"ekg",
	"ecg",
	"electrocardiogram",
	"chest x-ray",
	"x-ray",
	"xray",
	"radiography",
	"consultation",
	"follow-up",
	"follow up",
	"blood test",
	"lab test",
	"laboratory",
	"ultrasound",
	"ct scan",
	"mri",
}

var conjunctionPattern = regexp.MustCompile(`\s+and\s+|\s+plus\s+|,\s*`)

type vocabularyHit struct {
	start  int
	end    int
	phrase string
}

// DecomposeQuery splits a free-text query into per-service sub-queries.
// Vocabulary phrases are matched against non-overlapping spans of the query;
// when none match, the query is split on conjunctions; a query that resists
// both comes back whole.
func DecomposeQuery(query string) []string {
	lowered := strings.ToLower(query)

	var hits []vocabularyHit
	for _, phrase := range serviceVocabulary {
		offset := 0
		for {
			idx := strings.Index(lowered[offset:], phrase)
			if idx < 0 {
				break
			}
			start := offset + idx
			hits = append(hits, vocabularyHit{start: start, end: start + len(phrase), phrase: phrase})
			offset = start + len(phrase)
		}
	}

	if len(hits) > 0 {
		// earliest span first; on a tie the longer phrase wins, so
		// "chest x-ray" beats the "x-ray" it contains
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].start != hits[j].start {
				return hits[i].start < hits[j].start
			}
			return hits[i].end > hits[j].end
		})

		var subQueries []string
		claimedEnd := -1
		for _, hit := range hits {
			if hit.start < claimedEnd {
				continue
			}
			subQueries = append(subQueries, hit.phrase)
			claimedEnd = hit.end
		}
		return subQueries
	}

	if parts := conjunctionPattern.Split(lowered, -1); len(parts) > 1 {
		var subQueries []string
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if len(part) > 3 {
				subQueries = append(subQueries, part)
			}
		}
		if len(subQueries) > 0 {
			return subQueries
		}
	}

	return []string{strings.TrimSpace(lowered)}
}
