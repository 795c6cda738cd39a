package views

import (
	"strings"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

// WordsPerMinute is the assumed average reading speed.
const WordsPerMinute = 200

// EstimateReadingTime returns the reading time of sections in minutes.
//
// Each section is rounded up to whole minutes on its own and the results are
// summed, so many short sections read longer than one long section with the
// same word count. A section without words counts 0 minutes.
func EstimateReadingTime(sections []content.Section) int {
	total := 0
	for _, s := range sections {
		total += sectionMinutes(s)
	}
	return total
}

func sectionMinutes(s content.Section) int {
	words := len(strings.Fields(richtext.AsText(s.Body)))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
