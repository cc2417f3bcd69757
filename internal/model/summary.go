package model

import (
	"sort"
	"strings"
)

// Summary is the bounded-length narrative summary of the chosen story,
// used both for display and as image-generation context.
type Summary struct {
	Text      string `json:"summary"`
	WordCount int    `json:"word_count"`
}

// NewSummary derives a Summary from raw summarizer output.
func NewSummary(text string) Summary {
	return Summary{Text: text, WordCount: len(strings.Fields(text))}
}

// Feedback maps validation criterion names to 0-10 scores from a rejected
// image attempt. It only ever influences the next attempt's prompt.
type Feedback map[string]float64

// Mean returns the arithmetic mean across all criteria, or 0 when empty.
func (f Feedback) Mean() float64 {
	if len(f) == 0 {
		return 0
	}
	var sum float64
	for _, v := range f {
		sum += v
	}
	return sum / float64(len(f))
}

// TextMean returns the mean over criteria whose name contains "text",
// or 0 when there are none. Computed for logging; not an acceptance gate.
func (f Feedback) TextMean() float64 {
	var sum float64
	var n int
	for k, v := range f {
		if strings.Contains(strings.ToLower(k), "text") {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// WeakAreas returns the criterion names scoring below threshold, in sorted
// order so prompt construction is deterministic.
func (f Feedback) WeakAreas(threshold float64) []string {
	var weak []string
	for k, v := range f {
		if v < threshold {
			weak = append(weak, k)
		}
	}
	sort.Strings(weak)
	return weak
}
