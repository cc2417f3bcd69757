package engine

import (
	"context"
	"encoding/json"
	"strings"
)

// StubModelClient returns canned scoring responses (for development and
// tests, when no API keys are configured).
type StubModelClient struct{}

func (m *StubModelClient) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "# Ranking Criteria"):
		b, _ := json.Marshal(rankResponse{Ranking: 7.50, Explanation: "[Stub] Heartwarming local story with clear visual potential."})
		return string(b), nil
	case strings.Contains(prompt, "# Webpage Text") && strings.Contains(prompt, "content summarizer"):
		b, _ := json.Marshal(summaryResponse{Summary: "Sault Ste. Marie -- A local volunteer crew rebuilt the community greenhouse in a single weekend.\n\nNeighbors donated lumber, seedlings, and time, and the first planting day drew dozens of families."})
		return string(b), nil
	case strings.Contains(prompt, "scraped webpage text"):
		b, _ := json.Marshal(suitabilityResponse{Suitable: true, Explanation: "[Stub] Coherent article."})
		return string(b), nil
	case strings.Contains(prompt, "# Style"):
		b, _ := json.Marshal(promptResponse{FullPrompt: "A warm watercolor scene of neighbors rebuilding a greenhouse together at golden hour."})
		return string(b), nil
	}
	return "{}", nil
}

// StubImageClient returns a fixed byte payload instead of a rendered image.
type StubImageClient struct{}

func (m *StubImageClient) Generate(_ context.Context, _ string) ([]byte, error) {
	return []byte("stub-image-bytes"), nil
}

// StubVisionClient scores every image just above the default threshold so
// stub runs accept on the first attempt.
type StubVisionClient struct{}

func (m *StubVisionClient) ScoreImage(_ context.Context, _ []byte, _ string) (string, error) {
	scores := map[string]float64{
		"text_accuracy":         8.50,
		"text_legibility":       8.25,
		"text_coherence":        8.75,
		"character_diversity":   8.25,
		"theme_relevance":       8.50,
		"emotional_impact":      8.50,
		"visual_appeal":         8.25,
		"clarity":               8.75,
		"cohesiveness":          8.50,
		"creativity":            8.25,
		"uplifting_suitability": 8.75,
	}
	b, _ := json.Marshal(scores)
	return string(b), nil
}
