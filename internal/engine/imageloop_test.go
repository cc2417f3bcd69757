package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// promptModel answers prompt-building requests and records the prompts it
// was asked to complete.
type promptModel struct {
	prompts []string
	err     error
}

func (m *promptModel) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return `{"full_prompt": "a warm watercolor scene"}`, nil
}

// countingImage returns distinct bytes per attempt so the accepted artifact
// can be identified.
type countingImage struct {
	calls int
	err   error
}

func (m *countingImage) Generate(_ context.Context, _ string) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []byte(fmt.Sprintf("image-%d", m.calls)), nil
}

// scoringVision returns the scripted mean for each successive attempt by
// scoring every criterion at that value.
type scoringVision struct {
	means []float64
	calls int
}

func (m *scoringVision) ScoreImage(_ context.Context, _ []byte, _ string) (string, error) {
	mean := m.means[m.calls]
	m.calls++
	scores := map[string]float64{
		"theme_relevance":     mean,
		"emotional_impact":    mean,
		"visual_appeal":       mean,
		"character_diversity": mean,
	}
	b, _ := json.Marshal(scores)
	return string(b), nil
}

func TestImageLoop_ExhaustsBudget(t *testing.T) {
	pm := &promptModel{}
	img := &countingImage{}
	vision := &scoringVision{means: []float64{5.00, 5.00, 5.00, 5.00, 5.00}}

	loop := NewImageLoop(pm, img, vision, 5, 8.00)
	accepted, history, err := loop.Run(context.Background(), model.NewSummary("a story"))

	if !errors.Is(err, ErrNoImageAccepted) {
		t.Fatalf("err = %v, want ErrNoImageAccepted", err)
	}
	if accepted != nil {
		t.Error("no artifact should survive an exhausted budget")
	}
	if img.calls != 5 {
		t.Errorf("generation attempts = %d, want exactly 5", img.calls)
	}
	if len(history) != 5 {
		t.Fatalf("history = %d entries, want 5", len(history))
	}
	for i, h := range history {
		if h.Accepted {
			t.Errorf("attempt %d marked accepted", i+1)
		}
		if h.MeanScore != 5.00 {
			t.Errorf("attempt %d mean = %.2f, want 5.00", i+1, h.MeanScore)
		}
	}
}

func TestImageLoop_AcceptsOnThirdAttempt(t *testing.T) {
	pm := &promptModel{}
	img := &countingImage{}
	vision := &scoringVision{means: []float64{5.00, 7.50, 9.00}}

	loop := NewImageLoop(pm, img, vision, 5, 8.00)
	accepted, history, err := loop.Run(context.Background(), model.NewSummary("a story"))

	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if img.calls != 3 {
		t.Errorf("generation attempts = %d, want exactly 3", img.calls)
	}
	if accepted.Attempt != 3 {
		t.Errorf("accepted attempt = %d, want 3", accepted.Attempt)
	}
	if string(accepted.Data) != "image-3" {
		t.Errorf("accepted artifact = %q, want attempt 3's bytes", accepted.Data)
	}
	if len(history) != 3 || !history[2].Accepted {
		t.Errorf("history = %+v, want 3 entries with the last accepted", history)
	}
}

func TestImageLoop_FeedbackFoldedIntoNextPrompt(t *testing.T) {
	pm := &promptModel{}
	img := &countingImage{}
	vision := &scoringVision{means: []float64{5.00, 9.00}}

	loop := NewImageLoop(pm, img, vision, 5, 8.00)
	if _, _, err := loop.Run(context.Background(), model.NewSummary("a story")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(pm.prompts) != 2 {
		t.Fatalf("prompt builds = %d, want 2", len(pm.prompts))
	}
	if strings.Contains(pm.prompts[0], "improvements_needed") {
		t.Error("first prompt should carry no feedback directives")
	}
	second := pm.prompts[1]
	if !strings.Contains(second, "improvements_needed") {
		t.Fatal("second prompt should carry feedback directives")
	}
	// All criteria scored 5.00 < 8.00, so each becomes a directive with
	// underscores replaced.
	if !strings.Contains(second, "Improve character diversity") {
		t.Errorf("second prompt missing weak-area directive: %s", second)
	}
}

func TestImageLoop_NoDirectivesWhenAllAboveThreshold(t *testing.T) {
	weak := model.Feedback{"clarity": 9.00, "creativity": 8.50}
	if got := weak.WeakAreas(8.00); len(got) != 0 {
		t.Errorf("WeakAreas = %v, want none", got)
	}

	prompt := buildImagePrompt("story", nil)
	if strings.Contains(prompt, "improvements_needed") {
		t.Error("prompt without feedback must not carry directives")
	}
}

func TestImageLoop_GenerationErrorAbortsAttemptNotLoop(t *testing.T) {
	pm := &promptModel{}
	img := &countingImage{err: errors.New("backend down")}
	vision := &scoringVision{}

	loop := NewImageLoop(pm, img, vision, 3, 8.00)
	accepted, history, err := loop.Run(context.Background(), model.NewSummary("a story"))

	if !errors.Is(err, ErrNoImageAccepted) {
		t.Fatalf("err = %v, want ErrNoImageAccepted after exhausting errored attempts", err)
	}
	if accepted != nil {
		t.Error("no artifact expected")
	}
	// Errors inside attempts produce no scored history entries.
	if len(history) != 0 {
		t.Errorf("history = %d entries, want 0", len(history))
	}
	if img.calls != 3 {
		t.Errorf("generation calls = %d, want 3 (one per attempt)", img.calls)
	}
	// Feedback is reset on error, so no prompt ever carries directives.
	for i, p := range pm.prompts {
		if strings.Contains(p, "improvements_needed") {
			t.Errorf("prompt %d carries directives after a hard error", i+1)
		}
	}
}

func TestFeedback_Means(t *testing.T) {
	f := model.Feedback{
		"text_accuracy":   6.00,
		"text_legibility": 8.00,
		"clarity":         10.00,
	}
	if got := f.Mean(); got != 8.00 {
		t.Errorf("Mean = %.2f, want 8.00", got)
	}
	if got := f.TextMean(); got != 7.00 {
		t.Errorf("TextMean = %.2f, want 7.00", got)
	}
	if got := (model.Feedback{}).Mean(); got != 0 {
		t.Errorf("empty Mean = %.2f, want 0", got)
	}
}
