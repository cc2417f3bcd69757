package engine

import (
	"context"
	"errors"
	"testing"
)

// fixedModel returns one canned response (or error) for every prompt.
type fixedModel struct {
	response string
	err      error
}

func (m *fixedModel) Complete(_ context.Context, _ string) (string, error) {
	return m.response, m.err
}

func TestSummarizer_ParsesSummary(t *testing.T) {
	m := &fixedModel{response: `{"summary": "Sault Ste. Marie -- A volunteer crew rebuilt the greenhouse.\n\nFamilies planted together."}`}
	s := NewSummarizer(m)

	got, err := s.Summarize(context.Background(), "long article text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.Text == "" {
		t.Fatal("empty summary text")
	}
	if got.WordCount != 13 {
		t.Errorf("WordCount = %d, want 13", got.WordCount)
	}
}

func TestSummarizer_MalformedResponseIsError(t *testing.T) {
	s := NewSummarizer(&fixedModel{response: "Here's a summary for you!"})
	if _, err := s.Summarize(context.Background(), "text"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestSummarizer_EmptySummaryIsError(t *testing.T) {
	s := NewSummarizer(&fixedModel{response: `{"summary": ""}`})
	if _, err := s.Summarize(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty summary")
	}
}

func TestSummarizer_BackendErrorPropagates(t *testing.T) {
	s := NewSummarizer(&fixedModel{err: errors.New("backend down")})
	if _, err := s.Summarize(context.Background(), "text"); err == nil {
		t.Fatal("expected error")
	}
}

func TestContentValidator_Verdicts(t *testing.T) {
	v := NewContentValidator(&fixedModel{response: `{"suitable": true, "explanation": "fine"}`})
	if !v.Suitable(context.Background(), "text") {
		t.Error("positive verdict expected")
	}

	v = NewContentValidator(&fixedModel{response: `{"suitable": false, "explanation": "paywall"}`})
	if v.Suitable(context.Background(), "text") {
		t.Error("negative verdict expected")
	}

	// Failures count as negative verdicts, never as errors.
	v = NewContentValidator(&fixedModel{err: errors.New("backend down")})
	if v.Suitable(context.Background(), "text") {
		t.Error("backend error must yield a negative verdict")
	}
	v = NewContentValidator(&fixedModel{response: "not json"})
	if v.Suitable(context.Background(), "text") {
		t.Error("unparseable response must yield a negative verdict")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, c := range cases {
		if got := extractJSON(c.in); got != c.want {
			t.Errorf("extractJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
