package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcher_StripsMarkupAndNormalizesWhitespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><style>body { color: red }</style></head>
			<body><script>var x = 1;</script>
			<p>First   paragraph.</p>

			<p>Second
			paragraph.</p></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 1)
	got := f.Text(context.Background(), srv.URL)

	if strings.Contains(got, "<p>") || strings.Contains(got, "var x") || strings.Contains(got, "color: red") {
		t.Errorf("markup or script leaked into text: %q", got)
	}
	if !strings.Contains(got, "First paragraph.") {
		t.Errorf("text missing content: %q", got)
	}
	if strings.Contains(got, "  ") || strings.Contains(got, "\n") {
		t.Errorf("whitespace not normalized: %q", got)
	}
}

func TestFetcher_EmptyOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 300)
	if got := f.Text(context.Background(), srv.URL); got != "" {
		t.Errorf("Text = %q, want empty on non-200", got)
	}
}

func TestFetcher_EmptyOnNetworkFailure(t *testing.T) {
	f := NewFetcher(500*time.Millisecond, 300)
	if got := f.Text(context.Background(), "http://127.0.0.1:1/unreachable"); got != "" {
		t.Errorf("Text = %q, want empty on connection failure", got)
	}
}

func TestFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	f := NewFetcher(100*time.Millisecond, 300)
	if got := f.Text(context.Background(), srv.URL); got != "" {
		t.Errorf("Text = %q, want empty on timeout", got)
	}
}

func TestFetcher_UsablePolicy(t *testing.T) {
	f := NewFetcher(time.Second, 300)

	exactly := strings.Repeat("word ", 300)
	if f.Usable(exactly) {
		t.Error("exactly 300 words should not be usable (policy is strictly more)")
	}

	enough := strings.Repeat("word ", 301)
	if !f.Usable(enough) {
		t.Error("301 words should be usable")
	}

	if f.Usable("") {
		t.Error("empty text should not be usable")
	}
}

func TestFetcher_SendsBrowserHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, 1)
	f.Text(context.Background(), srv.URL)

	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q, want browser-identifying header", gotUA)
	}
}
