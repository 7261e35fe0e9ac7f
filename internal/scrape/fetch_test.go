package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"tailor-engine/internal/apperr"
	"tailor-engine/internal/scrape/util"
)

const postingHTML = `<html>
<head><title>Backend Engineer - Remote</title></head>
<body>
<nav>Menu</nav>
<h1>Backend Engineer</h1>
<div class="location">Austin, TX</div>
<script>var tracking = 1;</script>
<p>Build APIs for the robot fleet.</p>
<footer>Copyright Acme</footer>
</body>
</html>`

func newTestFetcher(t *testing.T, opts Options) *Fetcher {
	t.Helper()
	return NewFetcher(opts, util.NewHostLimiter(100, 10), zaptest.NewLogger(t))
}

func TestFetcherFetch(t *testing.T) {
	agents := make(chan string, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/jobs/1":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(postingHTML))
		case "/gone":
			http.NotFound(w, r)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	f := newTestFetcher(t, Options{UserAgent: "tailor-test"})

	page, err := f.Fetch(context.Background(), srv.URL+"/jobs/1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if ua := <-agents; ua != "tailor-test" {
		t.Fatalf("user agent = %q", ua)
	}
	if page.Input.RawHTML != postingHTML {
		t.Fatalf("raw html not kept")
	}
	if page.Location != "Austin, TX" || page.WorkMode != util.WorkModeRemote {
		t.Fatalf("location = %q, work mode = %q", page.Location, page.WorkMode)
	}
	text := page.Input.VisibleText
	if !strings.Contains(text, "Build APIs for the robot fleet.") {
		t.Fatalf("visible text missing body: %q", text)
	}
	for _, junk := range []string{"Menu", "tracking", "Copyright"} {
		if strings.Contains(text, junk) {
			t.Fatalf("visible text kept %q: %q", junk, text)
		}
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/gone")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/broken")
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestFetcherRejectsNonHTTP(t *testing.T) {
	f := newTestFetcher(t, Options{})
	for _, raw := range []string{"", "ftp://example.com/job", "jobs.lever.co/acme/1"} {
		if _, err := f.Fetch(context.Background(), raw); apperr.KindOf(err) != apperr.KindInvalidInput {
			t.Fatalf("%q: expected invalid input, got %v", raw, err)
		}
	}
}

func TestFetcherBuildTextLimit(t *testing.T) {
	f := newTestFetcher(t, Options{TextLimit: 12})
	page, err := f.Build("https://example.com/jobs/1", "<html><body><p>"+strings.Repeat("abc ", 20)+"</p></body></html>")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := []rune(page.Input.VisibleText); len(got) != 12 {
		t.Fatalf("visible text has %d runes, want 12", len(got))
	}
	if page.Input.URL != "https://example.com/jobs/1" {
		t.Fatalf("url not kept")
	}
}

func TestVisibleText(t *testing.T) {
	got := VisibleText("  Senior  Engineer \n\n\t\n Remote  ", 0)
	if got != "Senior Engineer\nRemote" {
		t.Fatalf("got %q", got)
	}
}
