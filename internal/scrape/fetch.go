package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"tailor-engine/internal/apperr"
	"tailor-engine/internal/domain"
	"tailor-engine/internal/scrape/util"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	DefaultTextLimit = 5000
	DefaultMaxBody   = 5 << 20
	defaultTimeout   = 20 * time.Second
)

type Options struct {
	UserAgent string
	Timeout   time.Duration
	MaxBody   int64
	TextLimit int
}

// Page is a fetched posting plus the hints the tracker wants.
type Page struct {
	Input    domain.RawJobInput
	Location string
	WorkMode string
}

type Fetcher struct {
	hc      *http.Client
	limiter *util.HostLimiter
	opts    Options
	log     *zap.Logger
}

func NewFetcher(opts Options, limiter *util.HostLimiter, log *zap.Logger) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	if opts.TextLimit <= 0 {
		opts.TextLimit = DefaultTextLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		hc:      &http.Client{Timeout: opts.Timeout},
		limiter: limiter,
		opts:    opts,
		log:     log,
	}
}

// Fetch downloads a posting page and derives its visible text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return Page{}, apperr.InvalidInput(fmt.Sprintf("not an http(s) url: %q", rawURL), nil)
	}

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
			return Page{}, apperr.Unavailable("rate limiter", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, apperr.InvalidInput("build request", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	res, err := f.hc.Do(req)
	if err != nil {
		return Page{}, apperr.Unavailable("fetch posting", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		err := fmt.Errorf("status %d", res.StatusCode)
		if res.StatusCode == http.StatusNotFound {
			return Page{}, apperr.NotFound("posting not found", err)
		}
		return Page{}, apperr.Unavailable("fetch posting", err)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.opts.MaxBody))
	if err != nil {
		return Page{}, apperr.Unavailable("read posting", err)
	}

	page, err := f.Build(rawURL, string(body))
	if err != nil {
		return Page{}, err
	}
	f.log.Debug("posting fetched",
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.Int("text_chars", len([]rune(page.Input.VisibleText))),
		zap.Duration("took", time.Since(start)),
	)
	return page, nil
}

// Build turns already-downloaded HTML into a Page. It is also used for
// postings saved to disk.
func (f *Fetcher) Build(rawURL, html string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, apperr.InvalidInput("parse posting html", err)
	}

	loc := util.FindLocation(doc)
	title := util.CleanText(doc.Find("title").First().Text())

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, nav, footer, svg").Remove()
	text := VisibleText(body.Text(), f.opts.TextLimit)

	return Page{
		Input: domain.RawJobInput{
			URL:         rawURL,
			RawHTML:     html,
			VisibleText: text,
		},
		Location: loc,
		WorkMode: util.InferWorkModeFromText(loc, title),
	}, nil
}

// VisibleText keeps one cleaned line per non-empty source line and caps the
// result at limit runes.
func VisibleText(s string, limit int) string {
	var lines []string
	for _, ln := range strings.Split(s, "\n") {
		if ln = util.CleanText(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	out := strings.Join(lines, "\n")
	if r := []rune(out); limit > 0 && len(r) > limit {
		out = string(r[:limit])
	}
	return out
}

// IsNotFound reports whether err came from a 404 posting.
func IsNotFound(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e.Kind == apperr.KindNotFound
}
