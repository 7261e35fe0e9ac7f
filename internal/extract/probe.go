package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"

	"tailor-engine/internal/domain"
	"tailor-engine/internal/scrape/util"
)

// EndpointProber looks up compensation from a posting's JSON API when the
// page itself is an empty application shell.
type EndpointProber interface {
	Probe(ctx context.Context, pageURL string) (domain.SalaryFigure, bool)
}

const (
	DefaultProbeTimeout = 3 * time.Second
	maxProbeBody        = 1 << 20
)

// DefaultProbePaths are tried in order; %s is the job id.
var DefaultProbePaths = []string{
	"/api/jobs/%s",
	"/api/v1/jobs/%s",
	"/api/job/%s",
	"/api/postings/%s",
	"/api/job-posts/%s",
}

var reJobID = regexp.MustCompile(`(?i)(?:^|/)([0-9a-f]{32}|[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})(?:/|$)`)

// JobIDFromURL returns the 32-hex (or dashed UUID) job id in a URL path.
func JobIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	m := reJobID.FindStringSubmatch(u.Path)
	if m == nil {
		return ""
	}
	return m[1]
}

// HTTPProber issues one GET per endpoint shape on the posting's own host.
// There are no retries; the first 200 with a JSON body ends the probe.
type HTTPProber struct {
	Client  *http.Client
	Limiter *util.HostLimiter
	Timeout time.Duration
	Paths   []string
	Log     *zap.Logger
}

func NewHTTPProber(timeout time.Duration, limiter *util.HostLimiter, log *zap.Logger) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPProber{
		Client:  &http.Client{Timeout: timeout},
		Limiter: limiter,
		Timeout: timeout,
		Paths:   DefaultProbePaths,
		Log:     log,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, pageURL string) (domain.SalaryFigure, bool) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return domain.SalaryFigure{}, false
	}
	id := JobIDFromURL(pageURL)
	if id == "" {
		return domain.SalaryFigure{}, false
	}

	for _, path := range p.Paths {
		endpoint := url.URL{Scheme: u.Scheme, Host: u.Host, Path: fmt.Sprintf(path, id)}
		v, ok := p.fetchJSON(ctx, endpoint.String())
		if !ok {
			continue
		}
		f, found := salaryFromState(v, 0)
		p.Log.Debug("endpoint probe answered",
			zap.String("endpoint", endpoint.String()),
			zap.Bool("salary_found", found),
		)
		return f, found
	}
	return domain.SalaryFigure{}, false
}

func (p *HTTPProber) fetchJSON(ctx context.Context, endpoint string) (any, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	if p.Limiter != nil {
		if err := p.Limiter.WaitURL(ctx, endpoint); err != nil {
			return nil, false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		p.Log.Debug("endpoint probe failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProbeBody))
		return nil, false
	}

	var v any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProbeBody)).Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}
