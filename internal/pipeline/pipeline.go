// Package pipeline ties fetching, parsing and tracking of postings together.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"tailor-engine/internal/domain"
	"tailor-engine/internal/events"
	"tailor-engine/internal/extract"
	"tailor-engine/internal/scrape"
	"tailor-engine/internal/scrape/util"
	"tailor-engine/internal/store"
)

// PageSource fetches a posting, or wraps text the caller already has.
type PageSource interface {
	Fetch(ctx context.Context, url string) (scrape.Page, error)
	Build(url, html string) (scrape.Page, error)
}

type Runner struct {
	Pages           PageSource
	Parser          *extract.Parser
	DB              *sql.DB // nil disables tracking
	Hub             *events.Hub
	DefaultTemplate domain.TemplateChoice
	Log             *zap.Logger
	Now             func() time.Time
}

// Result is one parsed posting as handed to the prompt stage.
type Result struct {
	URL            string
	Record         domain.ParsedJobRecord
	ResumeTemplate domain.TemplateChoice
	Description    string
	Location       string
	WorkMode       string
	Tracked        bool
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		domain.FlatRecord
		URL            string `json:"url"`
		ResumeTemplate string `json:"resume_template"`
		ScriptRendered bool   `json:"script_rendered"`
		Location       string `json:"location"`
		WorkMode       string `json:"work_mode"`
		Tracked        bool   `json:"tracked"`
		Description    string `json:"description"`
	}{
		FlatRecord:     r.Record.Flat(),
		URL:            r.URL,
		ResumeTemplate: string(r.ResumeTemplate),
		ScriptRendered: r.Record.ScriptRendered,
		Location:       r.Location,
		WorkMode:       r.WorkMode,
		Tracked:        r.Tracked,
		Description:    r.Description,
	})
}

func (r *Runner) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Run fetches url and processes the page.
func (r *Runner) Run(ctx context.Context, reqID, url string) (Result, error) {
	page, err := r.Pages.Fetch(ctx, url)
	if err != nil {
		return Result{}, err
	}
	return r.Process(ctx, reqID, page)
}

// RunText processes a posting the caller already holds as HTML or text.
func (r *Runner) RunText(ctx context.Context, reqID, url, text string) (Result, error) {
	page, err := r.Pages.Build(url, text)
	if err != nil {
		return Result{}, err
	}
	return r.Process(ctx, reqID, page)
}

// Process parses a page, records it in the tracker and announces it.
// Tracking failures are logged, never returned.
func (r *Runner) Process(ctx context.Context, reqID string, page scrape.Page) (Result, error) {
	lg := r.log().With(zap.String("url", page.Input.URL), zap.String("request_id", reqID))

	rec := r.Parser.Parse(ctx, page.Input)

	res := Result{
		URL:            page.Input.URL,
		Record:         rec,
		ResumeTemplate: rec.Template,
		Description:    page.Input.VisibleText,
		Location:       page.Location,
		WorkMode:       page.WorkMode,
	}
	if res.ResumeTemplate == domain.TemplateNone && r.DefaultTemplate != "" && r.DefaultTemplate != domain.TemplateNone {
		res.ResumeTemplate = r.DefaultTemplate
	}
	if rec.ScriptRendered || res.Description == "" {
		res.Description = extract.SyntheticDescription(page.Input.RawHTML, rec)
	}

	lg.Info("posting parsed",
		zap.String("company", rec.CompanyName()),
		zap.String("position", rec.PositionTitle()),
		zap.String("salary", rec.Salary.Display),
		zap.String("template", string(res.ResumeTemplate)),
		zap.String("confidence", string(rec.Confidence)),
		zap.Bool("script_rendered", rec.ScriptRendered),
	)

	if r.DB != nil {
		added, err := store.InsertApplication(ctx, r.DB, store.Application{
			Company:    rec.CompanyName(),
			Role:       rec.PositionTitle(),
			Salary:     rec.Salary.Display,
			URL:        page.Input.URL,
			Template:   string(res.ResumeTemplate),
			Confidence: string(rec.Confidence),
			Location:   page.Location,
			WorkMode:   page.WorkMode,
			SourceID:   util.SourceID(page.Input.URL),
		}, r.now())
		if err != nil {
			lg.Error("track application", zap.Error(err))
		}
		res.Tracked = added
	}

	if r.Hub != nil {
		r.Hub.Publish(events.MakeEvent(reqID, events.TypePostingParsed, 1, res.Record.Flat()))
	}
	return res, nil
}
