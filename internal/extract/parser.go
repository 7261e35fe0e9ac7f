package extract

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"tailor-engine/internal/domain"
)

// Parser runs the extraction stages over one posting. It is safe for
// concurrent use.
type Parser struct {
	log    *zap.Logger
	prober EndpointProber
}

type Option func(*Parser)

func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// WithProber enables the network lookup for script-rendered pages.
func WithProber(pr EndpointProber) Option {
	return func(p *Parser) { p.prober = pr }
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{log: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

var defaultParser = NewParser()

// ParseJobPosting parses a posting without any network access.
func ParseJobPosting(text, rawURL string) domain.ParsedJobRecord {
	return defaultParser.Parse(context.Background(), domain.RawJobInput{URL: rawURL, RawHTML: text})
}

// partial is threaded through the stages by value; a stage returns a new
// partial and never mutates the one it was given.
type partial struct {
	url  string
	text string
	doc  *goquery.Document
	rec  domain.ParsedJobRecord
}

type stage struct {
	name string
	run  func(ctx context.Context, p partial) partial
}

func (p *Parser) stages() []stage {
	return []stage{
		{"detect", p.detect},
		{"content", p.content},
		{"url", p.urlCompany},
		{"url-path", p.urlPosition},
		{"salary", p.salary},
		{"template", p.template},
		{"confidence", p.confidence},
	}
}

func (p *Parser) Parse(ctx context.Context, in domain.RawJobInput) domain.ParsedJobRecord {
	text := in.Document()
	cur := partial{
		url:  in.URL,
		text: text,
		doc:  loadDocument(text),
		rec: domain.ParsedJobRecord{
			Salary:     domain.UnknownSalary(),
			Template:   domain.TemplateNone,
			Confidence: domain.ConfidenceLow,
		},
	}
	for _, s := range p.stages() {
		cur = p.runStage(ctx, s, cur)
	}
	return cur.rec
}

// runStage confines a failing stage to its own output: the incoming partial
// passes through untouched.
func (p *Parser) runStage(ctx context.Context, s stage, in partial) (out partial) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("extraction stage failed",
				zap.String("stage", s.name),
				zap.String("url", in.url),
				zap.String("panic", fmt.Sprint(r)),
			)
			out = in
		}
	}()
	return s.run(ctx, in)
}

func (p *Parser) detect(_ context.Context, in partial) partial {
	out := in
	out.rec.ScriptRendered = scriptRendered(in.doc)
	if out.rec.ScriptRendered {
		p.log.Debug("script-rendered page", zap.String("url", in.url))
	}
	return out
}

func (p *Parser) content(_ context.Context, in partial) partial {
	out := in
	sig := extractContent(in.doc, in.text, in.url)
	out.rec.Company = sig.company
	out.rec.Position = sig.position
	if sig.company != nil {
		p.log.Debug("company found", zap.String("rule", sig.companyRule), zap.String("company", sig.company.Name))
	}
	if sig.position != nil {
		p.log.Debug("position found", zap.String("rule", sig.positionRule), zap.String("position", sig.position.Title))
	}
	return out
}

func (p *Parser) urlCompany(_ context.Context, in partial) partial {
	if in.rec.Company != nil || in.url == "" {
		return in
	}
	out := in
	c, rule := companyFromURL(in.url)
	out.rec.Company = c
	if c != nil {
		p.log.Debug("company found", zap.String("rule", "url:"+rule), zap.String("company", c.Name))
	}
	return out
}

func (p *Parser) urlPosition(_ context.Context, in partial) partial {
	if in.rec.Position != nil || !in.rec.ScriptRendered || in.url == "" {
		return in
	}
	out := in
	out.rec.Position = PositionFromURLPath(in.url)
	if out.rec.Position != nil {
		p.log.Debug("position found", zap.String("rule", "url-path"), zap.String("position", out.rec.Position.Title))
	}
	return out
}

func (p *Parser) salary(ctx context.Context, in partial) partial {
	out := in
	f, rule := parseSalary(in.text)
	if !f.Known() {
		f, rule = p.structuredSalary(ctx, in)
	}
	out.rec.Salary = f
	if f.Known() {
		p.log.Debug("salary found", zap.String("rule", rule), zap.String("salary", f.Display))
	}
	return out
}

// structuredSalary looks past the visible text: JSON-LD on any page, and for
// script-rendered shells the embedded state, the JSON endpoint probe, the meta
// tags and the query string, in that order.
func (p *Parser) structuredSalary(ctx context.Context, in partial) (domain.SalaryFigure, string) {
	if f, ok := salaryFromJSONLD(in.doc); ok {
		return f, "json-ld"
	}
	if !in.rec.ScriptRendered {
		return domain.UnknownSalary(), ""
	}
	for _, state := range embeddedStates(in.doc, in.text) {
		if f, ok := salaryFromState(state, 0); ok {
			return f, "embedded-state"
		}
	}
	if p.prober != nil && in.url != "" {
		if f, ok := p.prober.Probe(ctx, in.url); ok {
			return f, "endpoint-probe"
		}
	}
	if f, ok := salaryFromMeta(in.doc); ok {
		return f, "meta"
	}
	if f, ok := salaryFromQuery(in.url); ok {
		return f, "query"
	}
	return domain.UnknownSalary(), ""
}

func (p *Parser) template(_ context.Context, in partial) partial {
	out := in
	out.rec.Template = SelectResumeTemplate(in.rec.PositionTitle())
	return out
}

func (p *Parser) confidence(_ context.Context, in partial) partial {
	out := in
	c := domain.ConfidenceLow
	switch {
	case in.rec.Company != nil && in.rec.Position != nil:
		c = domain.ConfidenceHigh
	case in.rec.Company != nil || in.rec.Position != nil:
		c = domain.ConfidenceMedium
	}
	if in.rec.ScriptRendered {
		c = c.Downgrade()
	}
	out.rec.Confidence = c
	return out
}
