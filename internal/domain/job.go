package domain

import "encoding/json"

// RawJobInput is what the fetcher hands to the parser. Either field may be empty.
type RawJobInput struct {
	URL         string
	RawHTML     string
	VisibleText string
}

// Document returns the richest text available: raw HTML when present, else visible text.
func (in RawJobInput) Document() string {
	if in.RawHTML != "" {
		return in.RawHTML
	}
	return in.VisibleText
}

type PositionSource string

const (
	PositionKnownPattern  PositionSource = "known-pattern"
	PositionTitleTag      PositionSource = "title-tag"
	PositionBoardHeading  PositionSource = "board-heading"
	PositionBodyHeuristic PositionSource = "body-heuristic"
	PositionURLPath       PositionSource = "url-path"
)

type PositionCandidate struct {
	Title  string
	Source PositionSource
}

type SalaryKind string

const (
	SalaryRange   SalaryKind = "range"
	SalarySingle  SalaryKind = "single"
	SalaryHourly  SalaryKind = "hourly"
	SalaryEquity  SalaryKind = "equity"
	SalaryUnknown SalaryKind = "unknown"
)

// SalaryTBD is the display value when no compensation could be found.
const SalaryTBD = "TBD"

// SalaryFigure holds whole currency units. High is nil unless Kind is a range
// (or an hourly range); both are nil for equity and unknown.
type SalaryFigure struct {
	Kind    SalaryKind
	Low     *int64
	High    *int64
	Display string
}

func UnknownSalary() SalaryFigure {
	return SalaryFigure{Kind: SalaryUnknown, Display: SalaryTBD}
}

func (s SalaryFigure) Known() bool {
	return s.Kind != "" && s.Kind != SalaryUnknown
}

type TemplateChoice string

const (
	TemplateSeniorEngineeringManager TemplateChoice = "senior_engineering_manager"
	TemplateDataEngineeringManager   TemplateChoice = "data_engineering_manager"
	TemplateEngineeringManager       TemplateChoice = "engineering_manager"
	TemplateSeniorSoftwareEngineer   TemplateChoice = "senior_software_engineer"
	TemplateNone                     TemplateChoice = "none"
)

// Templates lists every concrete template identifier.
var Templates = []TemplateChoice{
	TemplateSeniorEngineeringManager,
	TemplateDataEngineeringManager,
	TemplateEngineeringManager,
	TemplateSeniorSoftwareEngineer,
}

func ParseTemplate(s string) (TemplateChoice, bool) {
	for _, t := range Templates {
		if string(t) == s {
			return t, true
		}
	}
	return TemplateNone, false
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Downgrade moves one step toward low.
func (c Confidence) Downgrade() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

type ParsedJobRecord struct {
	Company        *CompanyCandidate
	Position       *PositionCandidate
	Salary         SalaryFigure
	Template       TemplateChoice
	Confidence     Confidence
	ScriptRendered bool
}

func (r ParsedJobRecord) CompanyName() string {
	if r.Company == nil {
		return ""
	}
	return r.Company.Name
}

func (r ParsedJobRecord) PositionTitle() string {
	if r.Position == nil {
		return ""
	}
	return r.Position.Title
}

// FlatRecord is the wire shape handed to the prompt stage and the tracker.
type FlatRecord struct {
	CompanyName       *string `json:"company_name"`
	PositionTitle     *string `json:"position_title"`
	Salary            string  `json:"salary"`
	SuggestedTemplate *string `json:"suggested_template"`
	Confidence        string  `json:"confidence"`
}

func (r ParsedJobRecord) Flat() FlatRecord {
	out := FlatRecord{
		Salary:     r.Salary.Display,
		Confidence: string(r.Confidence),
	}
	if out.Salary == "" {
		out.Salary = SalaryTBD
	}
	if r.Company != nil {
		name := r.Company.Name
		out.CompanyName = &name
	}
	if r.Position != nil {
		title := r.Position.Title
		out.PositionTitle = &title
	}
	if r.Template != "" && r.Template != TemplateNone {
		t := string(r.Template)
		out.SuggestedTemplate = &t
	}
	return out
}

func (r ParsedJobRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Flat())
}
