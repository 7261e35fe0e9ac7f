package config

import (
	"fmt"
	"strings"

	"tailor-engine/internal/domain"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds the errors into one error value, nil when there are none.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalised copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.App.DataDir = strings.TrimSpace(out.App.DataDir)
	out.Scrape.UserAgent = strings.TrimSpace(out.Scrape.UserAgent)
	out.Templates.Default = strings.ToLower(strings.TrimSpace(out.Templates.Default))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.DataDir == "" {
		res.addErr("app.data_dir is required")
	}

	if out.Scrape.TimeoutSeconds <= 0 {
		res.addErr("scrape.timeout_seconds must be > 0")
	}
	if out.Scrape.TextLimit <= 0 {
		res.addErr("scrape.text_limit must be > 0")
	}
	if out.Scrape.MaxBodyBytes <= 0 {
		res.addErr("scrape.max_body_bytes must be > 0")
	}
	if out.Scrape.RequestsPerSecond <= 0 {
		res.addErr("scrape.requests_per_second must be > 0")
	} else if out.Scrape.RequestsPerSecond > 10 {
		res.addWarn("scrape.requests_per_second is high (%.1f); careers sites may block you.", out.Scrape.RequestsPerSecond)
	}
	if out.Scrape.Burst < 1 {
		out.Scrape.Burst = 1
	}

	if out.Probe.Enabled {
		switch t := out.Probe.TimeoutSeconds; {
		case t <= 0:
			res.addErr("probe.timeout_seconds must be > 0 when probe.enabled=true")
		case t > 10:
			res.addErr("probe.timeout_seconds must be <= 10")
		case t > 5:
			res.addWarn("probe.timeout_seconds is %d; each probe can stall a parse that long per endpoint.", t)
		}
	}

	if out.Templates.Default != "" {
		if _, ok := domain.ParseTemplate(out.Templates.Default); !ok {
			res.addErr("templates.default %q is not a known template", out.Templates.Default)
		}
	}

	if !out.Tracker.Enabled {
		res.addWarn("tracker.enabled is false; parsed postings will not be recorded.")
	}
	return out, res
}
