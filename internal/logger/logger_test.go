package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["foo"]; got != "bar" {
		t.Fatalf("expected foo=bar, got %v", got)
	}

	fallback := WithFields(nil, zap.String("baz", "qux"))
	if fallback == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	fallback.Info("does not panic")
}

func TestWithURL(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	WithURL(l, "  https://jobs.lever.co/acme/1  ").Info("one")
	WithURL(l, "   ").Info("two")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()[FieldURL]; got != "https://jobs.lever.co/acme/1" {
		t.Fatalf("unexpected url field %v", got)
	}
	if _, ok := entries[1].ContextMap()[FieldURL]; ok {
		t.Fatalf("blank url should not be attached")
	}
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		name  string
		json  bool
		debug bool
		level zapcore.Level
	}{
		{name: "console info", level: zapcore.InfoLevel},
		{name: "json debug", json: true, debug: true, level: zapcore.DebugLevel},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.json, tc.debug)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if !l.Core().Enabled(tc.level) {
				t.Fatalf("expected level %s enabled", tc.level)
			}
			if tc.level == zapcore.InfoLevel && l.Core().Enabled(zapcore.DebugLevel) {
				t.Fatalf("debug should be disabled")
			}
		})
	}
}
