package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseKeepsDefaultsForMissingSections(t *testing.T) {
	cfg, err := Parse([]byte("logging:\n  level: debug\n"), func(string) string { return "" })
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" || cfg.Interpreter.MaxCallDepth != 500 {
		t.Error("expected defaults for unset fields")
	}
}

func TestDelegateEnabled(t *testing.T) {
	cfg, err := Parse([]byte("delegate:\n  driver: postgres\n  dsn: ${PG_DSN}\n"), func(key string) string {
		if key == "PG_DSN" {
			return "postgres://localhost/nrx"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	if !cfg.Delegate.Enabled() || cfg.Delegate.DSN != "postgres://localhost/nrx" {
		t.Errorf("unexpected delegate %+v", cfg.Delegate)
	}
}

func TestApplyProfile(t *testing.T) {
	yamlData := `
interpreter:
  max_evaluation_time: 10s
profiles:
  ci:
    max_evaluation_time: 1s
    strict_symbols: true
    dsn: ci.db
    logging:
      format: json
  broken:
    logging:
      level: loud
`
	cfg, err := Parse([]byte(yamlData), func(string) string { return "" })
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	cfg.BaseDir = "/etc/nrx"

	if err := ApplyProfile(cfg, "ci"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Interpreter.MaxEvaluationTime != time.Second || !cfg.Interpreter.StrictSymbols {
		t.Errorf("interpreter overrides not applied: %+v", cfg.Interpreter)
	}
	if cfg.Delegate.DSN != "/etc/nrx/ci.db" {
		t.Errorf("expected resolved DSN, got %s", cfg.Delegate.DSN)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "warn" {
		t.Errorf("logging overrides not applied: %+v", cfg.Logging)
	}

	if err := ApplyProfile(cfg, "broken"); err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("expected validation error, got %v", err)
	}

	err = ApplyProfile(cfg, "nope")
	if err == nil || !strings.Contains(err.Error(), "available: broken, ci") {
		t.Errorf("expected unknown profile error, got %v", err)
	}

	if err := ApplyProfile(Defaults(), "ci"); err == nil {
		t.Error("expected error when no profiles are defined")
	}
}
