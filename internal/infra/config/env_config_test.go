package config_test

import (
	"errors"
	"testing"

	"github.com/axelsub/axelsub/internal/infra/config"
)

type nestedConfig struct {
	Addr    string `env:"ADDR" default:":8080"`
	Timeout int64  `env:"TIMEOUT" default:"5"`
}

type testConfig struct {
	Name     string `env:"NAME" default:"axelsub"`
	Debug    bool   `env:"DEBUG" default:"false"`
	Required string `env:"REQUIRED"`
	Ignored  string

	HTTP nestedConfig `envPrefix:"HTTP_"`
}

func TestParseDefaults(t *testing.T) {
	t.Setenv("TEST_REQUIRED", "set")

	var cfg testConfig
	if err := config.Parse(&cfg, "TEST"); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Name != "axelsub" {
		t.Errorf("Name = %q, want %q", cfg.Name, "axelsub")
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, ":8080")
	}
	if cfg.HTTP.Timeout != 5 {
		t.Errorf("HTTP.Timeout = %d, want 5", cfg.HTTP.Timeout)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("TEST_REQUIRED", "set")
	t.Setenv("TEST_NAME", "other")
	t.Setenv("TEST_DEBUG", "true")
	t.Setenv("TEST_HTTP_ADDR", ":9090")
	t.Setenv("TEST_HTTP_TIMEOUT", "30")

	var cfg testConfig
	if err := config.Parse(&cfg, "TEST"); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Name != "other" {
		t.Errorf("Name = %q, want %q", cfg.Name, "other")
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, ":9090")
	}
	if cfg.HTTP.Timeout != 30 {
		t.Errorf("HTTP.Timeout = %d, want 30", cfg.HTTP.Timeout)
	}
}

func TestParseMissingRequired(t *testing.T) {
	var cfg testConfig

	err := config.Parse(&cfg, "TESTMISSING")
	if !errors.Is(err, config.ErrVarNotSet) {
		t.Fatalf("parse error = %v, want ErrVarNotSet", err)
	}
}

func TestParseInvalidTarget(t *testing.T) {
	var cfg testConfig

	if err := config.Parse(cfg, "TEST"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("parse error = %v, want ErrInvalidConfig", err)
	}
}

func TestParseInvalidInt(t *testing.T) {
	t.Setenv("TEST_REQUIRED", "set")
	t.Setenv("TEST_HTTP_TIMEOUT", "not-a-number")

	var cfg testConfig
	if err := config.Parse(&cfg, "TEST"); err == nil {
		t.Fatal("parse succeeded, want error for non-numeric int")
	}
}
