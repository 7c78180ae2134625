package environment

import (
	"testing"
	"time"
)

type testConfig struct {
	Port        string        `env:"PORT" default:":4000"`
	MaxConns    int           `env:"MAX_CONNS" default:"10"`
	DisableSSL  bool          `env:"DISABLE_SSL" default:"false"`
	ReadTimeout time.Duration `env:"READ_TIMEOUT" default:"5s"`
	Origins     []string      `env:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173" separator:","`
	APIKey      string        `env:"API_KEY" required:"true"`
	Ignored     string
}

func TestParseEnvTagsDefaults(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret")

	var cfg testConfig
	if err := ParseEnvTags("TEST", &cfg); err != nil {
		t.Fatalf("parse env tags: %v", err)
	}

	if cfg.Port != ":4000" {
		t.Errorf("Port = %q, want %q", cfg.Port, ":4000")
	}
	if cfg.MaxConns != 10 {
		t.Errorf("MaxConns = %d, want 10", cfg.MaxConns)
	}
	if cfg.DisableSSL {
		t.Error("DisableSSL = true, want false")
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[0] != "http://localhost:5173" {
		t.Errorf("Origins = %v, want two localhost origins", cfg.Origins)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "secret")
	}
}

func TestParseEnvTagsOverrides(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret")
	t.Setenv("TEST_PORT", ":9999")
	t.Setenv("TEST_MAX_CONNS", "50")
	t.Setenv("TEST_DISABLE_SSL", "true")
	t.Setenv("TEST_READ_TIMEOUT", "1m30s")
	t.Setenv("TEST_CORS_ORIGINS", "https://a.example , https://b.example")

	var cfg testConfig
	if err := ParseEnvTags("TEST", &cfg); err != nil {
		t.Fatalf("parse env tags: %v", err)
	}

	if cfg.Port != ":9999" {
		t.Errorf("Port = %q, want %q", cfg.Port, ":9999")
	}
	if cfg.MaxConns != 50 {
		t.Errorf("MaxConns = %d, want 50", cfg.MaxConns)
	}
	if !cfg.DisableSSL {
		t.Error("DisableSSL = false, want true")
	}
	if cfg.ReadTimeout != 90*time.Second {
		t.Errorf("ReadTimeout = %v, want 90s", cfg.ReadTimeout)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "https://b.example" {
		t.Errorf("Origins = %v, want trimmed origins", cfg.Origins)
	}
}

func TestParseEnvTagsRequired(t *testing.T) {
	var cfg testConfig
	err := ParseEnvTags("MISSING", &cfg)
	if err == nil {
		t.Fatal("expected error for missing required variable")
	}
}

func TestParseEnvTagsRejectsNonPointer(t *testing.T) {
	var cfg testConfig
	if err := ParseEnvTags("TEST", cfg); err == nil {
		t.Fatal("expected error for non-pointer cfg")
	}
}
