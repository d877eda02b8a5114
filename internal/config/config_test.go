package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.ArtifactsDir != "./artifacts" {
		t.Errorf("expected default artifacts dir ./artifacts, got %s", cfg.ArtifactsDir)
	}
	if cfg.DBMaxConns != 10 {
		t.Errorf("expected default max conns 10, got %d", cfg.DBMaxConns)
	}
	if cfg.BodyLimit != "1M" {
		t.Errorf("expected default body limit 1M, got %s", cfg.BodyLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("ARTIFACTS_DIR", "/opt/models/current")
	os.Setenv("PORT", "9090")
	defer os.Unsetenv("ARTIFACTS_DIR")
	defer os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ArtifactsDir != "/opt/models/current" {
		t.Errorf("expected env override for artifacts dir, got %s", cfg.ArtifactsDir)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected env override for port, got %s", cfg.Port)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_ResolvedAuthMode(t *testing.T) {
	c := &Config{Env: "development"}
	if got := c.ResolvedAuthMode(); got != "development" {
		t.Errorf("expected development mode, got %s", got)
	}

	c = &Config{Env: "production"}
	if got := c.ResolvedAuthMode(); got != "token" {
		t.Errorf("expected token mode, got %s", got)
	}

	c = &Config{Env: "production", AuthMode: "development"}
	if got := c.ResolvedAuthMode(); got != "development" {
		t.Errorf("expected explicit mode to win, got %s", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := &Config{
		Env:                   "production",
		AuthMode:              "token",
		AuthSecret:            "0123456789abcdef0123456789abcdef",
		RequestTimeoutSeconds: 30,
		DBMaxConns:            10,
		DBMinConns:            2,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	missingSecret := *valid
	missingSecret.AuthSecret = ""
	if err := missingSecret.Validate(); err == nil {
		t.Error("expected error for token mode without secret")
	}

	shortSecret := *valid
	shortSecret.AuthSecret = "short"
	if err := shortSecret.Validate(); err == nil {
		t.Error("expected error for short secret")
	}

	devInProd := *valid
	devInProd.AuthMode = "development"
	if err := devInProd.Validate(); err == nil {
		t.Error("expected error for development auth in production")
	}

	badMode := *valid
	badMode.AuthMode = "external"
	if err := badMode.Validate(); err == nil {
		t.Error("expected error for unknown auth mode")
	}

	badTimeout := *valid
	badTimeout.RequestTimeoutSeconds = 0
	if err := badTimeout.Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}

	badConns := *valid
	badConns.DBMinConns = 20
	if err := badConns.Validate(); err == nil {
		t.Error("expected error when min conns exceed max conns")
	}
}
