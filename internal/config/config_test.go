package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("Default port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.API.Envelope != "workflow" {
		t.Errorf("Default envelope = %q, want workflow", cfg.API.Envelope)
	}
	if cfg.Cache.QuestionsTTL != 600*time.Second {
		t.Errorf("Questions TTL = %v, want 600s", cfg.Cache.QuestionsTTL)
	}
	if cfg.Cache.MetadataTTL != time.Hour {
		t.Errorf("Metadata TTL = %v, want 1h", cfg.Cache.MetadataTTL)
	}
	if cfg.Cache.AnswerTTL != 300*time.Second {
		t.Errorf("Answer TTL = %v, want 300s", cfg.Cache.AnswerTTL)
	}
	if cfg.Server.AuthToken != "" {
		t.Errorf("Auth token must default to unset, got %q", cfg.Server.AuthToken)
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		t.Error("CORS allow-list must have localhost defaults")
	}
}

func TestEnvelopeOverride(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMGATE_ENVELOPE", "task")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Envelope != "task" {
		t.Errorf("Envelope = %q, want task", cfg.API.Envelope)
	}
}

func TestInvalidEnvelopeRejected(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMGATE_ENVELOPE", "workflow2")

	if _, err := Load(""); err == nil {
		t.Fatal("Expected validation error for unknown envelope mode")
	}
}

func TestAuthTokenFromEnvironment(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMGATE_AUTH_TOKEN", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.AuthToken != "secret" {
		t.Errorf("Auth token = %q, want secret", cfg.Server.AuthToken)
	}
}
