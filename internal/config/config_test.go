package config

import (
	"path/filepath"
	"testing"
	"time"

	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORT", "")
	t.Setenv("SUPPORTDESK_API_URL", "")
	t.Setenv("SUPPORTDESK_TIMEOUT", "")
	t.Setenv("SUPPORTDESK_MAX_RETRIES", "")
	t.Setenv("SUPPORTDESK_AUDIO_ENCODING", "")
	t.Setenv("SUPPORTDESK_STATE_FILE", filepath.Join(dir, "state.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 60*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.API.Timeout)
	}
	if cfg.API.MaxRetries != 1 {
		t.Fatalf("unexpected retries: %d", cfg.API.MaxRetries)
	}
	if cfg.Store.Path != filepath.Join(dir, "state.json") {
		t.Fatalf("unexpected store path: %s", cfg.Store.Path)
	}
	if cfg.Audio.Format != speechmodel.DefaultFormat() {
		t.Fatalf("unexpected audio format: %+v", cfg.Audio.Format)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("SUPPORTDESK_API_URL", "https://support.example.com:8443/")
	t.Setenv("SUPPORTDESK_TIMEOUT", "5")
	t.Setenv("SUPPORTDESK_MAX_RETRIES", "-3")
	t.Setenv("SUPPORTDESK_AUDIO_ENCODING", "ulaw")
	t.Setenv("SUPPORTDESK_STATE_FILE", filepath.Join(t.TempDir(), "state.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.API.BaseURL != "https://support.example.com:8443" {
		t.Fatalf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.API.Timeout)
	}
	if cfg.API.MaxRetries != 0 {
		t.Fatalf("negative retries should clamp to 0, got %d", cfg.API.MaxRetries)
	}
	if cfg.Audio.Format.Encoding != speechmodel.EncodingMulaw {
		t.Fatalf("unexpected encoding: %s", cfg.Audio.Format.Encoding)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                       "80 80",
		"SUPPORTDESK_TIMEOUT":        "soon",
		"SUPPORTDESK_AUDIO_ENCODING": "opus",
		"SUPPORTDESK_SAMPLE_RATE":    "100",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("SUPPORTDESK_STATE_FILE", filepath.Join(t.TempDir(), "state.json"))
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
