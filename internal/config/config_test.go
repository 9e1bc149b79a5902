package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Point at an empty dir so no stray config.yaml is picked up.
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.FFmpeg.Path != "ffmpeg" || cfg.FFmpeg.FFprobePath != "ffprobe" {
		t.Errorf("default ffmpeg paths = %q, %q", cfg.FFmpeg.Path, cfg.FFmpeg.FFprobePath)
	}
	if cfg.Sampler.TimeoutSeconds != 120 {
		t.Errorf("default sampler timeout = %d, want 120", cfg.Sampler.TimeoutSeconds)
	}
	if cfg.Analysis.Model == "" {
		t.Error("default analysis model is empty")
	}
	if cfg.Storage.BasePath == "" {
		t.Error("storage base path is empty")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  production: true
analysis:
  model: gemini-test
sampler:
  timeout_seconds: 15
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 || !cfg.Server.Production {
		t.Errorf("server config = %+v", cfg.Server)
	}
	if cfg.Analysis.Model != "gemini-test" {
		t.Errorf("analysis model = %q", cfg.Analysis.Model)
	}
	if cfg.Sampler.TimeoutSeconds != 15 {
		t.Errorf("sampler timeout = %d", cfg.Sampler.TimeoutSeconds)
	}
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Analysis.APIKey != "env-key" {
		t.Errorf("analysis api key = %q, want env value", cfg.Analysis.APIKey)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
