package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nbackend_url: http://llm:8080\nbackend_model: m1\nmax_tokens: 4000\nelastic_addresses:\n  - http://es:9200\ndocs_index: docs\nreports_index: reports\ndata_dir: /data\nexec_timeout_sec: 120\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.BackendURL != "http://llm:8080" || cfg.BackendModel != "m1" || cfg.MaxTokens != 4000 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.ElasticAddresses) != 1 || cfg.DocsIndex != "docs" || cfg.ExecTimeoutSec != 120 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","backend_url":"http://llm:1234","temperature":0.2,"artifacts_dir":"/tmp/plots","cors_origins":["http://ui:3000"]}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.BackendURL != "http://llm:1234" || cfg.Temperature != 0.2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.ArtifactsDir != "/tmp/plots" || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nbackend_model=\"m3\"\npython=\"python3.11\"\nretention_sec=600\nlog_level=\"debug\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.BackendModel != "m3" || cfg.Python != "python3.11" || cfg.RetentionSec != 600 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load(filepath.Join(d, "missing.yaml")); err == nil {
		t.Fatalf("expected error on missing file")
	}
	bad := writeTempFile(t, d, "bad.yaml", ":\n  - {")
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected yaml parse error")
	}
}
