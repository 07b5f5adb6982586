package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultInstance = "work"
	cfg.Cache.RedisAddr = "localhost:6379"
	cfg.Cache.TTL.Duration = 90 * time.Second
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultInstance != "work" {
		t.Errorf("DefaultInstance = %q, want %q", loaded.DefaultInstance, "work")
	}
	if loaded.Cache.TTL.Duration != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want 1m30s", loaded.Cache.TTL)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Save(path, &Config{DefaultInstance: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestLoadDaemonDefaultsWithoutFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadDaemon(filepath.Join(dir, "config.toml"), filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("Storage.Backend = %q, want file", cfg.Storage.Backend)
	}
	if cfg.Notify.Interval.Duration != 5*time.Second {
		t.Errorf("Notify.Interval = %v, want 5s", cfg.Notify.Interval)
	}
}

func TestLoadDaemonSectionsAndDotenv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	envPath := filepath.Join(dir, ".env")

	toml := `
default_instance = "main"

[matching]
url = "http://from-config/api/resume-match"
timeout = "3s"

[metrics]
addr = "127.0.0.1:9464"
`
	if err := os.WriteFile(cfgPath, []byte(toml), 0600); err != nil {
		t.Fatal(err)
	}
	env := "JOBBOARD_S3_BUCKET=resumes\nJOBBOARD_S3_REGION=eu-west-1\nJOBBOARD_RESUME_MATCH_URL=http://from-dotenv/api/resume-match\n"
	if err := os.WriteFile(envPath, []byte(env), 0600); err != nil {
		t.Fatal(err)
	}
	// The process environment wins over the dotenv file.
	t.Setenv("JOBBOARD_RESUME_MATCH_URL", "http://from-env/api/resume-match")

	cfg, err := LoadDaemon(cfgPath, envPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Matching.URL != "http://from-env/api/resume-match" {
		t.Errorf("Matching.URL = %q", cfg.Matching.URL)
	}
	if cfg.Matching.Timeout.Duration != 3*time.Second {
		t.Errorf("Matching.Timeout = %v, want 3s", cfg.Matching.Timeout)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.Bucket != "resumes" || cfg.Storage.Region != "eu-west-1" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Errorf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}
}

func TestLoadDaemonBadDuration(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\nttl = \"soon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDaemon(cfgPath, filepath.Join(dir, ".env")); err == nil {
		t.Error("expected error for invalid duration")
	}
}
