package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the global ~/.jobboard/config.toml.
type Config struct {
	DefaultInstance string         `toml:"default_instance"`
	Storage         StorageConfig  `toml:"storage"`
	Cache           CacheConfig    `toml:"cache"`
	Matching        MatchingConfig `toml:"matching"`
	Notify          NotifyConfig   `toml:"notify"`
	Metrics         MetricsConfig  `toml:"metrics"`
}

// StorageConfig selects the object store. Backend is "file" or "s3".
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	PublicURL string `toml:"public_url"`
}

// CacheConfig enables the Redis profile cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// MatchingConfig points at the resume-match service; empty URL means the
// built-in keyword scorer.
type MatchingConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

// NotifyConfig enables email delivery when Sender is set.
type NotifyConfig struct {
	SESRegion string   `toml:"ses_region"`
	Sender    string   `toml:"sender"`
	Interval  Duration `toml:"interval"`
	PublicURL string   `toml:"public_url"`
}

// MetricsConfig exposes /metrics on Addr when set.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as "30s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}
	if c.Matching.Timeout.Duration == 0 {
		c.Matching.Timeout.Duration = 15 * time.Second
	}
	if c.Notify.Interval.Duration == 0 {
		c.Notify.Interval.Duration = 5 * time.Second
	}
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDaemon reads the config file (defaults if absent), then applies
// JOBBOARD_* overrides from the process environment, falling back to the
// dotenv file at envPath for variables the environment does not set.
func LoadDaemon(path, envPath string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	cfg.fillDefaults()

	file, err := godotenv.Read(envPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envPath, err)
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	})
	return cfg, nil
}

// ApplyEnv overrides credentials and endpoints from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Storage.Bucket, "JOBBOARD_S3_BUCKET")
	set(&c.Storage.Region, "JOBBOARD_S3_REGION")
	set(&c.Cache.RedisAddr, "JOBBOARD_REDIS_ADDR")
	set(&c.Cache.RedisPassword, "JOBBOARD_REDIS_PASSWORD")
	set(&c.Matching.URL, "JOBBOARD_RESUME_MATCH_URL")
	set(&c.Notify.SESRegion, "JOBBOARD_SES_REGION")
	set(&c.Notify.Sender, "JOBBOARD_SES_SENDER")
	set(&c.Notify.PublicURL, "JOBBOARD_PUBLIC_URL")
	set(&c.Metrics.Addr, "JOBBOARD_METRICS_ADDR")
	if v, ok := lookup("JOBBOARD_REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = n
		}
	}
	if c.Storage.Bucket != "" && c.Storage.Backend == "file" {
		if _, explicit := lookup("JOBBOARD_S3_BUCKET"); explicit {
			c.Storage.Backend = "s3"
		}
	}
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
