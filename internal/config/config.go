package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds environment driven settings for the CLI and the local API.
type Config struct {
	DBPath string

	APIHost            string
	APIPort            int
	RateLimitPerMinute int
	AllowedOrigins     []string
	GinMode            string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Addr is the host:port the API listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

func Defaults() Config {
	return Config{
		APIHost:            "127.0.0.1",
		APIPort:            3030,
		RateLimitPerMinute: 120,
		AllowedOrigins:     []string{"http://localhost:1420", "tauri://localhost"},
		GinMode:            "release",
		LogLevel:           "info",
		LogMaxSizeMB:       50,
		LogMaxBackups:      7,
		LogMaxAgeDays:      14,
		LogCompress:        true,
	}
}

// Load reads the given .env files (missing files are ignored) without
// overriding variables already set in the environment, then builds a Config
// from defaults plus environment overrides.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range vals {
			if _, set := os.LookupEnv(k); !set {
				_ = os.Setenv(k, v)
			}
		}
	}

	cfg := Defaults()
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.DBPath = getEnv("PDRPG_DB_PATH", cfg.DBPath)
	cfg.APIHost = getEnv("PDRPG_API_HOST", cfg.APIHost)
	cfg.GinMode = getEnv("PDRPG_GIN_MODE", cfg.GinMode)
	cfg.LogLevel = strings.ToLower(getEnv("PDRPG_LOG_LEVEL", cfg.LogLevel))
	cfg.LogPath = getEnv("PDRPG_LOG_PATH", cfg.LogPath)
	if v := os.Getenv("PDRPG_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PDRPG_API_PORT", &cfg.APIPort},
		{"PDRPG_RATE_LIMIT_PER_MINUTE", &cfg.RateLimitPerMinute},
		{"PDRPG_LOG_MAX_SIZE_MB", &cfg.LogMaxSizeMB},
		{"PDRPG_LOG_MAX_BACKUPS", &cfg.LogMaxBackups},
		{"PDRPG_LOG_MAX_AGE_DAYS", &cfg.LogMaxAgeDays},
	}
	for _, i := range ints {
		v := os.Getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = n
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return fmt.Errorf("PDRPG_API_PORT out of range: %d", cfg.APIPort)
	}

	if v := os.Getenv("PDRPG_LOG_COMPRESS"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PDRPG_LOG_COMPRESS: %w", err)
		}
		cfg.LogCompress = b
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
