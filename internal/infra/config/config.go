package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database engines.
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Cookie   CookieConfig   `yaml:"cookie"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// DatabaseConfig selects the storage engine and its pool settings.
type DatabaseConfig struct {
	Engine         string        `yaml:"engine"`
	URL            string        `yaml:"url"`
	MaxConns       int32         `yaml:"maxConns"`
	MinConns       int32         `yaml:"minConns"`
	AcquireTimeout time.Duration `yaml:"acquireTimeout"`
	Migrate        bool          `yaml:"migrate"`
}

// AuthConfig drives sign-up and sign-in.
type AuthConfig struct {
	SessionTTL        time.Duration `yaml:"sessionTtl"`
	MinPasswordLength int           `yaml:"minPasswordLength"`
	Argon2            Argon2Config  `yaml:"argon2"`
}

// Argon2Config holds the argon2id cost parameters for new hashes.
type Argon2Config struct {
	MemoryKiB   uint32 `yaml:"memoryKiB"`
	Iterations  uint32 `yaml:"iterations"`
	Parallelism uint8  `yaml:"parallelism"`
	SaltLength  uint32 `yaml:"saltLength"`
	KeyLength   uint32 `yaml:"keyLength"`
}

// CookieConfig shapes the session cookie issued on sign-in.
type CookieConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("AUTH_DATABASE_ENGINE"); v != "" {
		cfg.Database.Engine = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("AUTH_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("AUTH_DATABASE_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("AUTH_DATABASE_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Database.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("AUTH_DATABASE_ACQUIRE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Database.AcquireTimeout = parsed
		}
	}
	if v := os.Getenv("AUTH_DATABASE_MIGRATE"); v != "" {
		cfg.Database.Migrate = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("AUTH_SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.SessionTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_MIN_PASSWORD_LENGTH"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Auth.MinPasswordLength = parsed
		}
	}
	if v := os.Getenv("AUTH_ARGON2_MEMORY_KIB"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Auth.Argon2.MemoryKiB = uint32(parsed)
		}
	}
	if v := os.Getenv("AUTH_ARGON2_ITERATIONS"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Auth.Argon2.Iterations = uint32(parsed)
		}
	}
	if v := os.Getenv("AUTH_ARGON2_PARALLELISM"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 8); err == nil {
			cfg.Auth.Argon2.Parallelism = uint8(parsed)
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Engine:         EngineSQLite,
			URL:            "file:auth.db",
			MaxConns:       4,
			MinConns:       0,
			AcquireTimeout: 5 * time.Second,
			Migrate:        true,
		},
		Auth: AuthConfig{
			SessionTTL:        24 * time.Hour,
			MinPasswordLength: 6,
			Argon2: Argon2Config{
				MemoryKiB:   19 * 1024,
				Iterations:  2,
				Parallelism: 1,
				SaltLength:  16,
				KeyLength:   32,
			},
		},
		Cookie: CookieConfig{
			Name: "ssid",
			Path: "/",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.Database.Engine {
	case EnginePostgres, EngineSQLite:
	default:
		return fmt.Errorf("database.engine must be %q or %q", EnginePostgres, EngineSQLite)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("database.url cannot be empty")
	}
	if c.Database.MaxConns < 0 || c.Database.MinConns < 0 {
		return errors.New("database pool sizes cannot be negative")
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		return errors.New("database.minConns cannot exceed database.maxConns")
	}
	if c.Database.AcquireTimeout < 0 {
		return errors.New("database.acquireTimeout cannot be negative")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.sessionTtl must be positive")
	}
	if c.Auth.MinPasswordLength <= 0 {
		return errors.New("auth.minPasswordLength must be positive")
	}
	if c.Auth.Argon2.MemoryKiB == 0 || c.Auth.Argon2.Iterations == 0 || c.Auth.Argon2.Parallelism == 0 {
		return errors.New("auth.argon2 memoryKiB, iterations and parallelism must be positive")
	}
	if c.Auth.Argon2.SaltLength < 8 {
		return errors.New("auth.argon2.saltLength must be at least 8")
	}
	if c.Auth.Argon2.KeyLength < 16 {
		return errors.New("auth.argon2.keyLength must be at least 16")
	}
	if strings.TrimSpace(c.Cookie.Name) == "" {
		return errors.New("cookie.name cannot be empty")
	}
	if !strings.HasPrefix(c.Cookie.Path, "/") {
		return errors.New("cookie.path must start with /")
	}
	return nil
}
