package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	// BuildPhase skips required-variable validation, e.g. while packaging assets.
	BuildPhase = "build"
)

// Config is built once at process start and passed to the components that need it.
type Config struct {
	Env   string `validate:"oneof=development production test"`
	Phase string

	Server   ServerConfig
	Database DatabaseConfig
	Admin    AdminConfig
	Site     SiteConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port          string `validate:"required,numeric"`
	SessionSecret string `validate:"required"`
}

type DatabaseConfig struct {
	URL            string `validate:"required"`
	AnonKey        string `validate:"required"`
	ServiceRoleKey string `validate:"required"`
	MaxConns       int    `validate:"gte=1"`
}

type AdminConfig struct {
	PasswordHashB64 string `validate:"required,base64"`
	// PasswordHash is PasswordHashB64 decoded; the env value is base64 so the
	// bcrypt "$" characters survive shell quoting.
	PasswordHash []byte `validate:"-"`
	CookieName   string `validate:"required"`
}

type SiteConfig struct {
	URL           string   `validate:"required,url"`
	Locales       []string `validate:"min=1,dive,len=2"`
	DefaultLocale string   `validate:"required"`
}

type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"`
	Format string `validate:"oneof=text json"`
}

// Load reads the environment (and an optional .env file) into a Config.
// Missing required variables are reported together unless Phase is BuildPhase.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := &Config{
		Env:   getEnv("APP_ENV", EnvDevelopment),
		Phase: os.Getenv("APP_PHASE"),
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
		},
		Database: DatabaseConfig{
			URL:            os.Getenv("DATABASE_URL"),
			AnonKey:        os.Getenv("DB_ANON_KEY"),
			ServiceRoleKey: os.Getenv("DB_SERVICE_ROLE_KEY"),
			MaxConns:       getEnvInt("DB_MAX_CONNS", 10),
		},
		Admin: AdminConfig{
			PasswordHashB64: os.Getenv("ADMIN_PASSWORD_HASH_B64"),
			CookieName:      getEnv("ADMIN_COOKIE_NAME", "turfu_admin_auth"),
		},
		Site: SiteConfig{
			URL:           strings.TrimRight(getEnv("SITE_URL", "https://turfu.org"), "/"),
			Locales:       []string{"fr", "en", "tr"},
			DefaultLocale: "fr",
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}

	if cfg.Phase == BuildPhase {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hash, err := base64.StdEncoding.DecodeString(cfg.Admin.PasswordHashB64)
	if err != nil {
		return nil, fmt.Errorf("decode ADMIN_PASSWORD_HASH_B64: %w", err)
	}
	cfg.Admin.PasswordHash = hash

	return cfg, nil
}

// Validate checks every field and lists all missing environment variables at once.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var missing, invalid []string
	for _, fe := range verrs {
		name := envName(fe)
		if fe.Tag() == "required" {
			missing = append(missing, name)
			continue
		}
		invalid = append(invalid, fmt.Sprintf("%s (%s)", name, fe.Tag()))
	}

	var b strings.Builder
	if len(missing) > 0 {
		b.WriteString("missing required environment variables:\n")
		for _, m := range missing {
			b.WriteString("  - ")
			b.WriteString(m)
			b.WriteString("\n")
		}
	}
	if len(invalid) > 0 {
		b.WriteString("invalid configuration values:\n")
		for _, m := range invalid {
			b.WriteString("  - ")
			b.WriteString(m)
			b.WriteString("\n")
		}
	}
	return errors.New(strings.TrimSpace(b.String()))
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// HasLocale reports whether locale is one of the supported site locales.
func (c *Config) HasLocale(locale string) bool {
	for _, l := range c.Site.Locales {
		if l == locale {
			return true
		}
	}
	return false
}

var envNames = map[string]string{
	"Config.Server.Port":             "PORT",
	"Config.Server.SessionSecret":    "SESSION_SECRET",
	"Config.Database.URL":            "DATABASE_URL",
	"Config.Database.AnonKey":        "DB_ANON_KEY",
	"Config.Database.ServiceRoleKey": "DB_SERVICE_ROLE_KEY",
	"Config.Database.MaxConns":       "DB_MAX_CONNS",
	"Config.Admin.PasswordHashB64":   "ADMIN_PASSWORD_HASH_B64",
	"Config.Admin.CookieName":        "ADMIN_COOKIE_NAME",
	"Config.Site.URL":                "SITE_URL",
	"Config.Logging.Level":           "LOG_LEVEL",
	"Config.Logging.Format":          "LOG_FORMAT",
	"Config.Env":                     "APP_ENV",
}

func envName(fe validator.FieldError) string {
	if name, ok := envNames[fe.Namespace()]; ok {
		return name
	}
	return fe.Namespace()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
