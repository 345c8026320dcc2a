package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	ReadDatabaseURL string
	SessionSalt     string
	AdminEmail      string

	RedisURL        string
	ResultsCacheTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	AuditQueueSize  int
	NotifyQueueSize int
	AuditDetailMax  int

	LogLevel  string
	LogFormat string
}

// LoadDotEnv loads variables from path into the environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ParseFlags reads flags, falling back to environment variables, then defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fset := flag.NewFlagSet("quickly-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fset.StringVar(&cfg.ReadDatabaseURL, "read-d", "", "Read replica URL for results")
	fset.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the results cache")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&cfg.SessionSalt, "session-salt", "", "Session token salt (prefer env)")
	fset.StringVar(&cfg.AdminEmail, "admin-email", "", "Bootstrap admin email")

	fset.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error")
	fset.StringVar(&cfg.LogFormat, "log-format", "", "text or json")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = envInt("PORT", 3318); err != nil {
			return Config{}, err
		}
	}

	cfg.DatabaseURL = orEnv(cfg.DatabaseURL, "DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = strings.ToLower(orEnv(cfg.DatabaseType, "DATABASE_TYPE", "sqlite"))
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}
	cfg.ReadDatabaseURL = orEnv(cfg.ReadDatabaseURL, "READ_DATABASE_URL", "")

	// Secrets - MUST be provided
	cfg.SessionSalt = orEnv(cfg.SessionSalt, "SESSION_SALT", "")
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}
	cfg.AdminEmail = orEnv(cfg.AdminEmail, "ADMIN_EMAIL", "")

	cfg.RedisURL = orEnv(cfg.RedisURL, "REDIS_URL", "")
	if v := os.Getenv("RESULTS_CACHE_TTL"); v != "" {
		if cfg.ResultsCacheTTL, err = time.ParseDuration(v); err != nil || cfg.ResultsCacheTTL < 0 {
			return Config{}, errors.New("invalid RESULTS_CACHE_TTL env variable")
		}
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPPort, err = envInt("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	if cfg.SMTPHost != "" && cfg.SMTPFrom == "" {
		return Config{}, errors.New("SMTP_FROM required when SMTP_HOST is set")
	}

	if cfg.AuditQueueSize, err = envInt("AUDIT_QUEUE_SIZE", 1024); err != nil {
		return Config{}, err
	}
	if cfg.NotifyQueueSize, err = envInt("NOTIFY_QUEUE_SIZE", 256); err != nil {
		return Config{}, err
	}
	if cfg.AuditDetailMax, err = envInt("AUDIT_DETAIL_MAX", 1000); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = strings.ToLower(orEnv(cfg.LogLevel, "LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(orEnv(cfg.LogFormat, "LOG_FORMAT", "text"))

	return cfg, nil
}

// SMTPEnabled reports whether confirmation mail should go through SMTP.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func orEnv(value, key, def string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
