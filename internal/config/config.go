package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIBaseURL  = "https://api.ouraring.com/v2"
	DefaultTokenURL    = "https://api.ouraring.com/oauth/token"
	DefaultAuthURL     = "https://cloud.ouraring.com/oauth/authorize"
	DefaultRedirectURI = "http://localhost:8080/callback"
)

type Config struct {
	Env      string
	LogLevel string

	DataDir          string
	DaysBack         int
	StartDate        string
	EndDate          string
	Timezone         string
	WriteEmptyNights bool

	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	APIBaseURL   string
	TokenURL     string
	AuthURL      string
	RedirectURI  string

	TokenBackend string
	TokenFile    string
	PostgresDSN  string
	SQLitePath   string

	ClickHouse ClickHouseConfig

	ServeAddr  string
	ServeToken string
}

// ClickHouseConfig is either fully set or fully empty.
type ClickHouseConfig struct {
	DSN          string
	Database     string
	Table        string
	CreateTables bool
}

func (c ClickHouseConfig) Enabled() bool {
	return c.DSN != "" || c.Database != "" || c.Table != ""
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// Load reads .env (when present) and the environment once per process.
func Load() (*Config, error) {
	once.Do(func() {
		// A missing .env is normal in CI where secrets arrive as env vars.
		_ = godotenv.Load()
		cfg, loadErr = FromEnv()
	})
	return cfg, loadErr
}

// FromEnv builds and validates a Config from the current environment.
func FromEnv() (*Config, error) {
	daysBack, err := getEnvInt("DAYS_BACK", 10)
	if err != nil {
		return nil, err
	}
	writeEmpty, err := getEnvBool("WRITE_EMPTY_NIGHTS", false)
	if err != nil {
		return nil, err
	}
	createTables, err := getEnvBool("CLICKHOUSE_CREATE_TABLES", false)
	if err != nil {
		return nil, err
	}

	c := &Config{
		Env:              getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DataDir:          getEnv("DATA_DIR", "data"),
		DaysBack:         daysBack,
		StartDate:        os.Getenv("START_DATE"),
		EndDate:          os.Getenv("END_DATE"),
		Timezone:         os.Getenv("TIMEZONE"),
		WriteEmptyNights: writeEmpty,
		ClientID:         os.Getenv("OURA_CLIENT_ID"),
		ClientSecret:     os.Getenv("OURA_CLIENT_SECRET"),
		AccessToken:      os.Getenv("OURA_ACCESS_TOKEN"),
		RefreshToken:     os.Getenv("OURA_REFRESH_TOKEN"),
		APIBaseURL:       strings.TrimRight(getEnv("OURA_API_BASE_URL", DefaultAPIBaseURL), "/"),
		TokenURL:         getEnv("OURA_TOKEN_URL", DefaultTokenURL),
		AuthURL:          getEnv("OURA_AUTH_URL", DefaultAuthURL),
		RedirectURI:      getEnv("OURA_REDIRECT_URI", DefaultRedirectURI),
		TokenBackend:     getEnv("TOKEN_BACKEND", "file"),
		TokenFile:        getEnv("TOKEN_FILE", ".oura-tokens.json"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		SQLitePath:       getEnv("SQLITE_PATH", "oura.db"),
		ClickHouse: ClickHouseConfig{
			DSN:          os.Getenv("CLICKHOUSE_DSN"),
			Database:     os.Getenv("CLICKHOUSE_DATABASE"),
			Table:        os.Getenv("CLICKHOUSE_TABLE"),
			CreateTables: createTables,
		},
		ServeAddr:  getEnv("SERVE_ADDR", ":8080"),
		ServeToken: os.Getenv("SERVE_TOKEN"),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	switch c.TokenBackend {
	case "file":
		if c.TokenFile == "" {
			return errors.New("TOKEN_FILE is required when TOKEN_BACKEND=file")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when TOKEN_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when TOKEN_BACKEND=sqlite")
		}
	default:
		return fmt.Errorf("TOKEN_BACKEND must be one of: file, postgres, sqlite (got %q)", c.TokenBackend)
	}
	if c.DaysBack < 1 {
		return errors.New("DAYS_BACK must be at least 1")
	}
	for key, v := range map[string]string{"START_DATE": c.StartDate, "END_DATE": c.EndDate} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return fmt.Errorf("%s must be YYYY-MM-DD: %w", key, err)
		}
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE: %w", err)
		}
	}
	if c.ClickHouse.Enabled() {
		var missing []string
		if c.ClickHouse.DSN == "" {
			missing = append(missing, "CLICKHOUSE_DSN")
		}
		if c.ClickHouse.Database == "" {
			missing = append(missing, "CLICKHOUSE_DATABASE")
		}
		if c.ClickHouse.Table == "" {
			missing = append(missing, "CLICKHOUSE_TABLE")
		}
		if len(missing) > 0 {
			return missingEnvironmentError{missing}
		}
	}
	return nil
}

// Location returns the configured zone, or nil to keep the API's own offsets.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil
	}
	return loc
}

type missingEnvironmentError struct {
	missingVariables []string
}

func (err missingEnvironmentError) Error() string {
	return fmt.Sprintf("Missing the following environment variables: [ %s ]", strings.Join(err.missingVariables, ", "))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	switch strings.ToLower(os.Getenv(key)) {
	case "":
		return fallback, nil
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be a boolean", key)
	}
}
