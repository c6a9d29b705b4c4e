package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSearchURL is the craigslist apartment search the watcher polls when
// SEARCH_URL is not set: sorted by date, $1900–3500, 2+ bedrooms, within 2km
// of V5T2C2, posted today.
const DefaultSearchURL = "https://vancouver.craigslist.org/search/apa?sort=date&availabilityMode=0&max_price=3500&min_bedrooms=2&min_price=1900&postal=V5T2C2&postedToday=1&search_distance=2"

const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SearchURL    string
	PollInterval time.Duration
	FetchTimeout time.Duration

	StateBackend      string
	StateFile         string
	InitState         bool
	MaxStoredListings int
	HistoryCSVPath    string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SelectorsFile string
	ChromeBin     string
	Headless      bool

	NotifySound       string
	NotifyConcurrency int
	NotifySpacingMs   int

	Debug bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SearchURL:    getEnv("SEARCH_URL", DefaultSearchURL),
		PollInterval: getEnvDuration("POLL_INTERVAL", 5*time.Minute),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 90*time.Second),

		StateBackend:      strings.ToLower(getEnv("STATE_BACKEND", BackendJSON)),
		StateFile:         getEnv("STATE_FILE", "./apartments.json"),
		InitState:         getEnvBool("INIT_STATE", false),
		MaxStoredListings: getEnvInt("MAX_STORED_LISTINGS", 0),
		HistoryCSVPath:    getEnv("HISTORY_CSV_PATH", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "watcher"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "watcher123"),
		PostgresDB:       getEnv("POSTGRES_DB", "apartments"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		SelectorsFile: getEnv("SELECTORS_FILE", "config/selectors.yaml"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		Headless:      getEnvBool("HEADLESS", true),

		NotifySound:       getEnv("NOTIFY_SOUND", "Apartment"),
		NotifyConcurrency: getEnvInt("NOTIFY_CONCURRENCY", 4),
		NotifySpacingMs:   getEnvInt("NOTIFY_SPACING_MS", 250),

		Debug: getEnvBool("LOG_DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
