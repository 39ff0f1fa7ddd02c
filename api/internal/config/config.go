package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port             string
	TelegramBotToken string
	WebhookURL       string

	// Skysmart endpoints; empty values fall back to the client defaults.
	AuthURL  string
	RoomURL  string
	StepsURL string
	Timeout  time.Duration
	MaxTasks int

	LogLevel  string
	LogPretty bool

	DatabaseURL string
	CacheTTL    time.Duration
	CacheSize   int
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatal().Str("env", k).Msg("missing required env")
	}
	return v
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("env", k).Str("value", v).Int("default", def).Msg("bad int env, using default")
		return def
	}
	return n
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warn().Str("env", k).Str("value", v).Dur("default", def).Msg("bad duration env, using default")
		return def
	}
	return d
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load reads the process environment. Nothing here is required; binaries that
// need a value call the matching Must* helper.
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		AuthURL:  getEnv("SKYSMART_AUTH_URL", ""),
		RoomURL:  getEnv("SKYSMART_ROOM_URL", ""),
		StepsURL: getEnv("SKYSMART_STEPS_URL", ""),
		Timeout:  getDuration("SKYSMART_TIMEOUT", 30*time.Second),
		MaxTasks: getInt("MAX_TASKS", 50),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBool("LOG_PRETTY", false),

		DatabaseURL: resolveDSN(),
		CacheTTL:    getDuration("ANSWERS_CACHE_TTL", 10*time.Minute),
		CacheSize:   getInt("ANSWERS_CACHE_SIZE", 256),
	}
}

// MustTelegramToken aborts the process when the bot token is not configured.
func MustTelegramToken() string { return mustEnv("TELEGRAM_BOT_TOKEN") }

// resolveDSN prefers DATABASE_URL, then builds a DSN from POSTGRES_* / PG*.
// Without POSTGRES_PASSWORD or PGHOST the durable cache is disabled.
func resolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	host := strings.TrimSpace(os.Getenv("PGHOST"))
	if pass == "" && host == "" {
		return ""
	}
	if host == "" {
		host = "db"
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "skyanswers"), pass),
		Host:     net.JoinHostPort(host, getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "skyanswers"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary renders a DSN without the password, for logs.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	host, port := u.Host, ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	s := "host=" + host
	if port != "" {
		s += " port=" + port
	}
	return s + " db=" + db + " user=" + u.User.Username()
}
