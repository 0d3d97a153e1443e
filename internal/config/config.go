package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr           string
	MySQLDSN           string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	JWTSecret          string
	BookieToken        string
	APIBaseURL         string
	APIToken           string
	APITimeout         time.Duration
	APIRPS             float64
	APIBurst           int
	MarketPollInterval time.Duration
	RatesPollInterval  time.Duration
	MarketResetCron    string
	HeartbeatInterval  time.Duration
	SidebarMinWidth    int
	SidebarMaxWidth    int
	CartMinWidth       int
	CartMaxWidth       int
	DefaultLanguage    string
	Languages          map[string]bool
	JournalEnabled     bool
	LogLevel           string
	LogFile            string
	LogMaxSizeMB       int
	LogMaxBackups      int
}

func Load() Config {
	// .env only seeds variables the environment leaves unset.
	_ = godotenv.Load()
	cfg := Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:           getEnv("MYSQL_DSN", "root:password@tcp(127.0.0.1:3306)/matka?parseTime=true&charset=utf8mb4"),
		RedisAddr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		BookieToken:        getEnv("BOOKIE_TOKEN", ""),
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://127.0.0.1:5000/api"), "/"),
		APIToken:           getEnv("API_TOKEN", ""),
		APITimeout:         getEnvDuration("API_TIMEOUT", 10*time.Second),
		APIRPS:             getEnvFloat("API_RPS", 20),
		APIBurst:           getEnvInt("API_BURST", 10),
		MarketPollInterval: getEnvDuration("MARKET_POLL_INTERVAL", 30*time.Second),
		RatesPollInterval:  getEnvDuration("RATES_POLL_INTERVAL", 60*time.Second),
		MarketResetCron:    getEnv("MARKET_RESET_CRON", "0 0 * * *"),
		HeartbeatInterval:  getEnvDuration("HEARTBEAT_INTERVAL", 60*time.Second),
		SidebarMinWidth:    getEnvInt("SIDEBAR_MIN_WIDTH", 200),
		SidebarMaxWidth:    getEnvInt("SIDEBAR_MAX_WIDTH", 480),
		CartMinWidth:       getEnvInt("CART_MIN_WIDTH", 280),
		CartMaxWidth:       getEnvInt("CART_MAX_WIDTH", 640),
		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "en"),
		JournalEnabled:     getEnvBool("JOURNAL_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		LogMaxSizeMB:       getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 5),
	}
	if cfg.MarketPollInterval < 5*time.Second {
		cfg.MarketPollInterval = 5 * time.Second
	}
	if cfg.RatesPollInterval < 5*time.Second {
		cfg.RatesPollInterval = 5 * time.Second
	}
	if cfg.HeartbeatInterval < 10*time.Second {
		cfg.HeartbeatInterval = 10 * time.Second
	}
	if cfg.APIRPS <= 0 {
		cfg.APIRPS = 20
	}
	if cfg.APIBurst < 1 {
		cfg.APIBurst = 1
	}
	if cfg.SidebarMaxWidth < cfg.SidebarMinWidth {
		cfg.SidebarMaxWidth = cfg.SidebarMinWidth
	}
	if cfg.CartMaxWidth < cfg.CartMinWidth {
		cfg.CartMaxWidth = cfg.CartMinWidth
	}
	cfg.Languages = parseCSVSet(getEnv("LANGUAGES", "en,hi,mr"))
	cfg.Languages[cfg.DefaultLanguage] = true
	return cfg
}

func parseCSVSet(val string) map[string]bool {
	set := make(map[string]bool)
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		set[item] = true
	}
	return set
}

func getEnv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvFloat(key string, def float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	if parsed, err := time.ParseDuration(val); err == nil {
		return parsed
	}
	// bare integers are seconds
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	return parseBool(os.Getenv(key), def)
}

func parseBool(val string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
