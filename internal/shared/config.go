package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	JWTSecret    string
	TokenTTL     time.Duration
	CacheTTL     time.Duration
	SweepHour    int // hour of day (UTC) the daily sweep fires
	SweepWorkers int
	AuthRPS      int // per-IP request budget on /api/auth
	PageLimit    int // default page size for list endpoints
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/bookaway?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		JWTSecret:    env("JWT_SECRET", ""),
		TokenTTL:     time.Duration(atoi("TOKEN_TTL_HOURS", 168)) * time.Hour,
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SweepHour:    atoi("SWEEP_HOUR", 12),
		SweepWorkers: atoi("SWEEP_WORKERS", 4),
		AuthRPS:      atoi("AUTH_RPS", 5),
		PageLimit:    atoi("PAGE_LIMIT", 10),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; tokens will be signed with an insecure default")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
