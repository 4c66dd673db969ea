package shared

import (
	"github.com/caarlos0/env/v8"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"prod"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9100"`

	// snapshot cache
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass       string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"900"`

	// upstream booking API; empty credentials mean fixture-only mode
	HostawayBase      string `env:"HOSTAWAY_BASE_URL" envDefault:"https://api.hostaway.com"`
	HostawayAccountID string `env:"HOSTAWAY_ACCOUNT_ID"`
	HostawaySecret    string `env:"HOSTAWAY_CLIENT_SECRET"`
	HostawayRPS       int    `env:"HOSTAWAY_RPS" envDefault:"5"`

	// places search (parallel feature); empty key disables the proxy
	GoogleBase string `env:"GOOGLE_PLACES_BASE_URL"`
	GoogleKey  string `env:"GOOGLE_PLACES_API_KEY"`

	// approval store: "file" (default) or "mysql"
	ApprovalsBackend string `env:"APPROVALS_BACKEND" envDefault:"file"`
	ApprovalsFile    string `env:"APPROVALS_FILE" envDefault:"data/approvals.json"`
	MySQLDSN         string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/flexreviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"`

	// refresher
	Workers    int     `env:"REFRESH_WORKERS" envDefault:"4"`
	ListingIDs []int64 `env:"REFRESH_LISTING_IDS" envSeparator:","`
}

func Load() Config {
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal().Err(err).Msg("config parse failed")
	}
	if c.HostawayAccountID == "" || c.HostawaySecret == "" {
		log.Warn().Msg("hostaway credentials are empty; reviews will come from the fixture")
	}
	return c
}
