package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramBot TelegramBot
	BallDontLie BallDontLie
	Cache       Cache
	Resolver    Resolver
	Reconcile   Reconcile
	League      League
	Packs       Packs
	Server      Server
	Redis       Redis
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	ChatID int64  `envconfig:"CHAT_ID" required:"true"`
}

type BallDontLie struct {
	BaseURL string        `envconfig:"BDL_BASE_URL" default:"https://api.balldontlie.io"`
	APIKey  string        `envconfig:"BDL_API_KEY" required:"true"`
	Season  int           `envconfig:"SEASON" required:"true"`
	Timeout time.Duration `envconfig:"BDL_TIMEOUT" default:"5s"`
	// Requests per minute allowed by the upstream plan.
	RateLimit int `envconfig:"BDL_RATE_LIMIT" default:"60"`
	PerPage   int `envconfig:"BDL_PER_PAGE" default:"100"`
}

type Cache struct {
	LiveTTL       time.Duration `envconfig:"CACHE_LIVE_TTL" default:"30s"`
	TeamTTL       time.Duration `envconfig:"CACHE_TEAM_TTL" default:"60s"`
	GameTTL       time.Duration `envconfig:"CACHE_GAME_TTL" default:"60s"`
	LookupTimeout time.Duration `envconfig:"CACHE_LOOKUP_TIMEOUT" default:"3s"`
}

type Resolver struct {
	LiveGrace      time.Duration `envconfig:"RESOLVER_LIVE_GRACE" default:"20m"`
	RecentWindow   time.Duration `envconfig:"RESOLVER_RECENT_WINDOW" default:"3h"`
	SettleDelay    time.Duration `envconfig:"RESOLVER_SETTLE_DELAY" default:"2s"`
	TickInterval   time.Duration `envconfig:"RESOLVER_TICK_INTERVAL" default:"45s"`
	LiveInterval   time.Duration `envconfig:"RESOLVER_LIVE_INTERVAL" default:"45s"`
	PrimeInterval  time.Duration `envconfig:"RESOLVER_PRIME_INTERVAL" default:"90s"`
	IdleInterval   time.Duration `envconfig:"RESOLVER_IDLE_INTERVAL" default:"180s"`
	ResumeAfter    time.Duration `envconfig:"RESOLVER_RESUME_AFTER" default:"60s"`
	PrimeStartHour int           `envconfig:"RESOLVER_PRIME_START" default:"19"`
	PrimeEndHour   int           `envconfig:"RESOLVER_PRIME_END" default:"23"`
}

type Reconcile struct {
	BatchSize  int `envconfig:"RECONCILE_BATCH_SIZE" default:"10"`
	RecentDays int `envconfig:"RECONCILE_RECENT_DAYS" default:"7"`
}

type League struct {
	// Timezone used for prime time, scheduler jobs and display.
	Timezone string `envconfig:"LEAGUE_TIMEZONE" default:"America/New_York"`
	// Timezone whose calendar date counts as "today" when classifying games.
	DateAnchor      string        `envconfig:"GAME_DATE_TIMEZONE" default:"UTC"`
	DirectoryCron   string        `envconfig:"DIRECTORY_CRON" default:"0 6 * * *"`
	DirectoryMaxAge time.Duration `envconfig:"DIRECTORY_MAX_AGE" default:"24h"`
	// Hour of day the slate of today's games is posted to CHAT_ID.
	SlateHour int `envconfig:"SLATE_HOUR" default:"12"`
}

type Packs struct {
	PlayerCards int `envconfig:"PACK_PLAYER_CARDS" default:"4"`
	TokenCards  int `envconfig:"PACK_TOKEN_CARDS" default:"1"`
}

type Server struct {
	Addr        string   `envconfig:"HTTP_ADDR" default:":80"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

type Redis struct {
	// Inventory falls back to the in-memory store when empty.
	URL string `envconfig:"REDIS_URL"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if c.Reconcile.BatchSize <= 0 || c.Reconcile.BatchSize > 10 {
		return nil, fmt.Errorf("RECONCILE_BATCH_SIZE must be between 1 and 10, got %d", c.Reconcile.BatchSize)
	}
	return &c, nil
}

// Locations loads the league and date-anchor timezones.
func (l League) Locations() (league *time.Location, anchor *time.Location, err error) {
	league, err = time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("loading league timezone %q: %w", l.Timezone, err)
	}
	anchor, err = time.LoadLocation(l.DateAnchor)
	if err != nil {
		return nil, nil, fmt.Errorf("loading date anchor timezone %q: %w", l.DateAnchor, err)
	}
	return league, anchor, nil
}
