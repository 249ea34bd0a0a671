package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. They double as environment variable names once upper-cased,
// which also lets a .env file populate them.
const (
	KeyTelegramToken  = "telegram_token"
	KeyDatabaseURL    = "database_url"
	KeyLogLevel       = "log_level"
	KeyHealthAddress  = "health_address"
	KeyRosterInterval = "roster_interval"
	KeyRosterDailyAt  = "roster_daily_at"
	KeyRosterLimit    = "roster_limit"
)

const (
	defaultLogLevel    = "info"
	defaultRosterLimit = 5
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	LogLevel       string
	HealthAddress  string
	RosterInterval time.Duration
	RosterDailyAt  string
	RosterLimit    int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(v *viper.Viper) {
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyRosterLimit, defaultRosterLimit)
	v.SetDefault(KeyHealthAddress, "")
	v.SetDefault(KeyRosterInterval, "")
	v.SetDefault(KeyRosterDailyAt, "")
}

// Load reads the bot configuration. The bot token and database URL are required.
func Load(v *viper.Viper) (Config, error) {
	cfg, err := read(v)
	if err != nil {
		return Config{}, err
	}
	if cfg.TelegramToken == "" {
		return Config{}, fmt.Errorf("%s is required", strings.ToUpper(KeyTelegramToken))
	}
	return cfg, nil
}

// LoadStore reads the configuration for commands that only touch the database.
func LoadStore(v *viper.Viper) (Config, error) {
	return read(v)
}

func read(v *viper.Viper) (Config, error) {
	interval, err := parseInterval(strings.TrimSpace(v.GetString(KeyRosterInterval)))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(v.GetString(KeyTelegramToken)),
		DatabaseURL:    strings.TrimSpace(v.GetString(KeyDatabaseURL)),
		LogLevel:       strings.TrimSpace(v.GetString(KeyLogLevel)),
		HealthAddress:  strings.TrimSpace(v.GetString(KeyHealthAddress)),
		RosterInterval: interval,
		RosterDailyAt:  strings.TrimSpace(v.GetString(KeyRosterDailyAt)),
		RosterLimit:    v.GetInt(KeyRosterLimit),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("%s is required", strings.ToUpper(KeyDatabaseURL))
	}
	if cfg.RosterLimit <= 0 {
		cfg.RosterLimit = defaultRosterLimit
	}
	return cfg, nil
}

// parseInterval accepts a Go duration ("90m") or a bare number of hours ("6").
func parseInterval(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	if hours, err := strconv.Atoi(raw); err == nil {
		if hours <= 0 {
			return 0, fmt.Errorf("invalid %s %q", KeyRosterInterval, raw)
		}
		return time.Duration(hours) * time.Hour, nil
	}
	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		return 0, fmt.Errorf("invalid %s %q", KeyRosterInterval, raw)
	}
	return interval, nil
}
