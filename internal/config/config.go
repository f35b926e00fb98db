package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	DBPath            string
	TelegramToken     string
	DefaultTZ         string
	DefaultReminderAt string // "HH:MM"
	ReminderRepeat    time.Duration
	ScanInterval      time.Duration
	VetRegistryURL    string
	BCRegistryURL     string
}

// fileConfig is the TOML layout. Durations are written as "20m", "1m30s".
type fileConfig struct {
	DBPath            string `toml:"db_path"`
	DefaultTZ         string `toml:"default_tz"`
	DefaultReminderAt string `toml:"default_reminder_at"`
	ReminderRepeat    string `toml:"reminder_repeat"`
	ScanInterval      string `toml:"scan_interval"`
	VetRegistryURL    string `toml:"vet_registry_url"`
	BCRegistryURL     string `toml:"bc_registry_url"`
}

const (
	DBName            = "/root/data/pets.db"
	DefaultTZ         = "Europe/Moscow"
	DefaultReminderAt = "20:00"
	DefaultRepeat     = 20 * time.Minute
	DefaultScan       = time.Minute
)

var secretPath = "/run/secrets/telegram_bot_token"

// ErrNoToken means neither the Docker secret nor TELEGRAM_BOT_TOKEN is set.
var ErrNoToken = errors.New("telegram token not found: no Docker secret and no TELEGRAM_BOT_TOKEN")

func Default() Config {
	return Config{
		DBPath:            DBName,
		DefaultTZ:         DefaultTZ,
		DefaultReminderAt: DefaultReminderAt,
		ReminderRepeat:    DefaultRepeat,
		ScanInterval:      DefaultScan,
	}
}

// Load layers defaults, the optional TOML file at path and the environment.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := applyFile(&cfg, data); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.DBPath = getEnv("PET_DB_PATH", cfg.DBPath)
	cfg.DefaultTZ = getEnv("PET_DEFAULT_TZ", cfg.DefaultTZ)
	cfg.DefaultReminderAt = getEnv("PET_REMINDER_AT", cfg.DefaultReminderAt)
	cfg.VetRegistryURL = getEnv("PET_VET_REGISTRY_URL", cfg.VetRegistryURL)
	cfg.BCRegistryURL = getEnv("PET_BC_REGISTRY_URL", cfg.BCRegistryURL)

	var err error
	if cfg.ReminderRepeat, err = getDuration("PET_REMINDER_REPEAT", cfg.ReminderRepeat); err != nil {
		return cfg, err
	}
	if cfg.ScanInterval, err = getDuration("PET_SCAN_INTERVAL", cfg.ScanInterval); err != nil {
		return cfg, err
	}
	if cfg.ScanInterval <= 0 {
		return cfg, fmt.Errorf("scan interval must be positive, got %s", cfg.ScanInterval)
	}

	cfg.TelegramToken = getBotToken()
	return cfg, nil
}

func applyFile(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return err
	}
	cfg.DBPath = orDefault(fc.DBPath, cfg.DBPath)
	cfg.DefaultTZ = orDefault(fc.DefaultTZ, cfg.DefaultTZ)
	cfg.DefaultReminderAt = orDefault(fc.DefaultReminderAt, cfg.DefaultReminderAt)
	cfg.VetRegistryURL = orDefault(fc.VetRegistryURL, cfg.VetRegistryURL)
	cfg.BCRegistryURL = orDefault(fc.BCRegistryURL, cfg.BCRegistryURL)

	var err error
	if cfg.ReminderRepeat, err = parseDuration("reminder_repeat", fc.ReminderRepeat, cfg.ReminderRepeat); err != nil {
		return err
	}
	cfg.ScanInterval, err = parseDuration("scan_interval", fc.ScanInterval, cfg.ScanInterval)
	return err
}

// RequireToken fails when the bot has nothing to authenticate with.
func (c Config) RequireToken() error {
	if c.TelegramToken == "" {
		return ErrNoToken
	}
	return nil
}

func getBotToken() string {
	if data, err := os.ReadFile(secretPath); err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token
		}
	}
	return strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
}

func getEnv(key, defaultValue string) string {
	return orDefault(os.Getenv(key), defaultValue)
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	return parseDuration(key, os.Getenv(key), defaultValue)
}

func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(name, value string, defaultValue time.Duration) (time.Duration, error) {
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
