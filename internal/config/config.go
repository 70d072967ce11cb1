package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

var ErrConfigNotFound = errors.New("config file does not exist")

type Config struct {
	Env           string `yaml:"env" env-default:"local" env:"ENV"`
	SettingsFile  string `yaml:"settings_file" env-default:"config.ini" env:"SETTINGS_FILE"`
	HistoryFile   string `yaml:"history_file" env-default:"history.db" env:"HISTORY_FILE"`
	LogFile       string `yaml:"log_file" env-default:"log.txt" env:"LOG_FILE"`
	NotifyTitle   string `yaml:"notify_title" env-default:"SimBrief Renamer" env:"NOTIFY_TITLE"`
	RestartOnSave bool   `yaml:"restart_on_save" env-default:"true" env:"RESTART_ON_SAVE"`
	Timing        Timing `yaml:"timing"`
}

// Timing holds the fixed delays of the renamer core.
type Timing struct {
	DebounceTTL    time.Duration `yaml:"debounce_ttl" env-default:"3s" env:"DEBOUNCE_TTL"`
	DispatchDelay  time.Duration `yaml:"dispatch_delay" env-default:"2s" env:"DISPATCH_DELAY"`
	AutoStartDelay time.Duration `yaml:"auto_start_delay" env-default:"3s" env:"AUTO_START_DELAY"`
	SweepDelay     time.Duration `yaml:"sweep_delay" env-default:"10s" env:"SWEEP_DELAY"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env-default:"24h" env:"SWEEP_INTERVAL"`
}

// Load reads configPath when given and falls back to environment
// variables and defaults otherwise.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from env: %w", err)
		}
		return &cfg, nil
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

// FetchConfigPath resolves the config file path.
// Priority: flag > env > default.
// default value is empty string.
func FetchConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("CONFIG_PATH")
}
