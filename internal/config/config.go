package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverYAML   = "yaml"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverRemote = "remote"
)

type Config struct {
	LearnerID string         `mapstructure:"learner_id" validate:"required"`
	Timezone  string         `mapstructure:"timezone" validate:"omitempty,timezone"`
	Store     StoreConfig    `mapstructure:"store"`
	Catalog   CatalogConfig  `mapstructure:"catalog"`
	Session   SessionConfig  `mapstructure:"session"`
	Database  DatabaseConfig `mapstructure:"database"`
	SQLite    SQLiteConfig   `mapstructure:"sqlite"`
	Remote    RemoteConfig   `mapstructure:"remote"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory yaml mysql sqlite remote"`
	// Mirror is an optional secondary store that receives a copy of every write.
	Mirror    string `mapstructure:"mirror" validate:"omitempty,oneof=yaml mysql sqlite remote"`
	Directory string `mapstructure:"directory"`
}

type CatalogConfig struct {
	Directories []string `mapstructure:"directories" validate:"dive,readable_dir"`
}

type SessionConfig struct {
	MaxDue    int `mapstructure:"max_due" validate:"gte=1"`
	NewTarget int `mapstructure:"new_target" validate:"gte=0"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RemoteConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts  uint   `mapstructure:"retry_attempts"`
}

// Location returns the time zone used to decide the current calendar day.
func (cfg Config) Location() (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%s) > %w", cfg.Timezone, err)
	}
	return loc, nil
}

// UsesDriver reports whether driver is the primary or the mirror store.
func (cfg Config) UsesDriver(driver string) bool {
	return cfg.Store.Driver == driver || cfg.Store.Mirror == driver
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/reviewdeck")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("learner_id", "default")
	v.SetDefault("store.driver", DriverYAML)
	v.SetDefault("store.directory", "reviews")
	v.SetDefault("session.max_due", 50)
	v.SetDefault("session.new_target", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "reviewdeck")
	v.SetDefault("database.username", "user")
	v.SetDefault("sqlite.path", "reviewdeck.db")
	v.SetDefault("remote.timeout_seconds", 10)
	v.SetDefault("remote.retry_attempts", 3)

	if err := v.BindEnv("learner_id", "REVIEWDECK_LEARNER_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind REVIEWDECK_LEARNER_ID environment variable: %w", err)
	}
	// Secrets are read from the environment only.
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("remote.api_key", "REVIEWDECK_REMOTE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind REVIEWDECK_REMOTE_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
