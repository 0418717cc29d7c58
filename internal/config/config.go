package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"` // debug or info
	File       string `mapstructure:"file"`  // empty disables file output
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig bounds comment/reply submissions per client.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MinRateInterval is the smallest refill interval (window / requests) a
// limiter accepts.
const MinRateInterval = time.Millisecond

// Validate rejects a limit whose refill interval rounds below
// MinRateInterval. Requests <= 0 disables limiting and is always valid.
func (r RateLimitConfig) Validate() error {
	if r.Requests <= 0 {
		return nil
	}
	if r.Window/time.Duration(r.Requests) < MinRateInterval {
		return fmt.Errorf("rate_limit: window %s is too short for %d requests", r.Window, r.Requests)
	}
	return nil
}

// MonitorConfig configures the terminal client.
type MonitorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "training_monitor")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.url_expiry", "15m")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("monitor.base_url", "http://localhost:8080")
	v.SetDefault("monitor.timeout", "30s")

	// Keys without a real default still need registering, otherwise
	// AutomaticEnv values are invisible to Unmarshal.
	for _, key := range []string{
		"jwt.secret", "log.file", "monitor.token",
		"s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key", "s3.bucket_name",
	} {
		v.SetDefault(key, "")
	}
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, monitor.token -> MONITOR_TOKEN
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	var config Config
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and env vars still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, err
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, err
	}
	if err := config.RateLimit.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
