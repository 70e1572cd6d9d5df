package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	MongoURI          string        `mapstructure:"MONGO_URI"`
	MongoDB           string        `mapstructure:"MONGO_DB"`
	Port              string        `mapstructure:"PORT"`
	HostName          string        `mapstructure:"HOST_NAME"`
	CloudinaryURL     string        `mapstructure:"CLOUDINARY_URL"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	CacheTTL          time.Duration `mapstructure:"CACHE_TTL"`
	CleanupWorkers    int           `mapstructure:"CLEANUP_WORKERS"`
	CleanupQueueSize  int           `mapstructure:"CLEANUP_QUEUE_SIZE"`
	CleanupMaxElapsed time.Duration `mapstructure:"CLEANUP_MAX_ELAPSED"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogFormat         string        `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"MONGO_URI":           "",
	"MONGO_DB":            "teslodb",
	"PORT":                "8080",
	"HOST_NAME":           "http://localhost:8080/",
	"CLOUDINARY_URL":      "",
	"REDIS_ADDR":          "",
	"CACHE_TTL":           2 * time.Minute,
	"CLEANUP_WORKERS":     2,
	"CLEANUP_QUEUE_SIZE":  256,
	"CLEANUP_MAX_ELAPSED": 2 * time.Minute,
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "text",
}

func LoadConfig() (*Config, error) {
	// Solo cargar .env en desarrollo local
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.WithField("error", err).Warn("error loading .env file")
		} else {
			log.Info(".env file loaded successfully")
		}
	} else {
		log.Info("using system environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa los valores sin los que el servicio no puede arrancar
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.CloudinaryURL == "" {
		errs = append(errs, errors.New("CLOUDINARY_URL is required"))
	}
	if c.CleanupWorkers < 1 {
		errs = append(errs, errors.New("CLEANUP_WORKERS must be at least 1"))
	}
	if c.CleanupQueueSize < 1 {
		errs = append(errs, errors.New("CLEANUP_QUEUE_SIZE must be at least 1"))
	}
	return errors.Join(errs...)
}
