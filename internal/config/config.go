package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Database struct {
		Driver string
		Path   string
		URI    string
		Name   string
	}
	Storage struct {
		Driver        string
		Dir           string
		StagingDir    string
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		URLTTLMinutes int

		// staged uploads younger than this survive the startup purge
		StagingGraceMinutes int
	}
	AWS struct {
		Profile string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Cache struct {
		TTLSeconds int
	}
	Predictor struct {
		URL string
	}
	Enhancer struct {
		URL string
	}
	Upstream struct {
		TimeoutSeconds int
	}
	Upload struct {
		MaxBytes int64
	}
}

// Load reads configuration from environment variables, an optional .env file
// and an optional config file in the working directory.
func Load() (Config, error) {
	// variables already present in the environment win over .env
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLEARPLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/clearplot.db")
	v.SetDefault("database.uri", "")
	v.SetDefault("database.name", "clearplot")
	v.SetDefault("storage.driver", StorageLocal)
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.stagingdir", "data/staging")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "listing-images")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.urlttlminutes", 15)
	v.SetDefault("storage.staginggraceminutes", 60)
	v.SetDefault("aws.profile", "")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttlseconds", 300)
	v.SetDefault("predictor.url", "")
	v.SetDefault("enhancer.url", "")
	v.SetDefault("upstream.timeoutseconds", 15)
	v.SetDefault("upload.maxbytes", 25<<20)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth.jwtsecret is required"))
	}
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverMongo:
		if c.Database.URI == "" {
			errs = append(errs, errors.New("database.uri is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c Config) URLTTL() time.Duration {
	return time.Duration(c.Storage.URLTTLMinutes) * time.Minute
}

func (c Config) StagingGrace() time.Duration {
	return time.Duration(c.Storage.StagingGraceMinutes) * time.Minute
}

func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}
