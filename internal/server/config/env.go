package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvHTTPAddr             = "HRSCREEN_HTTP_ADDR"
	EnvGRPCAddr             = "HRSCREEN_GRPC_ADDR"
	EnvDatabaseDSN          = "HRSCREEN_DATABASE_DSN"
	EnvAccessSecret         = "HRSCREEN_ACCESS_SECRET"
	EnvRefreshSecret        = "HRSCREEN_REFRESH_SECRET"
	EnvAccessTokenValidity  = "HRSCREEN_ACCESS_TOKEN_VALIDITY"
	EnvRefreshTokenValidity = "HRSCREEN_REFRESH_TOKEN_VALIDITY"
	EnvBcryptCost           = "HRSCREEN_BCRYPT_COST"
	EnvTokenStore           = "HRSCREEN_TOKEN_STORE"
	EnvRedisAddr            = "HRSCREEN_REDIS_ADDR"
	EnvRedisPassword        = "HRSCREEN_REDIS_PASSWORD"
	EnvRedisDB              = "HRSCREEN_REDIS_DB"
	EnvLogLevel             = "HRSCREEN_LOG_LEVEL"
)

// loadDotEnv exports variables from path into the process environment.
// Variables already set win; a missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with the HRSCREEN_* variables that lookup finds.
// Durations use time.ParseDuration syntax ("15m", "168h").
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str(EnvHTTPAddr, &cfg.HTTPAddr)
	str(EnvGRPCAddr, &cfg.GRPCAddr)
	str(EnvDatabaseDSN, &cfg.DatabaseDSN)
	str(EnvAccessSecret, &cfg.AccessSecret)
	str(EnvRefreshSecret, &cfg.RefreshSecret)
	str(EnvTokenStore, &cfg.TokenStore)
	str(EnvRedisAddr, &cfg.RedisAddr)
	str(EnvRedisPassword, &cfg.RedisPassword)
	str(EnvLogLevel, &cfg.LogLevel)

	return errors.Join(
		dur(EnvAccessTokenValidity, &cfg.AccessTokenValidity),
		dur(EnvRefreshTokenValidity, &cfg.RefreshTokenValidity),
		num(EnvBcryptCost, &cfg.BcryptCost),
		num(EnvRedisDB, &cfg.RedisDB),
	)
}
