package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/hrscreen/internal/flagx"
	"github.com/dmitrijs2005/hrscreen/internal/timex"
)

// JSONConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, which accepts both strings such as "15m" and integer
// nanoseconds. Omitted or zero fields leave the current value unchanged.
type JSONConfig struct {
	HTTPAddr             string         `json:"http_addr"`
	GRPCAddr             string         `json:"grpc_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	AccessSecret         string         `json:"access_secret"`
	RefreshSecret        string         `json:"refresh_secret"`
	AccessTokenValidity  timex.Duration `json:"access_token_validity"`
	RefreshTokenValidity timex.Duration `json:"refresh_token_validity"`
	BcryptCost           int            `json:"bcrypt_cost"`
	TokenStore           string         `json:"token_store"`
	RedisAddr            string         `json:"redis_addr"`
	RedisPassword        string         `json:"redis_password"`
	RedisDB              int            `json:"redis_db"`
	LogLevel             string         `json:"log_level"`
}

// parseJSON loads the file named by -c/-config in args, if any, and overlays
// its non-zero values onto config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AccessSecret, c.AccessSecret)
	setString(&config.RefreshSecret, c.RefreshSecret)
	setString(&config.TokenStore, c.TokenStore)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidity.Duration > 0 {
		config.AccessTokenValidity = c.AccessTokenValidity.Duration
	}
	if c.RefreshTokenValidity.Duration > 0 {
		config.RefreshTokenValidity = c.RefreshTokenValidity.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
