package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/flourish/internal/flagx"
	"github.com/dmitrijs2005/flourish/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept both strings
// such as "30m" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrTCP            string         `json:"endpoint_addr_tcp"`
	EndpointAddrHealth         string         `json:"endpoint_addr_health"`
	DatabaseDSN                string         `json:"database_dsn"`
	DBMaxOpenConns             int            `json:"db_max_open_conns"`
	DBMaxIdleConns             int            `json:"db_max_idle_conns"`
	MaxFrameSize               int            `json:"max_frame_size"`
	IdleTimeout                timex.Duration `json:"idle_timeout"`
	HealthCheckInterval        timex.Duration `json:"health_check_interval"`
	ResetTokenValidityDuration timex.Duration `json:"reset_token_validity_duration"`
	TokenCleanupInterval       timex.Duration `json:"token_cleanup_interval"`
	SearchLimit                int            `json:"search_limit"`
	BcryptCost                 int            `json:"bcrypt_cost"`
	LogLevel                   string         `json:"log_level"`
	S3RootUser                 string         `json:"s3_root_user"`
	S3RootPassword             string         `json:"s3_root_password"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Keys that
// are absent from the file keep their current value.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)

	// nothing to load
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrTCP, c.EndpointAddrTCP)
	setString(&config.EndpointAddrHealth, c.EndpointAddrHealth)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.DBMaxOpenConns, c.DBMaxOpenConns)
	setInt(&config.DBMaxIdleConns, c.DBMaxIdleConns)
	setInt(&config.MaxFrameSize, c.MaxFrameSize)
	setDuration(&config.IdleTimeout, c.IdleTimeout)
	setDuration(&config.HealthCheckInterval, c.HealthCheckInterval)
	setDuration(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration)
	setDuration(&config.TokenCleanupInterval, c.TokenCleanupInterval)
	setInt(&config.SearchLimit, c.SearchLimit)
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
