package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/savethatagain/internal/flagx"
	"github.com/dmitrijs2005/savethatagain/internal/timex"
)

// JSONConfig is the on-disk shape of the configuration file. Durations
// accept Go duration strings ("168h") or integer nanoseconds.
type JSONConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	GoogleClientID        string         `json:"google_client_id"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3PublicBaseURL       string         `json:"s3_public_base_url"`
	RedisAddr             string         `json:"redis_addr"`
	AuthAttemptsPerMinute int            `json:"auth_attempts_per_minute"`
	AMQPURL               string         `json:"amqp_url"`
	EventsExchange        string         `json:"events_exchange"`
	SweepInterval         timex.Duration `json:"sweep_interval"`
	DeletionGracePeriod   timex.Duration `json:"deletion_grace_period"`
	MaxUploadBytes        int64          `json:"max_upload_bytes"`
	LogFormat             string         `json:"log_format"`
}

// parseJSON loads the file named by -c/-config in args, if any, and copies
// every non-zero value into cfg.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&cfg.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.GoogleClientID, c.GoogleClientID)
	setString(&cfg.S3RootUser, c.S3RootUser)
	setString(&cfg.S3RootPassword, c.S3RootPassword)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&cfg.S3PublicBaseURL, c.S3PublicBaseURL)
	setString(&cfg.RedisAddr, c.RedisAddr)
	setString(&cfg.AMQPURL, c.AMQPURL)
	setString(&cfg.EventsExchange, c.EventsExchange)
	setString(&cfg.LogFormat, c.LogFormat)

	if c.TokenValidityDuration.Duration > 0 {
		cfg.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.SweepInterval.Duration > 0 {
		cfg.SweepInterval = c.SweepInterval.Duration
	}
	if c.DeletionGracePeriod.Duration > 0 {
		cfg.DeletionGracePeriod = c.DeletionGracePeriod.Duration
	}
	if c.AuthAttemptsPerMinute > 0 {
		cfg.AuthAttemptsPerMinute = c.AuthAttemptsPerMinute
	}
	if c.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = c.MaxUploadBytes
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
