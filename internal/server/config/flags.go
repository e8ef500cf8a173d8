package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/flagx"
)

var knownFlags = []string{
	"-a", "-grpc", "-d", "-s", "-t", "-gid",
	"-u", "-p", "-b", "-r", "-e", "-public",
	"-redis", "-amqp", "-l",
}

// parseFlags overlays command-line flags onto cfg.
//
//	-a string       HTTP bind address (":8080")
//	-grpc string    gRPC health bind address (":50051")
//	-d string       PostgreSQL DSN
//	-s string       session token secret
//	-t int          session token validity, hours
//	-gid string     Google OAuth client id
//	-u, -p string   S3 user / password
//	-b, -r string   S3 bucket / region
//	-e string       S3 base endpoint
//	-public string  public base URL for stored clips
//	-redis string   Redis address for the auth limiter
//	-amqp string    RabbitMQ URL for domain events
//	-l string       log format: json, text or zap
//
// Only the flags above are looked at; -c/-config is handled by parseJSON.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddrHTTP, "a", cfg.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&cfg.EndpointAddrGRPC, "grpc", cfg.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "session token secret")
	validity := fs.Int("t", int(cfg.TokenValidityDuration.Hours()), "session token validity (in hours)")
	fs.StringVar(&cfg.GoogleClientID, "gid", cfg.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "r", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3PublicBaseURL, "public", cfg.S3PublicBaseURL, "public base URL of stored clips")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.AMQPURL, "amqp", cfg.AMQPURL, "RabbitMQ URL")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *validity <= 0 {
		return fmt.Errorf("token validity must be positive, got %d", *validity)
	}
	cfg.TokenValidityDuration = time.Duration(*validity) * time.Hour
	return nil
}
