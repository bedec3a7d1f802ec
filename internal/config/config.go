// Package config provides functionality for managing configuration options
// for the VLINKY server using command-line flags, a JSON config file,
// a .env file and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// LogLevel is the minimum zap level that is written.
	LogLevel string `json:"log_level"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`

	// AllowedOrigins is a comma-separated CORS allow-list. "*" allows any origin.
	AllowedOrigins string `json:"allowed_origins"`

	// SessionTTL is how long a login token stays valid.
	SessionTTL time.Duration `json:"-"`

	// NotifyRatePerMinute caps requests per client IP on the public
	// notification and auth endpoints.
	NotifyRatePerMinute int `json:"notify_rate_per_minute"`
}

// Origins splits AllowedOrigins into a trimmed list.
func (o *Options) Origins() []string {
	var out []string
	for _, s := range strings.Split(o.AllowedOrigins, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.TLSCertFile, "tls-cert", "", "path to TLS certificate")
	flag.StringVar(&options.TLSKeyFile, "tls-key", "", "path to TLS private key")
	flag.StringVar(&options.AllowedOrigins, "origins", "*", "comma-separated CORS origins")
	flag.DurationVar(&options.SessionTTL, "session-ttl", 7*24*time.Hour, "session lifetime")
	flag.IntVar(&options.NotifyRatePerMinute, "notify-rate", 30, "public endpoint requests per minute per IP")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. Precedence, lowest first: flags, config file,
// environment (including values loaded from .env).
func Parse() *Options {
	flag.Parse()

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := applyFile(options, data); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if err := applyEnv(options, os.Getenv); err != nil {
		log.Fatalf("error while reading environment: %v", err)
	}

	return options
}

// applyFile overlays the JSON config file onto o.
func applyFile(o *Options, data []byte) error {
	if err := json.Unmarshal(data, o); err != nil {
		return err
	}
	var extra struct {
		SessionTTL string `json:"session_ttl"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	if extra.SessionTTL != "" {
		d, err := time.ParseDuration(extra.SessionTTL)
		if err != nil {
			return fmt.Errorf("session_ttl: %w", err)
		}
		o.SessionTTL = d
	}
	return nil
}

// applyEnv overrides o with any set environment variables.
func applyEnv(o *Options, getenv func(string) string) error {
	if v := getenv("SERVER_ADDRESS"); v != "" {
		o.Port = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		o.DatabaseDSN = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	if v := getenv("TLS_CERT_FILE"); v != "" {
		o.TLSCertFile = v
	}
	if v := getenv("TLS_KEY_FILE"); v != "" {
		o.TLSKeyFile = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		o.AllowedOrigins = v
	}
	if v := getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		o.SessionTTL = d
	}
	if v := getenv("NOTIFY_RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTIFY_RATE_PER_MINUTE: %w", err)
		}
		o.NotifyRatePerMinute = n
	}
	return nil
}
