package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"
)

// ServerOptions holds the configuration values for the reference API
// server. It is layered the same way as Options.
type ServerOptions struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `yaml:"address" env:"SERVER_ADDRESS, overwrite"`

	// DatabaseDSN holds the PostgreSQL connection string. Empty means the
	// server keeps everything in memory.
	DatabaseDSN string `yaml:"database_dsn" env:"DATABASE_DSN, overwrite"`

	// JWTSecret signs issued credentials.
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET, overwrite"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL, overwrite"`

	TLSCert string `yaml:"tls_cert" env:"TLS_CERT, overwrite"`
	TLSKey  string `yaml:"tls_key" env:"TLS_KEY, overwrite"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL, overwrite"`

	// AdminEmail and AdminPassword seed an admin account at start.
	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL, overwrite"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD, overwrite"`

	// PurgeInterval and PurgeRetention drive the soft-delete cleaner.
	PurgeInterval  time.Duration `yaml:"purge_interval" env:"PURGE_INTERVAL, overwrite"`
	PurgeRetention time.Duration `yaml:"purge_retention" env:"PURGE_RETENTION, overwrite"`

	// Config is the path to the config file.
	Config string `yaml:"-"`
}

// DefaultServer returns the server's built-in defaults.
func DefaultServer() *ServerOptions {
	return &ServerOptions{
		Addr:           "localhost:8080",
		TokenTTL:       24 * time.Hour,
		LogLevel:       "info",
		PurgeInterval:  time.Hour,
		PurgeRetention: 30 * 24 * time.Hour,
		Config:         "server.yaml",
	}
}

// NewServerFlagSet declares the server's flags.
func NewServerFlagSet(name string) *pflag.FlagSet {
	def := DefaultServer()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", def.Config, "path to config file (YAML or JSON)")
	fs.StringP("address", "a", def.Addr, "run on ip:port server")
	fs.StringP("database-dsn", "d", "", "PostgreSQL DSN; empty keeps data in memory")
	fs.String("jwt-secret", "", "secret used to sign tokens")
	fs.Duration("token-ttl", def.TokenTTL, "lifetime of issued tokens")
	fs.String("tls-cert", "", "PEM certificate to serve HTTPS")
	fs.String("tls-key", "", "PEM private key to serve HTTPS")
	fs.String("log-level", def.LogLevel, "log level: debug, info, warn, error")
	fs.String("admin-email", "", "seed an admin with this email")
	fs.String("admin-password", "", "password for the seeded admin")
	fs.Duration("purge-interval", def.PurgeInterval, "how often deleted issues are purged")
	fs.Duration("purge-retention", def.PurgeRetention, "how long deleted issues are kept")
	fs.BoolP("version", "v", false, "show build version and date")
	return fs
}

// ParseServer parses args with fs and layers the configuration sources:
// defaults, config file, ISSUEKEEPER_* environment, explicit flags.
func ParseServer(fs *pflag.FlagSet, args []string, lookup envconfig.Lookuper) (*ServerOptions, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	options := DefaultServer()

	explicit := fs.Changed("config")
	if explicit {
		options.Config, _ = fs.GetString("config")
	} else if path, ok := lookup.Lookup(EnvPrefix + "CONFIG"); ok && path != "" {
		options.Config = path
		explicit = true
	}
	if err := loadFile(options, &options.Config, explicit); err != nil {
		return nil, err
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   options,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookup),
	}); err != nil {
		return nil, fmt.Errorf("error while reading environment: %w", err)
	}

	applyServerFlags(fs, options)

	if (options.TLSCert == "") != (options.TLSKey == "") {
		return nil, fmt.Errorf("tls-cert and tls-key must be set together")
	}
	if options.PurgeInterval <= 0 {
		return nil, fmt.Errorf("purge-interval must be positive, got %s", options.PurgeInterval)
	}
	return options, nil
}

func applyServerFlags(fs *pflag.FlagSet, o *ServerOptions) {
	str := map[string]*string{
		"address":        &o.Addr,
		"database-dsn":   &o.DatabaseDSN,
		"jwt-secret":     &o.JWTSecret,
		"tls-cert":       &o.TLSCert,
		"tls-key":        &o.TLSKey,
		"log-level":      &o.LogLevel,
		"admin-email":    &o.AdminEmail,
		"admin-password": &o.AdminPassword,
	}
	for name, dst := range str {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	dur := map[string]*time.Duration{
		"token-ttl":       &o.TokenTTL,
		"purge-interval":  &o.PurgeInterval,
		"purge-retention": &o.PurgeRetention,
	}
	for name, dst := range dur {
		if fs.Changed(name) {
			*dst, _ = fs.GetDuration(name)
		}
	}
}
