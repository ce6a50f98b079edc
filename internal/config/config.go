// Package config provides functionality for managing configuration options
// for the client using a config file, environment variables and
// command-line flags.
//
// Sources are applied in order, each overriding the previous one:
// built-in defaults, the config file (YAML or JSON), ISSUEKEEPER_*
// environment variables, then flags that were set explicitly.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the client reads.
const EnvPrefix = "ISSUEKEEPER_"

// Options holds the configuration values for the client.
type Options struct {
	// BaseURL is the root of the issue API, e.g. http://localhost:8080.
	BaseURL string `yaml:"base_url" env:"BASE_URL, overwrite"`

	// SessionFile holds the persisted credential and identity.
	SessionFile string `yaml:"session_file" env:"SESSION_FILE, overwrite"`

	// LogFile receives the TUI's logs, since the terminal is taken.
	LogFile string `yaml:"log_file" env:"LOG_FILE, overwrite"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL, overwrite"`

	// Timeout bounds every HTTP request.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT, overwrite"`

	// CAFile is an optional PEM bundle used as the root CAs, for APIs
	// served with a private CA.
	CAFile string `yaml:"ca_file" env:"CA_FILE, overwrite"`

	LoginPath    string `yaml:"login_path" env:"LOGIN_PATH, overwrite"`
	RegisterPath string `yaml:"register_path" env:"REGISTER_PATH, overwrite"`

	// Config is the path to the config file.
	Config string `yaml:"-"`
}

// Default returns the built-in defaults.
func Default() *Options {
	return &Options{
		BaseURL:      "http://localhost:8080",
		SessionFile:  filepath.Join(configHome(), "issuekeeper", "session.json"),
		LogFile:      filepath.Join(stateHome(), "issuekeeper", "client.log"),
		LogLevel:     "info",
		Timeout:      15 * time.Second,
		LoginPath:    "/user/login",
		RegisterPath: "/user/register",
		Config:       filepath.Join(configHome(), "issuekeeper", "config.yaml"),
	}
}

// NewFlagSet declares the client's flags.
func NewFlagSet(name string) *pflag.FlagSet {
	def := Default()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	// Flags after the subcommand belong to the subcommand.
	fs.SetInterspersed(false)
	fs.StringP("config", "c", def.Config, "path to config file (YAML or JSON)")
	fs.StringP("url", "u", def.BaseURL, "issue API base URL")
	fs.String("session-file", def.SessionFile, "where the login session is stored")
	fs.String("log-file", def.LogFile, "log destination for the terminal UI")
	fs.String("log-level", def.LogLevel, "log level: debug, info, warn, error")
	fs.Duration("timeout", def.Timeout, "HTTP request timeout")
	fs.String("ca", "", "PEM file with the CA that signed the API's certificate")
	fs.BoolP("version", "v", false, "show build version and date")
	fs.BoolP("help", "h", false, "show help")
	return fs
}

// Parse parses args with fs and layers the configuration sources. It
// returns the options and the remaining positional arguments.
func Parse(fs *pflag.FlagSet, args []string, lookup envconfig.Lookuper) (*Options, []string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	options := Default()

	explicit := fs.Changed("config")
	if explicit {
		options.Config, _ = fs.GetString("config")
	} else if path, ok := lookup.Lookup(EnvPrefix + "CONFIG"); ok && path != "" {
		options.Config = path
		explicit = true
	}
	if err := loadFile(options, &options.Config, explicit); err != nil {
		return nil, nil, err
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   options,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookup),
	}); err != nil {
		return nil, nil, fmt.Errorf("error while reading environment: %w", err)
	}

	applyFlags(fs, options)
	return options, fs.Args(), nil
}

// loadFile merges the config file at *path into target. A missing default
// file is fine; a missing file that was asked for is an error.
func loadFile(target any, path *string, explicit bool) error {
	data, err := os.ReadFile(*path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}
	keep := *path
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	*path = keep
	return nil
}

func applyFlags(fs *pflag.FlagSet, options *Options) {
	if fs.Changed("url") {
		options.BaseURL, _ = fs.GetString("url")
	}
	if fs.Changed("session-file") {
		options.SessionFile, _ = fs.GetString("session-file")
	}
	if fs.Changed("log-file") {
		options.LogFile, _ = fs.GetString("log-file")
	}
	if fs.Changed("log-level") {
		options.LogLevel, _ = fs.GetString("log-level")
	}
	if fs.Changed("timeout") {
		options.Timeout, _ = fs.GetDuration("timeout")
	}
	if fs.Changed("ca") {
		options.CAFile, _ = fs.GetString("ca")
	}
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".config")
}

func stateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".local", "state")
}
