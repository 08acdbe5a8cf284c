// Package config loads issueform settings from a YAML file, a .env file and
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvOllamaHost  = "OLLAMA_HOST"
	EnvOllamaModel = "OLLAMA_MODEL"
	EnvAddr        = "ISSUEFORM_ADDR"
	EnvLogLevel    = "ISSUEFORM_LOG_LEVEL"
	EnvBackendURL  = "ISSUEFORM_BACKEND_URL"
)

// Defaults.
const (
	DefaultAddr        = "0.0.0.0:8000"
	DefaultOllamaModel = "llama3.2"
	DefaultLogLevel    = "info"
	DefaultLogEncoding = "console"
	DefaultBackendURL  = "http://127.0.0.1:8000"
	DefaultEnvFile     = ".env"
)

var (
	ErrAddrMissing         = errors.New("config: addr is required")
	ErrLogEncodingInvalid  = errors.New("config: log encoding must be console or json")
	ErrBackendURLMalformed = errors.New("config: backend url must be an absolute http(s) URL")
)

// Config holds every setting for the server and the terminal client.
type Config struct {
	Addr   string       `yaml:"addr"`
	Ollama OllamaConfig `yaml:"ollama"`
	Log    LogConfig    `yaml:"log"`
	Submit SubmitConfig `yaml:"submit"`
}

// OllamaConfig points at the model server used for descriptions. An empty
// Host is reported to API callers as a missing required field.
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// SubmitConfig configures the terminal client.
type SubmitConfig struct {
	BackendURL string `yaml:"backend_url"`
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	// Path is an optional YAML file. A missing file is an error.
	Path string
	// EnvFile is loaded into the process environment when present.
	// Defaults to .env.
	EnvFile string
}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Addr: DefaultAddr,
		Ollama: OllamaConfig{
			Model: DefaultOllamaModel,
		},
		Log: LogConfig{
			Level:    DefaultLogLevel,
			Encoding: DefaultLogEncoding,
		},
		Submit: SubmitConfig{
			BackendURL: DefaultBackendURL,
		},
	}
}

// Load builds the configuration and validates it.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.Path != "" {
		raw, err := os.ReadFile(opts.Path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", opts.Path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", opts.Path, err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvAddr, &c.Addr)
	set(EnvOllamaHost, &c.Ollama.Host)
	set(EnvOllamaModel, &c.Ollama.Model)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvBackendURL, &c.Submit.BackendURL)
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Ollama.Model) == "" {
		c.Ollama.Model = DefaultOllamaModel
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = DefaultLogLevel
	}
	if strings.TrimSpace(c.Log.Encoding) == "" {
		c.Log.Encoding = DefaultLogEncoding
	}
	if strings.TrimSpace(c.Submit.BackendURL) == "" {
		c.Submit.BackendURL = DefaultBackendURL
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result error

	if strings.TrimSpace(c.Addr) == "" {
		result = multierror.Append(result, ErrAddrMissing)
	} else if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		result = multierror.Append(result, fmt.Errorf("config: invalid addr %q: %w", c.Addr, err))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("config: invalid log level: %w", err))
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		result = multierror.Append(result, ErrLogEncodingInvalid)
	}
	if u, err := url.Parse(c.Submit.BackendURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result = multierror.Append(result, ErrBackendURLMalformed)
	}
	return result
}
