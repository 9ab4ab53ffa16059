// Package config loads agentloom settings from the environment. An optional
// .env file is read with viper and exported to the process environment
// first; envconfig then decodes the prefixed variables into Config.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/logging"
	"github.com/hupe1980/agentloom/model"
	"github.com/hupe1980/agentloom/model/anthropic"
	"github.com/hupe1980/agentloom/model/gemini"
	"github.com/hupe1980/agentloom/model/openai"
)

// DefaultPrefix is the environment variable prefix used by Load.
const DefaultPrefix = "AGENTLOOM"

// Supported model providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config holds every runtime setting.
type Config struct {
	Provider    string  `envconfig:"PROVIDER" default:"gemini"`
	Model       string  `envconfig:"MODEL"`
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.7"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	LogBackend string `envconfig:"LOG_BACKEND" default:"slog"` // slog, zerolog or zap

	// DBPath selects the SQLite store; empty keeps messages in memory.
	DBPath string `envconfig:"DB_PATH"`

	JiraBaseURL       string `envconfig:"JIRA_BASE_URL"`
	JiraAuthorization string `envconfig:"JIRA_AUTHORIZATION"`

	MaxModelCalls          int           `envconfig:"MAX_MODEL_CALLS" default:"100"`
	ExecutionMaxIterations int           `envconfig:"EXECUTION_MAX_ITERATIONS" default:"10"`
	ExecutionTimeout       time.Duration `envconfig:"EXECUTION_TIMEOUT" default:"300s"`
	CriticEnabled          bool          `envconfig:"CRITIC_ENABLED"`
	CriticMaxIterations    int           `envconfig:"CRITIC_MAX_ITERATIONS" default:"5"`
	CriticTimeout          time.Duration `envconfig:"CRITIC_TIMEOUT" default:"60s"`
}

// LoadOptions configure Load.
type LoadOptions struct {
	// Prefix of the environment variables. Defaults to DefaultPrefix.
	Prefix string
	// EnvFile is read when it exists. Defaults to ".env".
	EnvFile string
	// RequireEnvFile turns a missing EnvFile into an error.
	RequireEnvFile bool
}

// Load reads the optional env file and decodes the environment into a Config.
func Load(optFns ...func(o *LoadOptions)) (*Config, error) {
	opts := LoadOptions{Prefix: DefaultPrefix, EnvFile: ".env"}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.EnvFile != "" {
		if err := exportEnvironment(opts.EnvFile, opts.RequireEnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	var cfg Config
	if err := envconfig.Process(opts.Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(optFns ...func(o *LoadOptions)) *Config {
	cfg, err := Load(optFns...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks provider specific requirements.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}

	if c.ExecutionMaxIterations < 1 || c.CriticMaxIterations < 1 {
		return errors.New("iteration limits must be positive")
	}

	return nil
}

// exportEnvironment copies the settings of an env file into the process
// environment. Existing variables win over file values.
func exportEnvironment(path string, required bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}

// NewGateway creates the model gateway selected by Provider.
func NewGateway(ctx context.Context, cfg *Config) (core.Gateway, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		temp := float32(cfg.Temperature)
		gw, err := gemini.New(ctx, func(o *gemini.Options) {
			o.APIKey = cfg.GeminiAPIKey
			o.Temperature = &temp
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
		if err != nil {
			return nil, err
		}
		return gw, nil
	case ProviderOpenAI:
		return openai.New(func(o *openai.Options) {
			o.APIKey = cfg.OpenAIAPIKey
			o.Temperature = cfg.Temperature
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case ProviderAnthropic:
		return anthropic.New(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			o.Temperature = cfg.Temperature
			if cfg.Model != "" {
				o.Model = sdkanthropic.Model(cfg.Model)
			}
		}), nil
	case ProviderMock:
		name := cfg.Model
		if name == "" {
			name = "mock"
		}
		return model.NewMock(name), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// NewLogger creates the logger selected by LogBackend writing to out.
func NewLogger(cfg *Config, out io.Writer) (logging.Logger, error) {
	level := logging.ParseLevel(cfg.LogLevel)

	switch strings.ToLower(cfg.LogBackend) {
	case "", "slog":
		return logging.NewLogger(&logging.LoggerConfig{Level: level, Format: cfg.LogFormat, Output: out}), nil
	case "zerolog":
		return logging.NewZerologLogger(out, level, cfg.LogFormat == "text"), nil
	case "zap":
		l, err := logging.NewZapLogger(level)
		if err != nil {
			return nil, err
		}
		return l, nil
	case "none":
		return logging.NoOpLogger{}, nil
	default:
		return nil, fmt.Errorf("unsupported log backend %q", cfg.LogBackend)
	}
}
