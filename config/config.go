// Package config assembles the runtime configuration: viper for the file,
// flags and FNCALL_* environment, envdecode for credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fncall/integrations"
	"github.com/fncall/models"
	"github.com/fncall/orchestrator"
	"github.com/fncall/server"
	"github.com/fncall/transport"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/viper"
)

const EnvPrefix = "FNCALL"

type LoopConf struct {
	Budget int `mapstructure:"budget"`
}

type Config struct {
	Server       server.Conf                   `mapstructure:"server"`
	Loop         LoopConf                      `mapstructure:"loop"`
	Transport    transport.Conf                `mapstructure:"transport"`
	Integrations integrations.Conf             `mapstructure:"integrations"`
	Models       map[string]models.BackendConf `mapstructure:"models"`
}

// Secrets are read from the environment only.
type Secrets struct {
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	TomorrowIOAPIKey string `env:"TOMORROW_IO_API_KEY"`
	RunpodID         string `env:"RUNPOD_ID"`
}

func LoadSecrets() (*Secrets, error) {
	s := new(Secrets)
	if err := envdecode.Decode(s); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode secrets from environment: %w", err)
	}
	return s, nil
}

const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
	ollamaEndpoint = "http://localhost:11434/api/generate"
)

// RunpodEndpoint is the Ollama generate endpoint of a RunPod pod.
func RunpodEndpoint(id string) string {
	return fmt.Sprintf("https://%s-11434.proxy.runpod.net/api/generate", id)
}

func SetDefaults(v *viper.Viper) {
	srv := server.ServerConfigs()
	v.SetDefault("server.addr", srv.Addr)
	v.SetDefault("server.timeout_read", srv.TimeoutRead)
	v.SetDefault("server.timeout_write", srv.TimeoutWrite)
	v.SetDefault("server.timeout_idle", srv.TimeoutIdle)
	v.SetDefault("server.grace", srv.Grace)

	v.SetDefault("loop.budget", orchestrator.DefaultBudget)

	tc := transport.DefaultConf()
	v.SetDefault("transport.timeout", tc.Timeout)
	v.SetDefault("transport.max_retries", tc.MaxRetries)
	v.SetDefault("transport.backoff", tc.Backoff)

	ic := integrations.DefaultConf()
	v.SetDefault("integrations.open_notify_url", ic.OpenNotifyURL)
	v.SetDefault("integrations.nominatim_url", ic.NominatimURL)
	v.SetDefault("integrations.tomorrow_io_url", ic.TomorrowIOURL)

	v.SetDefault("models", map[string]any{
		"gpt4": map[string]any{
			"adapter":  models.KindStructured,
			"endpoint": openAIEndpoint,
			"model":    "gpt-4-turbo-preview",
		},
		"mistral:7b-instruct": map[string]any{
			"adapter":  models.KindText,
			"endpoint": ollamaEndpoint,
			"model":    "openhermes",
		},
		"noushermes2promistral": map[string]any{
			"adapter":  models.KindText,
			"endpoint": ollamaEndpoint,
			"model":    "openhermes",
		},
	})
}

// Load decodes v and applies secrets. Structured backends without an api_key
// get the OpenAI key; a RunPod id redirects every text backend still on the
// local Ollama endpoint.
func Load(v *viper.Viper, secrets *Secrets) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if c.Loop.Budget <= 0 {
		return nil, fmt.Errorf("loop.budget must be positive, got %d", c.Loop.Budget)
	}

	if secrets == nil {
		secrets = &Secrets{}
	}
	c.Integrations.TomorrowIOKey = secrets.TomorrowIOAPIKey
	for id, b := range c.Models {
		switch strings.ToLower(b.Adapter) {
		case models.KindStructured:
			if b.APIKey == "" {
				b.APIKey = secrets.OpenAIAPIKey
			}
		case models.KindText:
			if secrets.RunpodID != "" && b.Endpoint == ollamaEndpoint {
				b.Endpoint = RunpodEndpoint(secrets.RunpodID)
			}
		}
		c.Models[id] = b
	}
	return &c, nil
}

// New returns a viper instance with defaults and FNCALL_* environment
// binding. It reads cfgFile, or $HOME/.fncall.yaml when that exists.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return v, nil
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".fncall")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return v, nil
}
