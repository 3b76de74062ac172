package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Provider string

const (
	ProviderMock   Provider = "mock"
	ProviderGemini Provider = "gemini"
	ProviderVertex Provider = "vertex"
)

type PanelMode string

const (
	PanelDemo       PanelMode = "demo"
	PanelIntegrated PanelMode = "integrated"
)

type Config struct {
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	Panel     PanelConfig     `mapstructure:"panel" yaml:"panel"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type LLMConfig struct {
	Provider        Provider `mapstructure:"provider" yaml:"provider"`
	Model           string   `mapstructure:"model" yaml:"model"`
	APIKey          string   `mapstructure:"api_key" yaml:"api_key,omitempty"`
	GCPProjectID    string   `mapstructure:"gcp_project" yaml:"gcp_project,omitempty"`
	GCPLocation     string   `mapstructure:"gcp_location" yaml:"gcp_location"`
	Temperature     float32  `mapstructure:"temperature" yaml:"temperature"`
	MaxOutputTokens int32    `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
}

type WorkspaceConfig struct {
	Root    string   `mapstructure:"root" yaml:"root"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	Watch   bool     `mapstructure:"watch" yaml:"watch"`
}

type PanelConfig struct {
	Mode       PanelMode     `mapstructure:"mode" yaml:"mode"`
	ReplyDelay time.Duration `mapstructure:"reply_delay" yaml:"reply_delay"`
	StateKey   string        `mapstructure:"state_key" yaml:"state_key"`
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"` // "memory", "sqlite" or "firestore"
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	GCPProject string `mapstructure:"gcp_project" yaml:"gcp_project,omitempty"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", string(ProviderMock))
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.gcp_location", "us-central1")
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.max_output_tokens", 8192)

	v.SetDefault("workspace.root", ".")
	v.SetDefault("workspace.exclude", []string{"node_modules", ".git", ".svelte-kit", "dist", "build"})
	v.SetDefault("workspace.watch", false)

	v.SetDefault("panel.mode", string(PanelDemo))
	v.SetDefault("panel.reply_delay", time.Second)
	v.SetDefault("panel.state_key", "chatMessages")

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.sqlite_path", "svelte-expert.db")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads defaults, an optional YAML file and SVELTE_EXPERT_* env vars.
// An empty path searches ./svelte-expert.yaml and $HOME/.config/svelte-expert/.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SVELTE_EXPERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{"llm.api_key", "llm.gcp_project", "storage.gcp_project"} {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("llm.api_key", "SVELTE_EXPERT_LLM_API_KEY", "GEMINI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("svelte-expert")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/svelte-expert")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enum values and the settings each backend requires.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderMock:
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			return errors.New("llm.api_key is required for the gemini provider")
		}
	case ProviderVertex:
		if c.LLM.GCPProjectID == "" || c.LLM.GCPLocation == "" {
			return errors.New("llm.gcp_project and llm.gcp_location are required for the vertex provider")
		}
	default:
		return fmt.Errorf("invalid llm.provider %q", c.LLM.Provider)
	}

	switch c.Panel.Mode {
	case PanelDemo, PanelIntegrated:
	default:
		return fmt.Errorf("invalid panel.mode %q", c.Panel.Mode)
	}
	if c.Panel.StateKey == "" {
		return errors.New("panel.state_key must not be empty")
	}

	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite backend")
		}
	case "firestore":
		if c.Storage.GCPProject == "" {
			return errors.New("storage.gcp_project is required for the firestore backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend %q", c.Storage.Backend)
	}

	return nil
}
