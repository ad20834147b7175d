package publisher

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"track_agents/generator"
)

// Config is loaded once at startup and handed to every component.
type Config struct {
	ServerAddr string       `mapstructure:"server_addr"`
	Server     ServerConfig `mapstructure:"server"`
	API        APIConfig    `mapstructure:"api"`
	LLM        LLMConfig    `mapstructure:"llm"`
	Blog       BlogConfig   `mapstructure:"blog"`
	Links      LinksConfig  `mapstructure:"links"`
}

// ServerConfig bounds inbound trigger handling.
type ServerConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// APIConfig locates the tracking API. SecretKey is sent as x-secret-key.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	SecretKey string        `mapstructure:"secret_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider    string `mapstructure:"provider"`
	Model       string `mapstructure:"model"`
	MemoryModel string `mapstructure:"memory_model"`
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	MaxTokens   int64  `mapstructure:"max_tokens"`
}

// BlogConfig tunes the weekly blog agent. MemoryStrict makes a failed memory
// write fail the run; otherwise it is only logged.
type BlogConfig struct {
	Author         string `mapstructure:"author"`
	FetchLimit     int    `mapstructure:"fetch_limit"`
	HighlightCount int    `mapstructure:"highlight_count"`
	MemoryLimit    int    `mapstructure:"memory_limit"`
	MemoryStrict   bool   `mapstructure:"memory_strict"`
}

// LinksConfig holds printf templates taking a single id.
type LinksConfig struct {
	Track   string `mapstructure:"track"`
	Profile string `mapstructure:"profile"`
	Image   string `mapstructure:"image"`
}

func setDefaults(v *viper.Viper) {
	agent := generator.DefaultAgentConfig()

	v.SetDefault("server_addr", ":8080")
	v.SetDefault("server.request_timeout", 2*time.Minute)

	v.SetDefault("api.base_url", "https://api.volandoo.com")
	v.SetDefault("api.secret_key", "")
	v.SetDefault("api.timeout", 60*time.Second)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4.1-mini")
	v.SetDefault("llm.memory_model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tokens", 0)

	v.SetDefault("blog.author", agent.Author)
	v.SetDefault("blog.fetch_limit", agent.FetchLimit)
	v.SetDefault("blog.highlight_count", agent.Highlights)
	v.SetDefault("blog.memory_limit", agent.MemoryLimit)
	v.SetDefault("blog.memory_strict", false)

	v.SetDefault("links.track", agent.Links.Track)
	v.SetDefault("links.profile", agent.Links.Profile)
	v.SetDefault("links.image", agent.Links.Image)
}

// providerKeyEnv names the vendor variable holding each provider's key.
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// LoadConfig reads built-in defaults, then the JSON config at path when it
// exists, then environment variables. SERVER_KEY sets the API secret and
// LLM_API_KEY the model key; without either a key in the file or
// LLM_API_KEY, the selected provider's own variable is used.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.secret_key", "SERVER_KEY")
	_ = v.BindEnv("llm.api_key", "LLM_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.LLM.APIKey = os.ExpandEnv(cfg.LLM.APIKey)
	if cfg.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[cfg.LLM.Provider]; ok {
			cfg.LLM.APIKey = os.Getenv(name)
		}
	}
	cfg.API.SecretKey = os.ExpandEnv(cfg.API.SecretKey)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings every agent depends on.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config must include api.base_url")
	}
	if c.API.SecretKey == "" {
		return errors.New("config must include api.secret_key (or SERVER_KEY)")
	}
	if c.Blog.FetchLimit <= 0 || c.Blog.HighlightCount <= 0 {
		return errors.New("blog.fetch_limit and blog.highlight_count must be positive")
	}
	if c.Blog.MemoryLimit < 0 {
		return errors.New("blog.memory_limit must not be negative")
	}
	for name, tmpl := range map[string]string{
		"links.track":   c.Links.Track,
		"links.profile": c.Links.Profile,
		"links.image":   c.Links.Image,
	} {
		if strings.Count(tmpl, "%s") != 1 {
			return fmt.Errorf("%s must contain exactly one %%s", name)
		}
	}
	return nil
}

// MemoryModelOrDefault returns the model used for memory summaries. OpenAI runs get a
// cheaper model by default; other providers reuse the main model.
func (c LLMConfig) MemoryModelOrDefault() string {
	if c.MemoryModel != "" {
		return c.MemoryModel
	}
	if c.Provider == "openai" {
		return "gpt-3.5-turbo"
	}
	return ""
}

// AgentConfig maps the file settings onto the generator pipelines.
func (c Config) AgentConfig() generator.AgentConfig {
	return generator.AgentConfig{
		Author:       c.Blog.Author,
		FetchLimit:   c.Blog.FetchLimit,
		Highlights:   c.Blog.HighlightCount,
		MemoryLimit:  c.Blog.MemoryLimit,
		MemoryModel:  c.LLM.MemoryModelOrDefault(),
		MemoryStrict: c.Blog.MemoryStrict,
		Links: generator.Links{
			Track:   c.Links.Track,
			Profile: c.Links.Profile,
			Image:   c.Links.Image,
		},
	}
}

// LLMSettings returns the generator settings for the configured provider.
func (c Config) LLMSettings() *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider:  c.LLM.Provider,
		Model:     c.LLM.Model,
		APIKey:    c.LLM.APIKey,
		BaseURL:   c.LLM.BaseURL,
		MaxTokens: c.LLM.MaxTokens,
	}
}
