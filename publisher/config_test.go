package publisher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"track_agents/generator"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SERVER_KEY", "env-secret")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("LLM_API_KEY", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.ServerAddr)
	require.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
	require.Equal(t, "https://api.volandoo.com", cfg.API.BaseURL)
	require.Equal(t, "env-secret", cfg.API.SecretKey)
	require.Equal(t, 60*time.Second, cfg.API.Timeout)
	require.Equal(t, "openai", cfg.LLM.Provider)
	require.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	require.Equal(t, "env-openai", cfg.LLM.APIKey)
	require.Equal(t, "Volandoo AI", cfg.Blog.Author)
	require.Equal(t, 12, cfg.Blog.FetchLimit)
	require.Equal(t, 6, cfg.Blog.HighlightCount)
	require.Equal(t, 3, cfg.Blog.MemoryLimit)
	require.False(t, cfg.Blog.MemoryStrict)

	agent := cfg.AgentConfig()
	require.Equal(t, generator.DefaultLinks, agent.Links)
	require.Equal(t, "gpt-3.5-turbo", agent.MemoryModel)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("SERVER_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")

	path := writeConfig(t, `{
		"server_addr": ":9090",
		"server": {"request_timeout": "30s"},
		"api": {"base_url": "http://localhost:4000", "secret_key": "file-secret", "timeout": "5s"},
		"llm": {"provider": "anthropic", "model": "claude-sonnet-4-20250514", "api_key": "k", "max_tokens": 2048},
		"blog": {"author": "Bot", "fetch_limit": 20, "highlight_count": 5, "memory_limit": 0, "memory_strict": true},
		"links": {"track": "https://t/%s", "profile": "https://p/%s", "image": "https://i/%s.png"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.ServerAddr)
	require.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, "http://localhost:4000", cfg.API.BaseURL)
	require.Equal(t, "file-secret", cfg.API.SecretKey)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, int64(2048), cfg.LLM.MaxTokens)
	require.True(t, cfg.Blog.MemoryStrict)

	agent := cfg.AgentConfig()
	require.Equal(t, "Bot", agent.Author)
	require.Equal(t, 20, agent.FetchLimit)
	require.Equal(t, 5, agent.Highlights)
	require.Zero(t, agent.MemoryLimit)
	require.True(t, agent.MemoryStrict)
	require.Empty(t, agent.MemoryModel)
	require.Equal(t, "https://i/%s.png", agent.Links.Image)

	settings := cfg.LLMSettings()
	require.Equal(t, "anthropic", settings.Provider)
	require.Equal(t, "k", settings.APIKey)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	t.Setenv("SERVER_KEY", "env-secret")

	path := writeConfig(t, `{"api": {"secret_key": "file-secret"}}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "env-secret", cfg.API.SecretKey)
}

func TestLoadConfigProviderKey(t *testing.T) {
	t.Setenv("SERVER_KEY", "x")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	missing := filepath.Join(t.TempDir(), "missing.json")

	tests := []struct {
		provider string
		want     string
	}{
		{"openai", "sk-openai"},
		{"anthropic", "sk-ant"},
		{"gemini", "gm-key"},
		{"mock", ""},
	}
	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			t.Setenv("LLM_PROVIDER", tc.provider)

			cfg, err := LoadConfig(missing)
			require.NoError(t, err)
			require.Equal(t, tc.provider, cfg.LLM.Provider)
			require.Equal(t, tc.want, cfg.LLM.APIKey)
		})
	}

	t.Run("generic key wins", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "anthropic")
		t.Setenv("LLM_API_KEY", "sk-generic")

		cfg, err := LoadConfig(missing)
		require.NoError(t, err)
		require.Equal(t, "sk-generic", cfg.LLM.APIKey)
	})

	t.Run("file key wins", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "")

		cfg, err := LoadConfig(writeConfig(t, `{"llm": {"provider": "anthropic", "api_key": "from-file"}}`))
		require.NoError(t, err)
		require.Equal(t, "from-file", cfg.LLM.APIKey)
	})
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("SERVER_KEY", "")

	_, err := LoadConfig(writeConfig(t, `{"api": {"secret_key": ""}}`))
	require.ErrorContains(t, err, "secret_key")

	_, err = LoadConfig(writeConfig(t, `{not json`))
	require.ErrorContains(t, err, "reading config")

	t.Setenv("SERVER_KEY", "x")
	_, err = LoadConfig(writeConfig(t, `{"links": {"track": "https://t/"}}`))
	require.ErrorContains(t, err, "links.track")

	_, err = LoadConfig(writeConfig(t, `{"blog": {"fetch_limit": 0}}`))
	require.ErrorContains(t, err, "fetch_limit")
}
