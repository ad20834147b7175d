package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"track_agents/generator"
	"track_agents/publisher"
)

var (
	configPath string
	verbose    bool
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "track-agents",
	Short: "AI writers for the flight tracking platform",
	Long: `track-agents turns tracking activity into AI written content:
a weekly blog of the best flights, comments and briefs for finished tracks,
and replies to text messages.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.json", "path to config.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")

	rootCmd.AddCommand(serveCmd, blogCmd, commentCmd, briefCmd, smsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config and wires the agent every command runs on.
func setup(ctx context.Context) (publisher.Config, *generator.Agent, error) {
	cfg, err := publisher.LoadConfig(configPath)
	if err != nil {
		return publisher.Config{}, nil, err
	}
	llm, err := buildLLM(ctx, cfg)
	if err != nil {
		return publisher.Config{}, nil, err
	}
	api, err := publisher.New(cfg, nil, logger)
	if err != nil {
		return publisher.Config{}, nil, err
	}
	agent, err := generator.NewAgent(llm, api, cfg.AgentConfig(), logger.Named("agent"))
	if err != nil {
		return publisher.Config{}, nil, err
	}
	return cfg, agent, nil
}

func buildLLM(ctx context.Context, cfg publisher.Config) (generator.LLMClient, error) {
	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key in config")
	}
	settings := cfg.LLMSettings()
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "anthropic":
		return generator.NewAnthropicLLMFromConfig(settings)
	case "gemini":
		return generator.NewGeminiLLMFromConfig(ctx, settings)
	case "mock":
		return &generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
