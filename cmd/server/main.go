package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ainav/backend/internal/config"
	"ainav/backend/internal/logging"
	"ainav/backend/internal/pipeline"
	"ainav/backend/internal/repository"
	"ainav/backend/internal/services"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "ainav",
		Short: "AI tool recommendation service",
		Long:  "ainav answers free-text task descriptions with AI tool picks or step-by-step workflows.",
		// Running ainav with no subcommand starts the HTTP server.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./config.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newScenariosCmd())
	rootCmd.AddCommand(newCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wired service shared by every command.
type app struct {
	cfg          *config.Config
	logger       *logging.Logger
	store        *repository.StaticStore
	orchestrator *pipeline.Orchestrator
	verifier     services.HumanVerifier
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("configuration loading failed: %w", err)
	}
	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Pretty)
	logger.Info("Configuration loaded",
		"llm_base_url", cfg.LLM.BaseURL,
		"llm_key_len", len(cfg.LLM.APIKey),
		"websearch_enabled", cfg.WebSearch.Enabled,
		"websearch_key_len", len(cfg.WebSearch.APIKey),
		"verification_required", cfg.Verification.Required,
	)

	store, err := repository.Load()
	if err != nil {
		return nil, fmt.Errorf("static data is invalid: %w", err)
	}

	llm := services.NewOpenAICompatibleClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	var search services.SearchClient
	if cfg.WebSearch.Enabled {
		search = services.NewWebSearchClient(cfg.WebSearch.APIKey, cfg.WebSearch.BaseURL, cfg.WebSearch.Model, cfg.WebSearch.Timeout)
	}
	var verifier services.HumanVerifier
	if cfg.Verification.Secret != "" {
		verifier = services.NewTurnstileClient(cfg.Verification.Endpoint, cfg.Verification.Secret, cfg.Verification.Timeout)
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		orchestrator: pipeline.NewFromConfig(cfg, store, llm, search, logger),
		verifier:     verifier,
	}, nil
}
