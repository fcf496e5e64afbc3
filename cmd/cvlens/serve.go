package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbirkedal/cvlens/internal/analyzers"
	"github.com/mbirkedal/cvlens/internal/config"
	"github.com/mbirkedal/cvlens/internal/llm"
	"github.com/mbirkedal/cvlens/internal/phrasing"
	"github.com/mbirkedal/cvlens/internal/pipeline"
	"github.com/mbirkedal/cvlens/internal/segmenter"
	"github.com/mbirkedal/cvlens/internal/server"
	"github.com/mbirkedal/cvlens/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the REST API for uploading CVs, reading analysis sessions, responding to observations and requesting rewrites.",
	RunE:  runServe,
}

var (
	servePort       int
	serveAPIKey     string
	serveConfigFile string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "HTTP listen port")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Path to JSON config file")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(serveConfigFile)
	if err != nil {
		return err
	}
	if servePort != 8080 || cfg.Port == 0 {
		cfg.Port = servePort
	}

	apiKey := resolveAPIKey(serveAPIKey, cfg)

	ctx := context.Background()
	var client llm.Client
	var phrasingService phrasing.Service
	if apiKey != "" {
		client, err = llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()

		phrasingCfg := phrasing.DefaultConfig()
		if cfg.Language != "" {
			phrasingCfg.Language = cfg.Language
		}
		phrasingService = phrasing.NewService(client, phrasingCfg)
	} else {
		log.Println("No API key configured; running with heuristic segmentation and template messages only")
	}

	analyzer := pipeline.NewAnalyzer(segmenter.DefaultConfig(), analyzerConfig(cfg), nil, client, phrasingService, session.NewStore())
	return server.New(server.Config{Port: cfg.Port}, analyzer).Start()
}

// loadMergedConfig loads the optional config file and validates it
func loadMergedConfig(path string) (config.Config, error) {
	cfg := config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	return cfg, nil
}

// resolveAPIKey picks the key from flag, config file, then environment
func resolveAPIKey(flagValue string, cfg config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	return os.Getenv("GEMINI_API_KEY")
}

// analyzerConfig applies config-file overrides to the analyzer thresholds
func analyzerConfig(cfg config.Config) analyzers.Config {
	anCfg := analyzers.DefaultConfig()
	if cfg.MaxObservations > 0 {
		anCfg.MaxObservations = cfg.MaxObservations
	}
	if cfg.MinConfidence > 0 {
		anCfg.MinConfidenceToShow = cfg.MinConfidence
	}
	if cfg.OutdatedMonths > 0 {
		anCfg.OutdatedMonths = cfg.OutdatedMonths
	}
	if cfg.GapMonths > 0 {
		anCfg.GapWarningMonths = cfg.GapMonths
	}
	return anCfg
}
