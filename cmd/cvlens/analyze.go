package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mbirkedal/cvlens/internal/ingestion"
	"github.com/mbirkedal/cvlens/internal/llm"
	"github.com/mbirkedal/cvlens/internal/phrasing"
	"github.com/mbirkedal/cvlens/internal/pipeline"
	"github.com/mbirkedal/cvlens/internal/segmenter"
	"github.com/mbirkedal/cvlens/internal/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a plain-text CV file",
	Long:  "Runs the full analysis pipeline over a plain-text CV and writes the resulting session (sections, observations, strengths) as JSON.",
	RunE:  runAnalyze,
}

var (
	analyzeInputFile  string
	analyzeOutputFile string
	analyzeAPIKey     string
	analyzeConfigFile string
	analyzeVerbose    bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInputFile, "in", "i", "", "Path to plain-text CV file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeConfigFile, "config", "", "Path to JSON config file")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print progress while analyzing")

	if err := analyzeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(analyzeConfigFile)
	if err != nil {
		return err
	}
	apiKey := resolveAPIKey(analyzeAPIKey, cfg)

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
	}

	analyzer := pipeline.NewAnalyzer(segmenter.DefaultConfig(), analyzerConfig(cfg), nil, client, phrasingService, session.NewStore())

	var progress pipeline.ProgressCallback
	if analyzeVerbose {
		progress = func(e pipeline.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Step, e.Message)
		}
	}

	text, meta, err := ingestion.IngestFromFile(analyzeInputFile)
	if err != nil {
		return err
	}
	cv, err := analyzer.Analyze(ctx, pipeline.Options{
		Filename: meta.Filename,
		RawText:  text,
		Progress: progress,
	})
	if err != nil {
		return err
	}

	jsonBytes, err := json.MarshalIndent(cv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if analyzeOutputFile == "" {
		fmt.Println(string(jsonBytes))
		return nil
	}

	outputDir := filepath.Dir(analyzeOutputFile)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(analyzeOutputFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Output: %s\n", analyzeOutputFile)
	return nil
}
