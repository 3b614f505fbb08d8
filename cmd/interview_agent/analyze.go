package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/gap"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze skill gaps between a resume and a job posting",
	Long: `Extracts skills from the resume and job posting and prints the gap analysis
without running an interview. Useful for a quick fit check before committing to
a full session.`,
	RunE: runAnalyzeCmd,
}

var (
	analyzeResume     string
	analyzeJob        string
	analyzeJobURL     string
	analyzeAliasTable string
	analyzeAPIKey     string
	analyzeUseBrowser bool
	analyzeJSON       bool
	analyzeVerbose    bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeResume, "resume", "r", "", "Path to resume text file")
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	analyzeCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	analyzeCmd.Flags().StringVar(&analyzeAliasTable, "alias-table", "", "Path to extra skill alias JSON (variant -> canonical)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	analyzeCmd.Flags().BoolVar(&analyzeUseBrowser, "use-browser", false, "Use headless browser for SPA job boards (requires Chrome)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the gap entries as JSON instead of a table")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := analyzeCmd.MarkFlagRequired("resume"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyzeCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.Config{
		Resume:     analyzeResume,
		Job:        analyzeJob,
		JobURL:     analyzeJobURL,
		AliasTable: analyzeAliasTable,
		APIKey:     analyzeAPIKey,
		UseBrowser: analyzeUseBrowser,
		Verbose:    analyzeVerbose,
	}
	cfg = cfg.MergeWithDefaults(config.Config{})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Job == "" && cfg.JobURL == "" {
		return fmt.Errorf("either --job or --job-url must be provided")
	}
	if err := resolveAPIKey(&cfg); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	norm, err := newNormalizer(cfg)
	if err != nil {
		return err
	}
	resumeText, jobText, err := loadDocuments(ctx, cfg)
	if err != nil {
		return err
	}

	extractor := newExtractionService(client, norm, log)
	profile, requirement, err := extractEntities(ctx, extractor, resumeText, jobText)
	if err != nil {
		return fmt.Errorf("entity extraction failed: %w", err)
	}

	weights := gap.Weights{
		MustHave:        cfg.MustHaveWeight,
		NiceToHave:      cfg.NiceToHaveWeight,
		RelevanceFactor: gap.DefaultWeights().RelevanceFactor,
	}
	gaps := gap.Analyze(profile, requirement, weights)

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(gaps)
	}

	if len(gaps) == 0 {
		fmt.Fprintln(os.Stdout, "No skill gaps found.")
		return nil
	}
	observability.NewPrinter(os.Stdout).PrintGapAnalysis(gaps)
	return nil
}
