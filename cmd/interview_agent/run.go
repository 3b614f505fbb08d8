package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/gap"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/types"
)

const (
	// quitCommand aborts the session from the answer prompt.
	quitCommand = "/quit"

	// evaluationTimeout bounds a single answer evaluation. The engine aborts
	// the session when this deadline is exceeded.
	evaluationTimeout = 90 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive mock interview",
	Long: `Runs a full mock interview in the terminal: extracts entities from the resume
and job posting, analyzes skill gaps, asks questions one at a time, scores each
answer, and finishes with a summary report and study recommendations.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values. Type ` + quitCommand + ` at the answer prompt to
abort the session early.`,
	RunE: runInterviewCmd,
}

var (
	runConfigPath string
	runResume     string
	runJob        string
	runJobURL     string
	runType       string
	runQuestions  int
	runAdaptive   bool
	runThreshold  float64
	runAliasTable string
	runAPIKey     string
	runUseBrowser bool
	runOffline    bool
	runVerbose    bool
	runJSONLogs   bool
	runDBURL      string
)

func init() {
	// Config file flag (processed first)
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCmd.Flags().StringVarP(&runResume, "resume", "r", "", "Path to resume text file")
	runCmd.Flags().StringVarP(&runJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	runCmd.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	runCmd.Flags().StringVarP(&runType, "type", "t", "", "Interview type: technical, behavioral, competency, general")
	runCmd.Flags().IntVarP(&runQuestions, "questions", "q", 0, "Number of initial questions")
	runCmd.Flags().BoolVar(&runAdaptive, "adaptive", true, "Insert a follow-up question after weak answers")
	runCmd.Flags().Float64Var(&runThreshold, "follow-up-threshold", 0, "Score below which a follow-up fires (0.0-1.0)")
	runCmd.Flags().StringVar(&runAliasTable, "alias-table", "", "Path to extra skill alias JSON (variant -> canonical)")
	runCmd.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA job boards (requires Chrome)")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "Template questions and heuristic scoring only, no LLM calls")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")
	runCmd.Flags().BoolVar(&runJSONLogs, "json-logs", false, "Emit structured JSON logs")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for session persistence
	runCmd.Flags().StringVar(&runDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCmd)
}

// mergedRunConfig loads the config file, applies flag overrides, and fills
// defaults.
func mergedRunConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loaded, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	} else {
		// No file: the adaptive flag default applies.
		cfg.Adaptive = true
	}

	// Command-line args take priority, but only when explicitly set.
	if cmd.Flags().Changed("resume") {
		cfg.Resume = runResume
	}
	if cmd.Flags().Changed("job") {
		cfg.Job = runJob
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = runJobURL
	}
	if cmd.Flags().Changed("type") {
		cfg.InterviewType = runType
	}
	if cmd.Flags().Changed("questions") {
		cfg.QuestionCount = runQuestions
	}
	if cmd.Flags().Changed("adaptive") {
		cfg.Adaptive = runAdaptive
	}
	if cmd.Flags().Changed("follow-up-threshold") {
		cfg.FollowUpThreshold = runThreshold
	}
	if cmd.Flags().Changed("alias-table") {
		cfg.AliasTable = runAliasTable
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("offline") {
		cfg.Offline = runOffline
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs = runJSONLogs
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDBURL
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		InterviewType: string(types.InterviewGeneral),
		QuestionCount: interview.DefaultQuestionCount,
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Resume == "" {
		return cfg, fmt.Errorf("--resume is required (via flag or config)")
	}
	return cfg, nil
}

func runInterviewCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := mergedRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := resolveAPIKey(&cfg); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	var client llm.Client
	if !cfg.Offline {
		if client, err = llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey); err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer client.Close() //nolint:errcheck
	}

	printer := observability.NewPrinter(os.Stdout)

	// Entity extraction and gap analysis need an LLM; offline sessions skip
	// straight to template questions.
	var (
		profile     *types.CandidateProfile
		requirement *types.JobRequirement
		gaps        []types.GapEntry
	)
	if !cfg.Offline {
		norm, err := newNormalizer(cfg)
		if err != nil {
			return err
		}
		resumeText, jobText, err := loadDocuments(ctx, cfg)
		if err != nil {
			return err
		}
		extractor := newExtractionService(client, norm, log)
		if profile, requirement, err = extractEntities(ctx, extractor, resumeText, jobText); err != nil {
			return fmt.Errorf("entity extraction failed: %w", err)
		}
		if profile != nil && requirement != nil {
			weights := gap.Weights{
				MustHave:        cfg.MustHaveWeight,
				NiceToHave:      cfg.NiceToHaveWeight,
				RelevanceFactor: gap.DefaultWeights().RelevanceFactor,
			}
			gaps = gap.Analyze(profile, requirement, weights)
			printer.PrintGapAnalysis(gaps)
		}
	}

	var store interview.Store
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		store = database
	}

	generator := buildGenerator(cfg, client, time.Now().UnixNano(), log)
	evaluator := buildEvaluator(cfg, client, log)
	engine := interview.NewEngine(generator, evaluator, store, log)

	sessionCfg := interview.Config{
		Type:              types.InterviewType(cfg.InterviewType),
		QuestionCount:     cfg.QuestionCount,
		Adaptive:          cfg.Adaptive,
		FollowUpThreshold: cfg.FollowUpThreshold,
	}
	session, err := engine.CreateSession(ctx, sessionCfg, profile, requirement, gaps)
	if err != nil {
		return err
	}

	first, err := engine.Start(ctx, session.ID)
	if err != nil {
		return err
	}

	aborted, err := interviewLoop(ctx, engine, printer, session, first)
	if err != nil {
		return err
	}
	if aborted {
		fmt.Fprintln(os.Stdout, "Interview aborted. No report generated.")
		return nil
	}

	summary, err := engine.Finalize(ctx, session.ID)
	if err != nil {
		return err
	}
	printer.PrintSummary(summary)

	recommender, err := buildRecommender(cfg, client, log)
	if err != nil {
		log.Warn("failed to build recommender", zap.Error(err))
		return nil
	}
	printer.PrintRecommendations(recommender.Recommend(ctx, gaps, summary))
	return nil
}

// interviewLoop asks questions until the session completes or the user quits.
func interviewLoop(ctx context.Context, engine *interview.Engine, printer *observability.Printer, session *types.InterviewSession, first *types.Question) (aborted bool, err error) {
	q := first
	number := 1
	total := len(session.Questions)

	for q != nil {
		printer.PrintQuestion(number, total, q)

		answer, err := promptAnswer()
		if err != nil {
			return false, err
		}
		if answer == quitCommand {
			if err := engine.Abort(ctx, session.ID, "aborted by user"); err != nil {
				return false, err
			}
			return true, nil
		}

		evalCtx, cancel := context.WithTimeout(ctx, evaluationTimeout)
		eval, next, err := engine.SubmitAnswer(evalCtx, session.ID, q.ID, answer)
		cancel()
		if err != nil {
			return false, err
		}
		printer.PrintEvaluation(eval)

		// A follow-up may have been inserted; refresh the count.
		if snapshot, err := engine.GetSession(session.ID); err == nil {
			total = len(snapshot.Questions)
		}

		q = next
		number++
	}
	return false, nil
}

func promptAnswer() (string, error) {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("Your answer (%s to stop)", quitCommand),
	}
	answer, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return answer, nil
}
