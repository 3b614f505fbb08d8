package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/gap"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/normalize"
	"github.com/jonathan/interview-coach/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for running interview
sessions. JWT authentication is enabled when JWT_SECRET is set.`,
	RunE: runServe,
}

var (
	servePort     int
	serveOffline  bool
	serveJSONLogs bool
	serveVerbose  bool
	serveDBURL    string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "Template questions and heuristic scoring only, no LLM calls")
	serveCmd.Flags().BoolVar(&serveJSONLogs, "json-logs", false, "Emit structured JSON logs")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")
	serveCmd.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.Config{
		Offline:     serveOffline,
		JSONLogs:    serveJSONLogs,
		Verbose:     serveVerbose,
		DatabaseURL: serveDBURL,
	}
	cfg = cfg.MergeWithDefaults(config.Config{})
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

	recommender, err := buildRecommender(cfg, client, log)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Engine:      engine,
		Recommender: recommender,
		GapWeights:  gap.DefaultWeights(),
		Logger:      log,
	}

	// The extraction endpoints need an LLM; offline servers run sessions
	// against pre-extracted context only.
	if client != nil {
		deps.Extractor = newExtractionService(client, normalize.New(normalize.NewTable(nil)), log)
	}

	// JWT auth is opt-in via environment.
	if os.Getenv("JWT_SECRET") != "" {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("invalid JWT configuration: %w", err)
		}
		deps.JWT = server.NewJWTService(jwtCfg)
	}

	srv, err := server.New(server.Config{Port: servePort}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
