package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/evaluation"
	"github.com/jonathan/interview-coach/internal/extraction"
	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logger"
	"github.com/jonathan/interview-coach/internal/normalize"
	"github.com/jonathan/interview-coach/internal/question"
	"github.com/jonathan/interview-coach/internal/recommend"
	"github.com/jonathan/interview-coach/internal/types"
)

// resolveAPIKey fills cfg.APIKey from the environment. Offline mode needs no
// key at all.
func resolveAPIKey(cfg *config.Config) error {
	if cfg.Offline {
		return nil
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required (or pass --offline)")
	}
	return nil
}

// newNormalizer builds the skill normalizer, extended with user aliases when
// an alias table is configured.
func newNormalizer(cfg config.Config) (*normalize.Normalizer, error) {
	aliases, err := config.LoadAliasTable(cfg.AliasTable)
	if err != nil {
		return nil, err
	}
	return normalize.New(normalize.NewTable(aliases)), nil
}

// loadDocuments reads the resume and job posting text. The job posting may
// come from a local file or be fetched from a URL.
func loadDocuments(ctx context.Context, cfg config.Config) (resumeText, jobText string, err error) {
	reader := extraction.NewFileReader(nil)

	if cfg.Resume != "" {
		if resumeText, err = reader.Read(cfg.Resume); err != nil {
			return "", "", fmt.Errorf("failed to read resume: %w", err)
		}
	}

	switch {
	case cfg.Job != "":
		if jobText, err = reader.Read(cfg.Job); err != nil {
			return "", "", fmt.Errorf("failed to read job posting: %w", err)
		}
	case cfg.JobURL != "":
		opts := fetch.DefaultOptions()
		opts.UseBrowser = cfg.UseBrowser
		if jobText, err = fetch.JobPosting(ctx, cfg.JobURL, opts); err != nil {
			return "", "", fmt.Errorf("failed to fetch job posting: %w", err)
		}
	}

	return resumeText, jobText, nil
}

// extractEntities runs resume and job extraction in parallel. Either input may
// be empty, in which case the corresponding result is nil.
func extractEntities(ctx context.Context, extractor extraction.EntityExtractor, resumeText, jobText string) (*types.CandidateProfile, *types.JobRequirement, error) {
	var (
		profile     *types.CandidateProfile
		requirement *types.JobRequirement
	)

	g, gctx := errgroup.WithContext(ctx)
	if resumeText != "" {
		g.Go(func() error {
			var err error
			profile, err = extractor.ExtractResume(gctx, resumeText)
			return err
		})
	}
	if jobText != "" {
		g.Go(func() error {
			var err error
			requirement, err = extractor.ExtractJob(gctx, jobText)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return profile, requirement, nil
}

// newExtractionService wires the LLM-backed entity extractor.
func newExtractionService(client llm.Client, norm *normalize.Normalizer, log *zap.Logger) *extraction.Service {
	return extraction.NewService(client, norm, log)
}

// buildGenerator picks the question source. Offline sessions use the template
// bank; online sessions use the LLM with the template bank as fallback.
func buildGenerator(cfg config.Config, client llm.Client, seed int64, log *zap.Logger) question.Generator {
	templates := question.NewTemplateGenerator(seed)
	if cfg.Offline || client == nil {
		return templates
	}
	return question.NewLLMGenerator(client, templates, log)
}

// buildEvaluator picks the scoring path, mirroring buildGenerator.
func buildEvaluator(cfg config.Config, client llm.Client, log *zap.Logger) evaluation.Evaluator {
	heuristic := evaluation.NewHeuristicEvaluator()
	if cfg.Offline || client == nil {
		return heuristic
	}
	return evaluation.NewLLMEvaluator(client, heuristic, log)
}

// buildRecommender wires the resource catalog, with LLM supplements when a
// client is available.
func buildRecommender(cfg config.Config, client llm.Client, log *zap.Logger) (*recommend.Recommender, error) {
	catalog, err := recommend.LoadCatalog()
	if err != nil {
		return nil, err
	}

	opts := recommend.DefaultOptions()
	opts.GapWeight = cfg.GapBlend
	opts.WeaknessWeight = 1 - cfg.GapBlend

	var supplement recommend.Supplementer
	if !cfg.Offline && client != nil {
		supplement = recommend.NewLLMSupplementer(client)
	}
	return recommend.NewRecommender(catalog, supplement, opts, log), nil
}

// newLogger builds the process logger from config.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(cfg.JSONLogs, cfg.Verbose)
}
