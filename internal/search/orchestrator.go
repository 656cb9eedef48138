package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vedank-s/job-scout/internal/ai"
	"github.com/vedank-s/job-scout/internal/classify"
	"github.com/vedank-s/job-scout/internal/jobs"
	"github.com/vedank-s/job-scout/internal/resume"
	"github.com/vedank-s/job-scout/internal/serper"
)

const (
	// A resume shorter than this carries no signal worth matching against.
	minResumeChars = 50

	defaultMaxPerCompany = 2
	resultsPerQuery      = 10

	confidenceThreshold = 60

	recommendationsTop         = 5
	recommendationsTemperature = 0.7
	recommendationsMaxTokens   = 500
	recommendationsSystem      = "You are a career advisor."
)

// Searcher is the query-execution collaborator.
type Searcher interface {
	SearchAll(ctx context.Context, queries []string, num int, region, language string) ([]serper.Result, error)
}

// Scorer produces a match analysis for one candidate job.
type Scorer interface {
	Score(ctx context.Context, job *jobs.Job, resumeText string, userExperience int, targetRoles []string) *jobs.MatchAnalysis
}

// Validator runs the two-gate validation over a scored batch.
type Validator interface {
	ValidateBatch(ctx context.Context, list *jobs.Jobs, roles []string, userExperience int) *jobs.Jobs
}

// Config drives one search run.
type Config struct {
	Companies      []string
	Roles          []string
	Region         string
	Language       string
	DateWindowDays int
	MaxPerCompany  int
	UserExperience int
}

// Outcome is the result of one full run: the surviving jobs sorted by match
// score, plus the counts needed for reporting.
type Outcome struct {
	Jobs            *jobs.Jobs
	OriginalCount   int
	ValidatedCount  int
	FilteredReasons map[string]int
	Stats           Stats
}

// Stats summarizes the run for logging and display.
type Stats struct {
	CompaniesSearched int
	QueriesRun        int
	Discovered        int
	Validated         int
	AverageMatchScore float64
}

// Orchestrator wires search, scoring and validation into one run.
type Orchestrator struct {
	searcher  Searcher
	scorer    Scorer
	validator Validator
	store     resume.Store
	completer ai.Completer
	logger    *zap.Logger
	cfg       Config

	now func() time.Time
}

func NewOrchestrator(searcher Searcher, scorer Scorer, validator Validator, store resume.Store, completer ai.Completer, logger *zap.Logger, cfg Config) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPerCompany <= 0 {
		cfg.MaxPerCompany = defaultMaxPerCompany
	}

	return &Orchestrator{
		searcher:  searcher,
		scorer:    scorer,
		validator: validator,
		store:     store,
		completer: completer,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func emptyOutcome() *Outcome {
	return &Outcome{
		Jobs:            &jobs.Jobs{},
		FilteredReasons: map[string]int{},
	}
}

// SearchAllCompanies runs the full pipeline: query building, search, match
// scoring and batch validation. A missing resume, empty company list or
// empty role list short-circuits to an empty outcome without touching any
// collaborator.
func (o *Orchestrator) SearchAllCompanies(ctx context.Context) (*Outcome, error) {
	resumeText, err := o.store.FullText(ctx)
	if err != nil {
		return nil, fmt.Errorf("load resume: %w", err)
	}

	if len(strings.TrimSpace(resumeText)) < minResumeChars {
		o.logger.Warn("resume missing or too short, skipping run",
			zap.Int("resume_length", len(resumeText)),
		)
		return emptyOutcome(), nil
	}
	if len(o.cfg.Companies) == 0 {
		o.logger.Warn("no companies configured, skipping run")
		return emptyOutcome(), nil
	}
	if len(o.cfg.Roles) == 0 {
		o.logger.Warn("no roles configured, skipping run")
		return emptyOutcome(), nil
	}

	discovered := &jobs.Jobs{}
	seen := make(map[string]struct{})
	queriesRun := 0

	for _, company := range o.cfg.Companies {
		queries := classify.BuildQueries(company, o.cfg.Roles, o.cfg.DateWindowDays, o.now())
		queriesRun += len(queries)

		results, err := o.searcher.SearchAll(ctx, queries, resultsPerQuery, o.cfg.Region, o.cfg.Language)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("search failed for company",
				zap.String("company", company),
				zap.Error(err),
			)
			continue
		}

		kept := 0
		for _, result := range results {
			if kept >= o.cfg.MaxPerCompany {
				break
			}
			if result.Link == "" {
				continue
			}
			if _, ok := seen[result.Link]; ok {
				continue
			}
			seen[result.Link] = struct{}{}

			job := &jobs.Job{
				Company:    company,
				Title:      result.Title,
				Link:       result.Link,
				Snippet:    result.Snippet,
				SearchRole: roleForTitle(result.Title, o.cfg.Roles),
				JobID:      classify.ExtractJobID(result.Link),
			}
			discovered.Add(job)
			kept++
		}

		o.logger.Info("company searched",
			zap.String("company", company),
			zap.Int("candidates", kept),
		)
	}

	for _, job := range discovered.Items {
		job.Match = o.scorer.Score(ctx, job, resumeText, o.cfg.UserExperience, o.cfg.Roles)
		o.logger.Debug("job scored",
			zap.String("company", job.Company),
			zap.String("link", job.Link),
			zap.Int("match_score", job.Match.MatchScore),
		)
	}

	validated := o.validator.ValidateBatch(ctx, discovered, o.cfg.Roles, o.cfg.UserExperience)
	validated.SortByMatchScore()

	outcome := &Outcome{
		Jobs:            validated,
		OriginalCount:   discovered.Len(),
		ValidatedCount:  validated.Len(),
		FilteredReasons: o.filteredReasons(discovered, validated),
		Stats: Stats{
			CompaniesSearched: len(o.cfg.Companies),
			QueriesRun:        queriesRun,
			Discovered:        discovered.Len(),
			Validated:         validated.Len(),
			AverageMatchScore: averageMatchScore(validated),
		},
	}

	o.logger.Info("search run complete",
		zap.Int("companies", outcome.Stats.CompaniesSearched),
		zap.Int("discovered", outcome.OriginalCount),
		zap.Int("validated", outcome.ValidatedCount),
	)

	return outcome, nil
}

// filteredReasons re-scans the dropped jobs against independent predicates.
// The categories overlap: one job can count toward several, so the values
// are informational and do not sum to the dropped count. The role-mismatch
// residual absorbs whatever the other predicates did not explain, floored
// at zero.
func (o *Orchestrator) filteredReasons(discovered, validated *jobs.Jobs) map[string]int {
	reasons := map[string]int{
		"invalid_url":         0,
		"not_india":           0,
		"experience_mismatch": 0,
		"low_confidence":      0,
		"role_mismatch":       0,
	}

	dropped := 0
	for _, job := range discovered.Items {
		if validated.FindByLink(job.Link) != nil {
			continue
		}
		dropped++

		if !classify.IsValidJobURL(job.Link) {
			reasons["invalid_url"]++
		}
		if !classify.IsIndianLocation(job.Title + " " + job.Snippet) {
			reasons["not_india"]++
		}
		if job.Match != nil && !job.Match.ExperienceMatch {
			reasons["experience_mismatch"]++
		}
		if job.Validation != nil && job.Validation.ConfidenceScore < confidenceThreshold {
			reasons["low_confidence"]++
		}
	}

	explained := reasons["invalid_url"] + reasons["not_india"] +
		reasons["experience_mismatch"] + reasons["low_confidence"]
	if residual := dropped - explained; residual > 0 {
		reasons["role_mismatch"] = residual
	}

	return reasons
}

func averageMatchScore(list *jobs.Jobs) float64 {
	if list.Len() == 0 {
		return 0
	}
	sum := 0
	for _, job := range list.Items {
		if job.Match != nil {
			sum += job.Match.MatchScore
		}
	}
	return float64(sum) / float64(list.Len())
}

func roleForTitle(title string, roles []string) string {
	lower := strings.ToLower(title)
	for _, role := range roles {
		if role != "" && strings.Contains(lower, strings.ToLower(role)) {
			return role
		}
	}
	return ""
}

// Recommendations asks the model for career advice over the top validated
// jobs. Failures come back as a message in the returned string, never as an
// error, so the action menu can always print something.
func (o *Orchestrator) Recommendations(ctx context.Context, list *jobs.Jobs) string {
	if list.Len() == 0 {
		return "No validated jobs to recommend."
	}

	top := list.Items
	if len(top) > recommendationsTop {
		top = top[:recommendationsTop]
	}

	var summary strings.Builder
	for _, job := range top {
		score := 0
		if job.Match != nil {
			score = job.Match.MatchScore
		}
		fmt.Fprintf(&summary, "- %s: %s (Score: %d)\n", job.Company, job.Title, score)
	}

	prompt := fmt.Sprintf(`Based on these job matches:
%s
Provide brief recommendations:
1. Top 3 jobs to apply for first
2. Skills to highlight in applications
3. One skill to develop for better matches`, summary.String())

	out, err := o.completer.Complete(ctx, ai.CompletionRequest{
		System:      recommendationsSystem,
		User:        prompt,
		Temperature: recommendationsTemperature,
		MaxTokens:   recommendationsMaxTokens,
	})
	if err != nil {
		o.logger.Warn("recommendations call failed", zap.Error(err))
		return fmt.Sprintf("Error generating recommendations: %v", err)
	}

	return strings.TrimSpace(out)
}
