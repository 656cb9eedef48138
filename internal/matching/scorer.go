package matching

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/vedank-s/job-scout/internal/ai"
	"github.com/vedank-s/job-scout/internal/classify"
	"github.com/vedank-s/job-scout/internal/jobs"
	"github.com/vedank-s/job-scout/internal/utils"
)

const (
	// resumeBudget caps how much resume text goes into each prompt. The
	// cut is a hard character cut, not sentence-aware.
	resumeBudget = 1500

	scoreTemperature = 0.3
	scoreMaxTokens   = 300

	systemPrompt = "You are a job matching expert. Always respond with valid JSON only."

	defaultMaxLogLength = 200
)

// Scorer produces a match analysis per job with one model call. It never
// returns an error: a failed call degrades to a default verdict so batch
// processing continues.
type Scorer struct {
	completer ai.Completer
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(completer ai.Completer, logger *zap.Logger, maxLogLength int) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		completer: completer,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// matchPayload mirrors the prompt's schema. Pointer fields distinguish
// "model omitted it" from a false/zero answer.
type matchPayload struct {
	MatchScore         *int     `json:"match_score"`
	MatchingSkills     []string `json:"matching_skills"`
	MissingSkills      []string `json:"missing_skills"`
	RequiredExperience string   `json:"required_experience"`
	ExperienceMatch    *bool    `json:"experience_match"`
	LocationIndia      *bool    `json:"location_india"`
	Recommendation     string   `json:"recommendation"`
}

// Score compares one job against the resume. The returned analysis always
// carries the four required fields, defaulted when the model misbehaved.
func (s *Scorer) Score(ctx context.Context, job *jobs.Job, resumeText string, userExperience int, targetRoles []string) *jobs.MatchAnalysis {
	prompt := s.buildPrompt(job, resumeText, userExperience, targetRoles)

	s.logger.Debug("match scoring request",
		zap.String("link", job.Link),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.completer.Complete(ctx, ai.CompletionRequest{
		System:      systemPrompt,
		User:        prompt,
		Temperature: scoreTemperature,
		MaxTokens:   scoreMaxTokens,
	})
	if err != nil {
		s.logger.Warn("match scoring call failed",
			zap.String("link", job.Link),
			zap.Error(err),
		)
		return s.finalize(job, userExperience, &jobs.MatchAnalysis{
			MatchScore:     0,
			MatchingSkills: []string{},
			MissingSkills:  []string{},
			Recommendation: jobs.RecommendationError,
			Error:          err.Error(),
		})
	}

	s.logger.Debug("match scoring response",
		zap.String("link", job.Link),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	payload, err := ai.DecodeOrDefault(raw, matchPayload{})
	if err != nil {
		return s.finalize(job, userExperience, &jobs.MatchAnalysis{
			MatchScore:     50,
			MatchingSkills: []string{},
			MissingSkills:  []string{},
			Recommendation: jobs.RecommendationReview,
			Error:          fmt.Sprintf("JSON parse error: %v", err),
		})
	}

	if payload.MatchScore == nil || payload.MatchingSkills == nil ||
		payload.MissingSkills == nil || payload.Recommendation == "" {
		return s.finalize(job, userExperience, &jobs.MatchAnalysis{
			MatchScore:     50,
			MatchingSkills: []string{},
			MissingSkills:  []string{},
			Recommendation: jobs.RecommendationReview,
		})
	}

	analysis := &jobs.MatchAnalysis{
		MatchScore:         *payload.MatchScore,
		MatchingSkills:     payload.MatchingSkills,
		MissingSkills:      payload.MissingSkills,
		RequiredExperience: strings.TrimSpace(payload.RequiredExperience),
		Recommendation:     strings.TrimSpace(payload.Recommendation),
	}

	if payload.ExperienceMatch != nil {
		analysis.ExperienceMatch = *payload.ExperienceMatch
	}
	if payload.LocationIndia != nil {
		analysis.LocationIndia = *payload.LocationIndia
	}

	return s.backfill(job, userExperience, analysis,
		payload.ExperienceMatch == nil, payload.LocationIndia == nil)
}

// finalize applies the deterministic backfills to a defaulted analysis.
func (s *Scorer) finalize(job *jobs.Job, userExperience int, analysis *jobs.MatchAnalysis) *jobs.MatchAnalysis {
	return s.backfill(job, userExperience, analysis, true, true)
}

func (s *Scorer) backfill(job *jobs.Job, userExperience int, analysis *jobs.MatchAnalysis, fillExperienceMatch, fillLocation bool) *jobs.MatchAnalysis {
	if analysis.RequiredExperience == "" {
		min, max := classify.ExtractExperienceYears(job.Snippet)
		analysis.RequiredExperience = classify.FormatExperienceRange(min, max)
	}

	if fillExperienceMatch {
		min, _ := classify.ExtractExperienceYears(analysis.RequiredExperience)
		analysis.ExperienceMatch = userExperience >= min
	}

	if fillLocation {
		analysis.LocationIndia = classify.IsIndianLocation(job.Title + " " + job.Snippet)
	}

	return analysis
}

func (s *Scorer) buildPrompt(job *jobs.Job, resumeText string, userExperience int, targetRoles []string) string {
	resume := resumeText
	if runes := []rune(resume); len(runes) > resumeBudget {
		resume = string(runes[:resumeBudget])
	}

	var b strings.Builder
	b.WriteString("Analyze this job against the candidate's resume. Be concise and return valid JSON only.\n\n")
	fmt.Fprintf(&b, "Job Title: %s\n", job.Title)
	fmt.Fprintf(&b, "Job Description: %s\n", job.Snippet)
	fmt.Fprintf(&b, "Job URL: %s\n", job.Link)
	fmt.Fprintf(&b, "Target Roles: %s\n", strings.Join(targetRoles, ", "))
	fmt.Fprintf(&b, "Candidate Experience: %d years\n", userExperience)
	fmt.Fprintf(&b, "Resume: %s\n\n", resume)
	b.WriteString(`Return JSON in this exact format:
{
    "match_score": 75,
    "matching_skills": ["Python", "AI"],
    "missing_skills": ["Docker"],
    "required_experience": "2-5 years",
    "experience_match": true,
    "location_india": true,
    "recommendation": "Apply"
}`)

	return b.String()
}
