package validation

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
	verifyTemperature = 0.2
	verifyMaxTokens   = 350

	verifySystemPrompt = "You are a job validation expert specializing in experience-level matching. Always respond with valid JSON only."

	// Structural scores below this are not worth a model call.
	qualityCutoff = 40

	// Experience gaps beyond this veto a job unless the model asserted
	// the experience is appropriate anyway.
	maxExperienceGap = 2

	snippetPromptBudget = 500

	defaultMaxLogLength = 200
)

// Fixed penalties applied by the structural gate.
const (
	penaltyURL         = 30
	penaltyCompany     = 20
	penaltyTitle       = 25
	penaltySnippet     = 15
	penaltyLocation    = 10
	penaltyTooJunior   = 20
	penaltyTooSenior   = 15
	minTitleLength     = 5
	minSnippetLength   = 50
	shortfallTolerance = 1
	overshootTolerance = 3
)

// Agent re-checks scored jobs with a deterministic structural gate and an
// independent model verification pass, then combines both into the final
// accept decision.
type Agent struct {
	completer ai.Completer
	logger    *zap.Logger
	maxLogLen int
}

func NewAgent(completer ai.Completer, logger *zap.Logger, maxLogLength int) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Agent{
		completer: completer,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// ValidateJobData runs the deterministic structural checks. The quality
// score starts at 100, drops by a fixed penalty per issue and is not
// floored at zero. Only the URL check flips the validity flag.
func (a *Agent) ValidateJobData(job *jobs.Job, userExperience int) *jobs.Verdict {
	verdict := &jobs.Verdict{
		IsValid:      true,
		QualityScore: 100,
		Issues:       []string{},
	}

	if !classify.IsValidJobURL(job.Link) {
		verdict.IsValid = false
		verdict.Issues = append(verdict.Issues, "Invalid or missing job URL")
		verdict.QualityScore -= penaltyURL
	}

	if strings.TrimSpace(job.Company) == "" || job.Company == "N/A" {
		verdict.Issues = append(verdict.Issues, "Missing company name")
		verdict.QualityScore -= penaltyCompany
	}

	if strings.TrimSpace(job.Title) == "" || job.Title == "N/A" || len(job.Title) < minTitleLength {
		verdict.Issues = append(verdict.Issues, "Invalid or too short job title")
		verdict.QualityScore -= penaltyTitle
	}

	if len(job.Snippet) < minSnippetLength {
		verdict.Issues = append(verdict.Issues, "Insufficient job description")
		verdict.QualityScore -= penaltySnippet
	}

	text := job.Snippet + " " + job.Title
	if strings.TrimSpace(text) != "" && !classify.IsIndianLocation(text) {
		verdict.Issues = append(verdict.Issues, "Job location may not be in India")
		verdict.QualityScore -= penaltyLocation
	}

	if job.Match != nil && !job.Match.ExperienceMatch {
		min, max := classify.ExtractExperienceYears(job.Match.RequiredExperience)
		if min > 0 {
			switch {
			case userExperience < min-shortfallTolerance:
				verdict.Issues = append(verdict.Issues,
					fmt.Sprintf("Required %d+ years, user has %d years", min, userExperience))
				verdict.QualityScore -= penaltyTooJunior
			case userExperience > max+overshootTolerance:
				verdict.Issues = append(verdict.Issues,
					fmt.Sprintf("Job may be too junior (requires %d-%d years)", min, max))
				verdict.QualityScore -= penaltyTooSenior
			}
		}
	}

	return verdict
}

// verifyPayload mirrors the verification prompt's schema. Pointers tell a
// missing field apart from an explicit false/zero.
type verifyPayload struct {
	IsValidJob              *bool  `json:"is_valid_job"`
	MatchesRole             *bool  `json:"matches_role"`
	MatchesCompany          *bool  `json:"matches_company"`
	IsIndiaLocation         *bool  `json:"is_india_location"`
	ExperienceAppropriate   *bool  `json:"experience_appropriate"`
	RequiredExperienceRange string `json:"required_experience_range"`
	ExperienceGap           *int   `json:"experience_gap"`
	IsDirectLink            *bool  `json:"is_direct_link"`
	ConfidenceScore         *int   `json:"confidence_score"`
	Reasoning               string `json:"reasoning"`
}

// AIVerification is the model's half of the verdict.
type AIVerification struct {
	IsValidJob              bool
	MatchesRole             bool
	MatchesCompany          bool
	IsIndiaLocation         bool
	ExperienceAppropriate   bool
	IsDirectLink            bool
	RequiredExperienceRange string
	ExperienceGap           int
	ConfidenceScore         int
	Reasoning               string
	Error                   string
}

// VerifyWithAI runs the second model pass for one job. Transport and parse
// failures degrade to a permissive default so a validator outage alone never
// discards a job; only deterministic gates stay strict.
func (a *Agent) VerifyWithAI(ctx context.Context, job *jobs.Job, rolesLabel string, userExperience int) *AIVerification {
	prompt := a.buildPrompt(job, rolesLabel, userExperience)

	a.logger.Debug("ai verification request",
		zap.String("link", job.Link),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.completer.Complete(ctx, ai.CompletionRequest{
		System:      verifySystemPrompt,
		User:        prompt,
		Temperature: verifyTemperature,
		MaxTokens:   verifyMaxTokens,
	})
	if err != nil {
		a.logger.Warn("ai verification call failed",
			zap.String("link", job.Link),
			zap.Error(err),
		)
		return optimisticDefault(err)
	}

	a.logger.Debug("ai verification response",
		zap.String("link", job.Link),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	payload, err := ai.DecodeOrDefault(raw, verifyPayload{})
	if err != nil {
		return optimisticDefault(err)
	}

	verification := &AIVerification{
		IsValidJob:              boolOr(payload.IsValidJob, false),
		MatchesRole:             boolOr(payload.MatchesRole, false),
		MatchesCompany:          boolOr(payload.MatchesCompany, false),
		IsIndiaLocation:         boolOr(payload.IsIndiaLocation, false),
		ExperienceAppropriate:   boolOr(payload.ExperienceAppropriate, false),
		IsDirectLink:            boolOr(payload.IsDirectLink, false),
		RequiredExperienceRange: strings.TrimSpace(payload.RequiredExperienceRange),
		Reasoning:               strings.TrimSpace(payload.Reasoning),
	}

	if payload.ConfidenceScore != nil {
		verification.ConfidenceScore = *payload.ConfidenceScore
	}

	if payload.ExperienceGap != nil {
		verification.ExperienceGap = *payload.ExperienceGap
	} else {
		min, _ := classify.ExtractExperienceYears(verification.RequiredExperienceRange)
		if min > 0 {
			verification.ExperienceGap = userExperience - min
		}
	}

	return verification
}

func optimisticDefault(err error) *AIVerification {
	return &AIVerification{
		IsValidJob:              true,
		MatchesRole:             true,
		MatchesCompany:          true,
		IsIndiaLocation:         true,
		ExperienceAppropriate:   true,
		IsDirectLink:            true,
		RequiredExperienceRange: "Not specified",
		ConfidenceScore:         50,
		Reasoning:               "Validation error",
		Error:                   err.Error(),
	}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// ValidateBatch runs the full two-gate pipeline per job, independently, and
// returns only the jobs whose combined verdict is final-valid. Each returned
// job carries its verdict.
func (a *Agent) ValidateBatch(ctx context.Context, list *jobs.Jobs, roles []string, userExperience int) *jobs.Jobs {
	validated := &jobs.Jobs{}
	initial := list.Len()
	rolesLabel := strings.Join(roles, ", ")

	for _, job := range list.Items {
		if !matchesAnyRole(job.Title, roles) {
			continue
		}

		structural := a.ValidateJobData(job, userExperience)
		if structural.QualityScore < qualityCutoff {
			a.logger.Debug("skipping job below quality cutoff",
				zap.String("link", job.Link),
				zap.Int("quality_score", structural.QualityScore),
			)
			continue
		}

		verification := a.VerifyWithAI(ctx, job, rolesLabel, userExperience)

		if abs(verification.ExperienceGap) > maxExperienceGap && !verification.ExperienceAppropriate {
			a.logger.Debug("discarding job for experience gap",
				zap.String("link", job.Link),
				zap.Int("experience_gap", verification.ExperienceGap),
			)
			continue
		}

		verdict := merge(structural, verification)
		verdict.FinalValid = verdict.Combine()
		job.Validation = verdict

		if verdict.FinalValid {
			validated.Add(job)
		}
	}

	a.logger.Info("validation batch complete",
		zap.Int("initial", initial),
		zap.Int("dropped", initial-validated.Len()),
		zap.Int("left", validated.Len()),
	)

	return validated
}

func merge(structural *jobs.Verdict, verification *AIVerification) *jobs.Verdict {
	verdict := *structural
	verdict.IsValidJob = verification.IsValidJob
	verdict.MatchesRole = verification.MatchesRole
	verdict.MatchesCompany = verification.MatchesCompany
	verdict.IsIndiaLocation = verification.IsIndiaLocation
	verdict.ExperienceAppropriate = verification.ExperienceAppropriate
	verdict.IsDirectLink = verification.IsDirectLink
	verdict.RequiredExperienceRange = verification.RequiredExperienceRange
	verdict.ExperienceGap = verification.ExperienceGap
	verdict.ConfidenceScore = verification.ConfidenceScore
	verdict.Reasoning = verification.Reasoning
	verdict.Error = verification.Error
	return &verdict
}

func matchesAnyRole(title string, roles []string) bool {
	lower := strings.ToLower(title)
	for _, role := range roles {
		if role == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(role)) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Report renders the aggregate outcome of one validation run.
func (a *Agent) Report(originalCount, validatedCount int, filteredReasons map[string]int, userExperience int) string {
	report := &jobs.ValidationReport{
		OriginalCount:   originalCount,
		ValidatedCount:  validatedCount,
		FilteredReasons: filteredReasons,
	}
	return report.Render(userExperience)
}

func (a *Agent) buildPrompt(job *jobs.Job, rolesLabel string, userExperience int) string {
	snippet := job.Snippet
	if runes := []rune(snippet); len(runes) > snippetPromptBudget {
		snippet = string(runes[:snippetPromptBudget])
	}

	var b strings.Builder
	b.WriteString("You are a job validation expert. Analyze this job posting and verify if it matches the candidate's profile.\n\n")
	b.WriteString("Candidate Profile:\n")
	fmt.Fprintf(&b, "- Experience: %d years\n", userExperience)
	fmt.Fprintf(&b, "- Target Roles: %s\n\n", rolesLabel)
	b.WriteString("Job Details:\n")
	fmt.Fprintf(&b, "- Company: %s\n", job.Company)
	fmt.Fprintf(&b, "- Title: %s\n", job.Title)
	fmt.Fprintf(&b, "- URL: %s\n", job.Link)
	fmt.Fprintf(&b, "- Description: %s\n\n", snippet)
	b.WriteString("Verify these criteria:\n")
	b.WriteString("1. Is this a REAL job posting (not a generic career page)?\n")
	fmt.Fprintf(&b, "2. Does the role match: %q?\n", rolesLabel)
	fmt.Fprintf(&b, "3. Is it from company: %q?\n", job.Company)
	b.WriteString("4. Is the location in India?\n")
	fmt.Fprintf(&b, "5. MOST IMPORTANT: Does the required experience match %d years (allow ±2 years tolerance)?\n", userExperience)
	b.WriteString("6. Is the URL a direct job application link?\n\n")
	b.WriteString(`Return JSON with this format:
{
    "is_valid_job": true,
    "matches_role": true,
    "matches_company": true,
    "is_india_location": true,
    "experience_appropriate": true,
    "required_experience_range": "2-5 years",
    "experience_gap": 0,
    "is_direct_link": true,
    "confidence_score": 85,
    "reasoning": "Brief explanation focusing on experience match"
}`)

	return b.String()
}
