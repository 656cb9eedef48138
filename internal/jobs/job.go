package jobs

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
)

// Recommendation values commonly emitted by the match model. The field is an
// open enum: unknown values pass through and consumers treat them as
// non-fatal.
const (
	RecommendationApply    = "Apply"
	RecommendationConsider = "Consider"
	RecommendationSkip     = "Skip"
	RecommendationReview   = "Review"
	RecommendationError    = "Error"
)

// Job is one discovered posting. It lives for the duration of a single
// search run and is enriched in place: first with a match analysis, then
// with a validation verdict.
type Job struct {
	Company    string `json:"company"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Snippet    string `json:"snippet,omitempty"`
	SearchRole string `json:"search_role,omitempty"`
	JobID      string `json:"job_id,omitempty"`

	Match      *MatchAnalysis `json:"match_analysis,omitempty"`
	Validation *Verdict       `json:"validation,omitempty"`
}

// MatchAnalysis is the model's compatibility judgment between a job and the
// resume. The four required fields (score, both skill lists, recommendation)
// are always populated after scoring, even when the model call failed.
type MatchAnalysis struct {
	MatchScore         int      `json:"match_score"`
	MatchingSkills     []string `json:"matching_skills"`
	MissingSkills      []string `json:"missing_skills"`
	RequiredExperience string   `json:"required_experience,omitempty"`
	ExperienceMatch    bool     `json:"experience_match"`
	LocationIndia      bool     `json:"location_india"`
	Recommendation     string   `json:"recommendation"`
	Error              string   `json:"error,omitempty"`
}

// Verdict combines the structural validation outcome with the AI
// verification pass.
type Verdict struct {
	IsValid      bool     `json:"is_valid"`
	Issues       []string `json:"issues,omitempty"`
	QualityScore int      `json:"quality_score"`

	IsValidJob              bool   `json:"is_valid_job"`
	MatchesRole             bool   `json:"matches_role"`
	MatchesCompany          bool   `json:"matches_company"`
	IsIndiaLocation         bool   `json:"is_india_location"`
	ExperienceAppropriate   bool   `json:"experience_appropriate"`
	IsDirectLink            bool   `json:"is_direct_link"`
	RequiredExperienceRange string `json:"required_experience_range,omitempty"`
	ExperienceGap           int    `json:"experience_gap"`
	ConfidenceScore         int    `json:"confidence_score"`
	Reasoning               string `json:"reasoning,omitempty"`
	Error                   string `json:"error,omitempty"`

	FinalValid bool `json:"final_valid"`
}

// Combine derives the final accept decision from the verdict's other fields.
// FinalValid is never set directly; recomputing it must always reproduce the
// stored value.
func (v *Verdict) Combine() bool {
	return v.IsValid &&
		v.QualityScore >= 40 &&
		v.IsValidJob &&
		v.IsIndiaLocation &&
		v.ExperienceAppropriate &&
		v.ConfidenceScore >= 60
}

// Jobs is a collection of postings from one search run.
type Jobs struct {
	Items []*Job
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) Add(job *Job) {
	j.Items = append(j.Items, job)
}

func (j *Jobs) FindByLink(link string) *Job {
	for _, job := range j.Items {
		if job.Link == link {
			return job
		}
	}
	return nil
}

// SortByMatchScore orders jobs by match score, highest first. Jobs without
// an analysis sort last. The sort is stable so the discovery order breaks
// ties deterministically.
func (j *Jobs) SortByMatchScore() {
	sort.SliceStable(j.Items, func(a, b int) bool {
		return j.Items[a].matchScore() > j.Items[b].matchScore()
	})
}

// FilterByMinScore returns jobs at or above the display threshold. The
// original list is left untouched; the threshold is presentational and does
// not affect validation.
func (j *Jobs) FilterByMinScore(min int) *Jobs {
	filtered := &Jobs{}
	for _, job := range j.Items {
		if job.matchScore() >= min {
			filtered.Add(job)
		}
	}
	return filtered
}

func (job *Job) matchScore() int {
	if job.Match == nil {
		return 0
	}
	return job.Match.MatchScore
}

// DumpToTmpFile writes the full collection as indented JSON to a temp file
// and returns the file name.
func (j *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "job_scout_results_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups the collection for display, one entry per posting
// under its company.
func (j *Jobs) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range j.Items {
		entry := map[string]string{
			"title": job.Title,
			"link":  job.Link,
		}
		if job.JobID != "" {
			entry["job_id"] = job.JobID
		}
		if job.Match != nil {
			entry["match_score"] = strconv.Itoa(job.Match.MatchScore)
			entry["recommendation"] = job.Match.Recommendation
			if job.Match.Error != "" {
				entry["match_error"] = job.Match.Error
			}
		}
		if job.Validation != nil {
			entry["confidence_score"] = strconv.Itoa(job.Validation.ConfidenceScore)
		}
		report[job.Company] = append(report[job.Company], entry)
	}
	return report
}
