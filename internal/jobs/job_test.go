package jobs

import (
	"strings"
	"testing"
)

func TestCombineIsPure(t *testing.T) {
	t.Parallel()

	v := &Verdict{
		IsValid:               true,
		QualityScore:          85,
		IsValidJob:            true,
		IsIndiaLocation:       true,
		ExperienceAppropriate: true,
		ConfidenceScore:       75,
	}

	first := v.Combine()
	if !first {
		t.Fatal("expected verdict to combine to true")
	}

	v.FinalValid = first
	if v.Combine() != v.FinalValid {
		t.Fatal("recomputing the combination must reproduce the stored value")
	}
}

func TestCombineThresholds(t *testing.T) {
	t.Parallel()

	base := Verdict{
		IsValid:               true,
		QualityScore:          100,
		IsValidJob:            true,
		IsIndiaLocation:       true,
		ExperienceAppropriate: true,
		ConfidenceScore:       100,
	}

	tests := []struct {
		name   string
		mutate func(*Verdict)
		want   bool
	}{
		{name: "all pass", mutate: func(*Verdict) {}, want: true},
		{name: "quality at boundary", mutate: func(v *Verdict) { v.QualityScore = 40 }, want: true},
		{name: "quality below boundary", mutate: func(v *Verdict) { v.QualityScore = 39 }, want: false},
		{name: "confidence at boundary", mutate: func(v *Verdict) { v.ConfidenceScore = 60 }, want: true},
		{name: "confidence below boundary", mutate: func(v *Verdict) { v.ConfidenceScore = 59 }, want: false},
		{name: "structurally invalid", mutate: func(v *Verdict) { v.IsValid = false }, want: false},
		{name: "not india", mutate: func(v *Verdict) { v.IsIndiaLocation = false }, want: false},
		{name: "experience inappropriate", mutate: func(v *Verdict) { v.ExperienceAppropriate = false }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := base
			tt.mutate(&v)
			if got := v.Combine(); got != tt.want {
				t.Fatalf("Combine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortByMatchScore(t *testing.T) {
	t.Parallel()

	list := &Jobs{Items: []*Job{
		{Title: "low", Match: &MatchAnalysis{MatchScore: 20}},
		{Title: "unscored"},
		{Title: "high", Match: &MatchAnalysis{MatchScore: 90}},
		{Title: "mid", Match: &MatchAnalysis{MatchScore: 55}},
	}}

	list.SortByMatchScore()

	got := []string{list.Items[0].Title, list.Items[1].Title, list.Items[2].Title, list.Items[3].Title}
	want := []string{"high", "mid", "low", "unscored"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", got, want)
		}
	}
}

func TestFilterByMinScore(t *testing.T) {
	t.Parallel()

	list := &Jobs{Items: []*Job{
		{Title: "keep", Match: &MatchAnalysis{MatchScore: 40}},
		{Title: "drop", Match: &MatchAnalysis{MatchScore: 39}},
		{Title: "unscored"},
	}}

	filtered := list.FilterByMinScore(40)

	if filtered.Len() != 1 || filtered.Items[0].Title != "keep" {
		t.Fatalf("unexpected filter result: %+v", filtered.Items)
	}

	if list.Len() != 3 {
		t.Fatalf("original list must stay untouched, got %d items", list.Len())
	}
}

func TestFindByLink(t *testing.T) {
	t.Parallel()

	list := &Jobs{Items: []*Job{
		{Link: "https://a.example/jobs/1"},
		{Link: "https://b.example/jobs/2"},
	}}

	if job := list.FindByLink("https://b.example/jobs/2"); job == nil {
		t.Fatal("expected to find job by link")
	}

	if job := list.FindByLink("https://c.example/jobs/3"); job != nil {
		t.Fatal("expected nil for unknown link")
	}
}

func TestValidationReportAccuracy(t *testing.T) {
	t.Parallel()

	empty := &ValidationReport{}
	if rate := empty.AccuracyRate(); rate != 0 {
		t.Fatalf("expected 0 accuracy for empty run, got %v", rate)
	}

	r := &ValidationReport{OriginalCount: 8, ValidatedCount: 2}
	if rate := r.AccuracyRate(); rate != 25 {
		t.Fatalf("expected 25, got %v", rate)
	}
}

func TestValidationReportRender(t *testing.T) {
	t.Parallel()

	r := &ValidationReport{
		OriginalCount:  10,
		ValidatedCount: 4,
		FilteredReasons: map[string]int{
			"Invalid or suspicious URL": 2,
			"Location not in India":     0,
		},
	}

	text := r.Render(5)

	if !strings.Contains(text, "Original jobs found: 10") {
		t.Fatalf("missing original count: %s", text)
	}
	if !strings.Contains(text, "Invalid or suspicious URL: 2 jobs") {
		t.Fatalf("missing reason line: %s", text)
	}
	if strings.Contains(text, "Location not in India") {
		t.Fatalf("zero-count reasons must be omitted: %s", text)
	}
	if !strings.Contains(text, "40.0%") {
		t.Fatalf("missing accuracy: %s", text)
	}
	if !strings.Contains(text, "5 years experience (±2 years tolerance)") {
		t.Fatalf("missing experience filtering note: %s", text)
	}
}

func TestReportByCompany(t *testing.T) {
	t.Parallel()

	list := &Jobs{Items: []*Job{
		{
			Company: "Acme",
			Title:   "Go Developer",
			Link:    "https://acme.example/jobs/1",
			JobID:   "JOB-123456",
			Match:   &MatchAnalysis{MatchScore: 80, Recommendation: RecommendationApply},
		},
		{
			Company: "Acme",
			Title:   "Data Engineer",
			Link:    "https://acme.example/jobs/2",
			Match:   &MatchAnalysis{Recommendation: RecommendationError, Error: "quota exceeded"},
		},
	}}

	report := list.ReportByCompany()

	entries := report["Acme"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for Acme, got %d", len(entries))
	}

	if entries[0]["match_score"] != "80" || entries[0]["recommendation"] != RecommendationApply {
		t.Fatalf("unexpected first entry: %v", entries[0])
	}

	if entries[1]["match_error"] != "quota exceeded" {
		t.Fatalf("expected match_error carried through, got %v", entries[1])
	}
}
