package jobs

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationReport aggregates one validation run. FilteredReasons is
// informational: the categories overlap and their sum is not reconciled
// against the filtered count.
type ValidationReport struct {
	OriginalCount   int
	ValidatedCount  int
	FilteredReasons map[string]int
}

// AccuracyRate is the share of discovered jobs that survived validation,
// in percent. Zero when nothing was discovered.
func (r *ValidationReport) AccuracyRate() float64 {
	if r.OriginalCount == 0 {
		return 0
	}
	return float64(r.ValidatedCount) / float64(r.OriginalCount) * 100
}

// Render formats the report for display.
func (r *ValidationReport) Render(userExperience int) string {
	var b strings.Builder

	b.WriteString("### Validation Report\n\n")
	fmt.Fprintf(&b, "Candidate experience level: %d years\n\n", userExperience)
	fmt.Fprintf(&b, "Original jobs found: %d\n", r.OriginalCount)
	fmt.Fprintf(&b, "Jobs after validation: %d\n", r.ValidatedCount)
	fmt.Fprintf(&b, "Jobs filtered out: %d\n", r.OriginalCount-r.ValidatedCount)

	reasons := make([]string, 0, len(r.FilteredReasons))
	for reason, count := range r.FilteredReasons {
		if count > 0 {
			reasons = append(reasons, reason)
		}
	}
	sort.Strings(reasons)

	if len(reasons) > 0 {
		b.WriteString("\nFiltering reasons:\n")
		for _, reason := range reasons {
			fmt.Fprintf(&b, "- %s: %d jobs\n", reason, r.FilteredReasons[reason])
		}
	}

	fmt.Fprintf(&b, "\nValidation accuracy: %.1f%%\n", r.AccuracyRate())

	b.WriteString("\nExperience filtering:\n")
	fmt.Fprintf(&b, "- Jobs matched to %d years experience (±2 years tolerance)\n", userExperience)
	b.WriteString("- Too junior or too senior positions filtered out\n")

	return b.String()
}
