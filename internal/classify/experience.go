package classify

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	expRangePattern  = regexp.MustCompile(`(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\s*\+?\s*(?:years?|yrs?)`)
	expSinglePattern = regexp.MustCompile(`(\d{1,2})\s*\+?\s*(?:years?|yrs?)`)
)

var entryLevelMarkers = []string{"fresher", "entry level", "graduate"}

// singleValueBand widens a single-value requirement ("5+ years") into a
// range; the upper bound is a heuristic, not a parsed value.
const singleValueBand = 5

// ExtractExperienceYears parses a minimum/maximum years-of-experience range
// out of free text. (0, 0) means "unknown", not "zero years required".
func ExtractExperienceYears(text string) (int, int) {
	lower := strings.ToLower(text)

	if m := expRangePattern.FindStringSubmatch(lower); m != nil {
		min, _ := strconv.Atoi(m[1])
		max, _ := strconv.Atoi(m[2])
		return min, max
	}

	if m := expSinglePattern.FindStringSubmatch(lower); m != nil {
		min, _ := strconv.Atoi(m[1])
		return min, min + singleValueBand
	}

	for _, marker := range entryLevelMarkers {
		if strings.Contains(lower, marker) {
			return 0, 2
		}
	}

	return 0, 0
}

// FormatExperienceRange renders a parsed range the way prompts and verdicts
// expect it, with "Not specified" for the unknown range.
func FormatExperienceRange(min, max int) string {
	if min == 0 && max == 0 {
		return "Not specified"
	}
	return strconv.Itoa(min) + "-" + strconv.Itoa(max) + " years"
}
