package classify

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// jobKeywords must appear somewhere in a URL for it to count as a job link.
// A well-formed URL without any of them is rejected on purpose: precision
// over recall.
var jobKeywords = []string{"job", "career", "position", "vacancy", "opening", "hiring", "apply"}

var indianCities = []string{
	"mumbai", "delhi", "bangalore", "bengaluru", "hyderabad",
	"chennai", "pune", "kolkata", "ahmedabad", "gurgaon",
	"gurugram", "noida", "jaipur", "kochi", "chandigarh",
}

var (
	linkedinIDPattern  = regexp.MustCompile(`linkedin\.com/jobs/view/(\d+)`)
	indeedIDPattern    = regexp.MustCompile(`[?&]jk=([A-Za-z0-9]+)`)
	naukriSlugPattern  = regexp.MustCompile(`naukri\.com/(?:job-listings-)?([A-Za-z0-9-]+)`)
	glassdoorIDPattern = regexp.MustCompile(`glassdoor\.[a-z.]+/.*?(\d+)\.htm`)
	genericIDPattern   = regexp.MustCompile(`(\d{6,})`)
)

const naukriSlugMax = 15

// IsValidJobURL reports whether the link is an absolute http(s) URL that
// looks like a job posting.
func IsValidJobURL(link string) bool {
	link = strings.TrimSpace(link)
	if link == "" {
		return false
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	if parsed.Host == "" {
		return false
	}

	lower := strings.ToLower(link)
	for _, keyword := range jobKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return false
}

// ExtractJobID derives a short display identifier from a job URL. Portal
// rules are tried in order and the first match wins. IDs are not unique
// across URLs; collisions are acceptable.
func ExtractJobID(link string) string {
	lower := strings.ToLower(strings.TrimSpace(link))

	if m := linkedinIDPattern.FindStringSubmatch(lower); m != nil {
		return "LI-" + m[1]
	}

	if m := indeedIDPattern.FindStringSubmatch(lower); m != nil {
		return "IN-" + m[1]
	}

	if m := naukriSlugPattern.FindStringSubmatch(lower); m != nil {
		slug := m[1]
		if len(slug) > naukriSlugMax {
			slug = slug[:naukriSlugMax]
		}
		return "NK-" + slug
	}

	if m := glassdoorIDPattern.FindStringSubmatch(lower); m != nil {
		return "GD-" + m[1]
	}

	if m := genericIDPattern.FindStringSubmatch(lower); m != nil {
		return "JOB-" + m[1]
	}

	sum := sha256.Sum256([]byte(link))
	return fmt.Sprintf("ID-%x", sum[:4])
}

// IsIndianLocation reports whether the text mentions India or one of the
// known Indian cities. Substring matching accepts the occasional false
// positive from a city name inside an unrelated word.
func IsIndianLocation(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "india") {
		return true
	}

	for _, city := range indianCities {
		if strings.Contains(lower, city) {
			return true
		}
	}

	return false
}
