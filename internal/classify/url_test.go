package classify

import (
	"strings"
	"testing"
)

func TestIsValidJobURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		link  string
		valid bool
	}{
		{
			name:  "careers path",
			link:  "https://example.com/careers/123",
			valid: true,
		},
		{
			name:  "plain page without keywords",
			link:  "https://example.com/about",
			valid: false,
		},
		{
			name:  "wrong scheme",
			link:  "ftp://x.com/job",
			valid: false,
		},
		{
			name:  "missing scheme",
			link:  "example.com/jobs/1",
			valid: false,
		},
		{
			name:  "empty",
			link:  "",
			valid: false,
		},
		{
			name:  "keyword in query string",
			link:  "http://portal.example.com/view?type=vacancy",
			valid: true,
		},
		{
			name:  "apply keyword",
			link:  "https://boards.example.com/acme/apply/42",
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsValidJobURL(tt.link); got != tt.valid {
				t.Fatalf("IsValidJobURL(%q) = %v, want %v", tt.link, got, tt.valid)
			}
		})
	}
}

func TestExtractJobID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "linkedin",
			link: "https://www.linkedin.com/jobs/view/3912345678",
			want: "LI-3912345678",
		},
		{
			name: "indeed",
			link: "https://in.indeed.com/viewjob?jk=abc123def456",
			want: "IN-abc123def456",
		},
		{
			name: "naukri slug truncated",
			link: "https://www.naukri.com/job-listings-senior-backend-engineer-pune-123",
			want: "NK-senior-backend-",
		},
		{
			name: "glassdoor",
			link: "https://www.glassdoor.co.in/job-listing/engineer-JV_IC1234567.htm",
			want: "GD-1234567",
		},
		{
			name: "generic digit run",
			link: "https://careers.example.com/postings/9876543",
			want: "JOB-9876543",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractJobID(tt.link); got != tt.want {
				t.Fatalf("ExtractJobID(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestExtractJobIDHashFallback(t *testing.T) {
	t.Parallel()

	link := "https://example.com/some-opening"
	first := ExtractJobID(link)
	second := ExtractJobID(link)

	if first != second {
		t.Fatalf("expected deterministic id, got %q and %q", first, second)
	}

	if !strings.HasPrefix(first, "ID-") {
		t.Fatalf("expected hash fallback prefix, got %q", first)
	}

	if len(first) != len("ID-")+8 {
		t.Fatalf("expected 8 hex chars after prefix, got %q", first)
	}
}

func TestIsIndianLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "country mention", text: "Remote, India", want: true},
		{name: "city mention", text: "Office in Bengaluru, hybrid", want: true},
		{name: "mixed case", text: "PUNE location preferred", want: true},
		{name: "no mention", text: "Based in Berlin, Germany", want: false},
		{name: "empty", text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsIndianLocation(tt.text); got != tt.want {
				t.Fatalf("IsIndianLocation(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
