package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vedank-s/job-scout/internal/jobs"
)

func exportFixture() *jobs.Jobs {
	list := &jobs.Jobs{}
	list.Add(&jobs.Job{
		Company: "Acme",
		Title:   "Senior Go Developer",
		Link:    "https://acme.example/careers/1",
		Match: &jobs.MatchAnalysis{
			MatchScore:         85,
			Recommendation:     jobs.RecommendationApply,
			RequiredExperience: "3-5 years",
		},
		Validation: &jobs.Verdict{ConfidenceScore: 90},
	})
	list.Add(&jobs.Job{
		Company: "Globex",
		Title:   "Backend Engineer",
		Link:    "https://globex.example/careers/2",
		Match: &jobs.MatchAnalysis{
			MatchScore:     61,
			Recommendation: jobs.RecommendationConsider,
		},
	})
	return list
}

func TestToExcelWritesWorkbook(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.xlsx")

	if err := ToExcel(exportFixture(), path, 4); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Ranked Jobs" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	company, err := f.GetCellValue("Ranked Jobs", "B2")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if company != "Acme" {
		t.Fatalf("expected Acme in first ranked row, got %q", company)
	}

	score, _ := f.GetCellValue("Ranked Jobs", "D3")
	if score != "61" {
		t.Fatalf("expected second row score 61, got %q", score)
	}

	validated, _ := f.GetCellValue("Summary", "B5")
	if validated != "2" {
		t.Fatalf("expected validated count 2, got %q", validated)
	}
}

func TestToExcelAppendsExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report")

	if err := ToExcel(exportFixture(), path, 4); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if _, err := excelize.OpenFile(path + ".xlsx"); err != nil {
		t.Fatalf("expected workbook at %s.xlsx: %v", path, err)
	}
}

func TestToExcelEmptyList(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.xlsx")

	if err := ToExcel(&jobs.Jobs{}, path, 0); err != nil {
		t.Fatalf("export of empty list failed: %v", err)
	}
}
