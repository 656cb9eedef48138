package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vedank-s/job-scout/internal/jobs"
)

const (
	summarySheet = "Summary"
	jobsSheet    = "Ranked Jobs"
)

// ToExcel writes the validated jobs as an xlsx workbook: a Summary sheet
// with run statistics and a Ranked Jobs sheet in match-score order. The
// list is expected to be sorted already.
func ToExcel(list *jobs.Jobs, outputPath string, userExperience int) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(jobsSheet); err != nil {
		return fmt.Errorf("create jobs sheet: %w", err)
	}

	if err := writeSummarySheet(f, list, userExperience); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeJobsSheet(f, list); err != nil {
		return fmt.Errorf("write jobs sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, list *jobs.Jobs, userExperience int) error {
	f.SetColWidth(summarySheet, "A", "A", 28)
	f.SetColWidth(summarySheet, "B", "B", 40)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(summarySheet, cell("A", row), "Job Search Report")
	f.SetCellStyle(summarySheet, cell("A", row), cell("B", row), headerStyle)
	f.MergeCell(summarySheet, cell("A", row), cell("B", row))
	row += 2

	write := func(label string, value any) {
		f.SetCellValue(summarySheet, cell("A", row), label)
		f.SetCellStyle(summarySheet, cell("A", row), cell("A", row), labelStyle)
		f.SetCellValue(summarySheet, cell("B", row), value)
		row++
	}

	write("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	write("Candidate experience:", fmt.Sprintf("%d years", userExperience))
	write("Validated jobs:", list.Len())

	companies := make(map[string]struct{})
	sum := 0
	for _, job := range list.Items {
		companies[job.Company] = struct{}{}
		if job.Match != nil {
			sum += job.Match.MatchScore
		}
	}
	write("Companies with matches:", len(companies))

	if list.Len() > 0 {
		write("Average match score:", fmt.Sprintf("%.1f", float64(sum)/float64(list.Len())))
	}

	return nil
}

func writeJobsSheet(f *excelize.File, list *jobs.Jobs) error {
	widths := map[string]float64{
		"A": 8, "B": 22, "C": 40, "D": 12, "E": 16, "F": 20, "G": 14, "H": 50,
	}
	for col, width := range widths {
		f.SetColWidth(jobsSheet, col, col, width)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Company", "Title", "Score", "Recommendation", "Experience", "Confidence", "Link"}
	for col, header := range headers {
		c := cell(string(rune('A'+col)), 1)
		f.SetCellValue(jobsSheet, c, header)
		f.SetCellStyle(jobsSheet, c, c, headerStyle)
	}

	for i, job := range list.Items {
		row := i + 2
		f.SetCellValue(jobsSheet, cell("A", row), i+1)
		f.SetCellValue(jobsSheet, cell("B", row), job.Company)
		f.SetCellValue(jobsSheet, cell("C", row), job.Title)

		if job.Match != nil {
			f.SetCellValue(jobsSheet, cell("D", row), job.Match.MatchScore)
			f.SetCellValue(jobsSheet, cell("E", row), job.Match.Recommendation)
			f.SetCellValue(jobsSheet, cell("F", row), job.Match.RequiredExperience)
		}
		if job.Validation != nil {
			f.SetCellValue(jobsSheet, cell("G", row), job.Validation.ConfidenceScore)
		}

		linkCell := cell("H", row)
		f.SetCellValue(jobsSheet, linkCell, job.Link)
		if job.Link != "" {
			f.SetCellHyperLink(jobsSheet, linkCell, job.Link, "External")
			f.SetCellStyle(jobsSheet, linkCell, linkCell, linkStyle)
		}
	}

	if list.Len() > 0 {
		f.AutoFilter(jobsSheet, fmt.Sprintf("A1:H%d", list.Len()+1), []excelize.AutoFilterOptions{})
	}

	f.SetPanes(jobsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
