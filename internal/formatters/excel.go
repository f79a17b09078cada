package formatters

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"screener/internal/types"
	"screener/internal/utils"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	matchesSheet = "Matches"
)

var matchHeaders = []string{"Rank", "Score", "Candidate", "Email", "Experience", "Skills", "Strengths", "Gaps", "Analysis", "Position"}

var bandColors = map[types.ScoreClass]string{
	types.ScoreHigh:   "C6EFCE",
	types.ScoreMedium: "FFEB9C",
	types.ScoreLow:    "FFC7CE",
}

// ExportMatchesToExcel writes the table to an .xlsx workbook and returns the
// path actually written.
func ExportMatchesToExcel(table types.MatchTable, filename string) (string, error) {
	outputPath := filepath.Clean(utils.EnsureExtension(filename, ".xlsx"))
	if err := utils.ValidateOutputFile(outputPath); err != nil {
		return "", err
	}

	f, err := buildWorkbook(table)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return outputPath, nil
}

// WriteMatchesExcel streams the workbook to w
func WriteMatchesExcel(w io.Writer, table types.MatchTable) error {
	f, err := buildWorkbook(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel data: %w", err)
	}
	return nil
}

func buildWorkbook(table types.MatchTable) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(matchesSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeSummarySheet(f, table); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeMatchesSheet(f, table); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create matches sheet: %w", err)
	}
	return f, nil
}

func writeSummarySheet(f *excelize.File, table types.MatchTable) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 25)
	_ = f.SetColWidth(summarySheet, "B", "B", 50)

	_ = f.SetCellValue(summarySheet, "A1", "Candidate Match Report")
	_ = f.MergeCell(summarySheet, "A1", "B1")
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)

	position := "All positions"
	if table.Job != nil {
		position = table.Job.Title
	}
	source := "All stored matches"
	if table.CurrentSessionOnly {
		source = "Current session"
	}

	counts := map[types.ScoreClass]int{}
	var total float64
	for _, m := range table.Matches {
		counts[types.ClassifyScore(m.Score)]++
		total += m.Score
	}
	average := 0.0
	if len(table.Matches) > 0 {
		average = total / float64(len(table.Matches))
	}

	rows := [][2]any{
		{"Position:", position},
		{"Source:", source},
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Total Matches:", len(table.Matches)},
		{"Average Score:", fmt.Sprintf("%.1f", average)},
		{"High (8-10):", counts[types.ScoreHigh]},
		{"Medium (6-7.9):", counts[types.ScoreMedium]},
		{"Low (<6):", counts[types.ScoreLow]},
	}
	for i, r := range rows {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		_ = f.SetCellValue(summarySheet, label, r[0])
		_ = f.SetCellStyle(summarySheet, label, label, labelStyle)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r[1])
	}
	return nil
}

func writeMatchesSheet(f *excelize.File, table types.MatchTable) error {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}

	bandStyles := make(map[types.ScoreClass]int, len(bandColors))
	for class, color := range bandColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    border,
		})
		if err != nil {
			return err
		}
		bandStyles[class] = style
	}

	widths := []float64{6, 8, 25, 30, 12, 35, 40, 40, 60, 25}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(matchesSheet, col, col, w)
	}

	for i, h := range matchHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(matchesSheet, cell, h)
		_ = f.SetCellStyle(matchesSheet, cell, cell, headerStyle)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(matchHeaders))
	for i, m := range table.Matches {
		row := i + 2
		values := []any{
			i + 1,
			m.Score,
			m.Resume.Name,
			m.Resume.Email,
			m.Resume.Experience,
			strings.Join(m.Resume.Skills, ", "),
			strings.Join(m.Strengths, "\n"),
			strings.Join(m.Gaps, "\n"),
			m.Justification,
			m.Job.Title,
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(matchesSheet, first, &values); err != nil {
			return err
		}
		_ = f.SetCellStyle(matchesSheet, first, fmt.Sprintf("%s%d", lastCol, row), bandStyles[types.ClassifyScore(m.Score)])
	}

	if len(table.Matches) > 0 {
		_ = f.AutoFilter(matchesSheet, fmt.Sprintf("A1:%s%d", lastCol, len(table.Matches)+1), []excelize.AutoFilterOptions{})
	}

	return f.SetPanes(matchesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
