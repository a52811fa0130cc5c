package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cv-screening-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

// exportBatch is the page size used while collecting rows for an export.
const exportBatch = maxPageLimit

var exportHeaders = []string{
	"SUBMITTED AT", "FULL NAME", "EMAIL", "PHONE", "JOB TITLE", "ROLE",
	"DECISION", "RANK", "SCORE", "EXPERIENCE LEVEL", "MATCHED GROUPS",
	"STARRED", "FILE NAME", "FILE LINK", "REASON",
}

func exportRow(r domain.CVRecord) []any {
	row := []any{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.FullName,
		r.Email,
		r.PhoneNumber,
		r.JobTitle,
		"", "", "", "", "", "",
		r.Starred,
		r.File.FileName,
		"",
		"",
	}
	if r.File.FileURL != nil {
		row[13] = *r.File.FileURL
	}
	if ev := r.Evaluation; ev != nil {
		row[5] = ev.RoleID
		row[6] = string(ev.Decision)
		row[7] = ev.Rank
		row[8] = ev.Score
		if ev.Experience != nil {
			row[9] = ev.Experience.Level
		}
		row[10] = strings.Join(ev.MatchedGroups, ", ")
		row[14] = ev.Reason
	}
	return row
}

// Export renders every CV in the filter's segment as xlsx (default) or csv.
// It returns the file body and a suggested file name.
func (u *cvUsecase) Export(ctx context.Context, req domain.CVExportRequest) ([]byte, string, error) {
	format := strings.ToLower(req.Format)
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		return nil, "", fmt.Errorf("%w: unsupported export format %q", domain.ErrValidation, req.Format)
	}

	filter, err := normalizeFilter(req.Filter)
	if err != nil {
		return nil, "", err
	}
	records, err := u.collect(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("cvs_%s_%s.%s", filter.Segment, u.now().Format("20060102_150405"), format)
	if format == "csv" {
		body, err := exportCSV(records)
		return body, name, err
	}
	body, err := exportExcel(records)
	return body, name, err
}

func (u *cvUsecase) collect(ctx context.Context, filter domain.CVFilter) ([]domain.CVRecord, error) {
	filter.Limit = exportBatch
	var out []domain.CVRecord
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := u.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < filter.Limit || int64(len(out)) >= total {
			return out, nil
		}
	}
}

func exportExcel(records []domain.CVRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "CVs"
	f.SetSheetName("Sheet1", sheetName)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, r := range records {
		for colIdx, value := range exportRow(r) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(records []domain.CVRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := exportRow(r)
		values := make([]string, len(row))
		for i, v := range row {
			switch t := v.(type) {
			case string:
				values[i] = t
			case int:
				values[i] = strconv.Itoa(t)
			case bool:
				values[i] = strconv.FormatBool(t)
			default:
				values[i] = fmt.Sprint(t)
			}
		}
		if err := w.Write(values); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
