// Package export renders admin reports as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/hostel-management/internal/model"
)

const visitorSheet = "Visitor Logs"

var visitorHeaders = []string{"Username", "Login Time (UTC)", "IP Address", "Status"}

var visitorWidths = []float64{20, 22, 18, 12}

// VisitorLogsXLSX writes logs, in the given order, to a single-sheet
// workbook with a frozen header row.
func VisitorLogsXLSX(logs []model.VisitorLog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(visitorSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	failureStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "#C00000"}})
	if err != nil {
		return nil, fmt.Errorf("failure style: %w", err)
	}

	for i, h := range visitorHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(visitorSheet, cell, h); err != nil {
			return nil, fmt.Errorf("header %s: %w", cell, err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(visitorSheet, col, col, visitorWidths[i]); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}
	if err := f.SetCellStyle(visitorSheet, "A1", "D1", headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, l := range logs {
		row := i + 2
		first, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		values := []any{l.Username, l.LoginTime.UTC().Format(time.DateTime), l.IPAddress, l.Status}
		if err := f.SetSheetRow(visitorSheet, first, &values); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if l.Status == model.LoginFailure {
			last, _ := excelize.CoordinatesToCellName(len(values), row)
			if err := f.SetCellStyle(visitorSheet, first, last, failureStyle); err != nil {
				return nil, fmt.Errorf("row %d style: %w", row, err)
			}
		}
	}

	if err := f.SetPanes(visitorSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
