package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// WriteJSON writes results as an indented JSON array.
func WriteJSON(path string, results []Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

var xlsxHeader = []string{"idx", "query", "expected", "answer", "doc_id", "page", "correct", "error"}

// WriteXLSX writes results as a single-sheet spreadsheet.
func WriteXLSX(path string, results []Result) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range xlsxHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, res := range results {
		row := []any{res.Idx, res.Query, res.Expected, res.Answer, res.DocID, res.Page, correctCell(res), res.Err}
		for col, val := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("result cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}

func correctCell(res Result) any {
	if res.Correct == nil {
		return ""
	}
	return *res.Correct
}

// Summary counts scored results.
type Summary struct {
	Total   int
	Scored  int
	Correct int
	Failed  int
}

// Summarize tallies a result set.
func Summarize(results []Result) Summary {
	var s Summary
	s.Total = len(results)
	for _, res := range results {
		if res.Err != "" {
			s.Failed++
			continue
		}
		if res.Correct != nil {
			s.Scored++
			if *res.Correct {
				s.Correct++
			}
		}
	}
	return s
}
