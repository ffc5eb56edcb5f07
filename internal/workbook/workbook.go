// internal/workbook/workbook.go

// Package workbook wraps the study spreadsheet. Analyzers address cells by
// one-based row and column so the positions line up with the schema file
// and with what a spreadsheet UI shows.
package workbook

import (
	"fmt"
	"math"
	"os"

	"github.com/xuri/excelize/v2"
)

type Workbook struct {
	f    *excelize.File
	path string
}

// Open opens an existing workbook for reading and writing.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{f: f, path: path}, nil
}

// CopyOpen copies src to dst and opens the copy, leaving the source
// workbook untouched. Results are always written to the copy.
func CopyOpen(src, dst string) (*Workbook, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to copy workbook to %s: %w", dst, err)
	}
	return Open(dst)
}

// Path returns where Save writes.
func (w *Workbook) Path() string { return w.path }

// Sheet resolves a zero-based sheet index to its name.
func (w *Workbook) Sheet(idx int) (string, error) {
	name := w.f.GetSheetName(idx)
	if name == "" {
		return "", fmt.Errorf("workbook %s has no sheet %d", w.path, idx)
	}
	return name, nil
}

// Rows returns every row of a sheet as formatted strings, header included.
// Trailing empty cells are absent, so rows come back ragged like the
// tracker CSVs do.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// Cell reads one cell as its formatted string.
func (w *Workbook) Cell(sheet string, row, col int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	return w.f.GetCellValue(sheet, name)
}

// SetString writes a text cell.
func (w *Workbook) SetString(sheet string, row, col int, value string) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.f.SetCellStr(sheet, name, value)
}

// SetFloat writes a numeric cell. NaN and infinities clear the cell
// instead, which is how "could not compute" looks in the workbook.
func (w *Workbook) SetFloat(sheet string, row, col int, value float64) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return w.f.SetCellStr(sheet, name, "")
	}
	return w.f.SetCellFloat(sheet, name, value, 6, 64)
}

// SetInt writes an integer cell.
func (w *Workbook) SetInt(sheet string, row, col int, value int) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.f.SetCellInt(sheet, name, value)
}

// SetHeader titles a column on row 1.
func (w *Workbook) SetHeader(sheet string, col int, title string) error {
	return w.SetString(sheet, 1, col, title)
}

// Save writes the workbook back to its path.
func (w *Workbook) Save() error {
	if err := w.f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	return nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}
