// internal/workbook/highlight.go
package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// HighlightBaseline copies src to dst and fills the ID cell yellow on every
// row whose condition column reads 4, the baseline condition code. Returns
// how many rows were checked and how many were highlighted.
func HighlightBaseline(src, dst string) (checked, highlighted int, err error) {
	wb, err := CopyOpen(src, dst)
	if err != nil {
		return 0, 0, err
	}
	defer wb.Close()

	sheet, err := wb.Sheet(0)
	if err != nil {
		return 0, 0, err
	}
	rows, err := wb.Rows(sheet)
	if err != nil {
		return 0, 0, err
	}

	styleID, err := wb.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create highlight style: %w", err)
	}

	for i := 1; i < len(rows); i++ {
		checked++
		var cond string
		if len(rows[i]) > 1 {
			cond = rows[i][1]
		}
		if !isFour(cond) {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return checked, highlighted, err
		}
		if err := wb.f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return checked, highlighted, fmt.Errorf("failed to style %s!%s: %w", sheet, cell, err)
		}
		highlighted++
	}

	if err := wb.Save(); err != nil {
		return checked, highlighted, err
	}
	return checked, highlighted, nil
}

// isFour accepts both the literal string "4" and any numeric cell whose
// value is exactly four.
func isFour(s string) bool {
	t := strings.TrimSpace(s)
	if t == "4" {
		return true
	}
	v, err := strconv.ParseFloat(t, 64)
	return err == nil && v == 4 && v == math.Trunc(v)
}
