// Package excel extracts rectangular cell ranges from spreadsheet files.
package excel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrInvalidRange  = errors.New("invalid range expression")
)

// Range is a resolved rectangular block, 1-based inclusive coordinates.
type Range struct {
	MinRow, MinCol int
	MaxRow, MaxCol int
}

// ParseRange resolves a range expression like "A1:D10" into coordinates.
// A single cell reference ("B2") is a 1x1 range.
func ParseRange(expr string) (Range, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Range{}, fmt.Errorf("%w: empty expression", ErrInvalidRange)
	}

	parts := strings.Split(expr, ":")
	if len(parts) > 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, expr)
	}
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, expr)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, expr)
	}

	r := Range{MinRow: startRow, MinCol: startCol, MaxRow: endRow, MaxCol: endCol}
	if r.MinRow > r.MaxRow {
		r.MinRow, r.MaxRow = r.MaxRow, r.MinRow
	}
	if r.MinCol > r.MaxCol {
		r.MinCol, r.MaxCol = r.MaxCol, r.MinCol
	}
	return r, nil
}

func (r Range) Rows() int { return r.MaxRow - r.MinRow + 1 }
func (r Range) Cols() int { return r.MaxCol - r.MinCol + 1 }

type coord struct {
	row, col int
}

// RangeReader reads a rectangular block of cells from one sheet of an open
// workbook, flattening merged regions: every cell inside a merged range
// yields the value of the range's top-left cell.
type RangeReader struct {
	file  *excelize.File
	sheet string
	flat  map[coord]string
}

func NewRangeReader(file *excelize.File, sheet string) (*RangeReader, error) {
	idx, err := file.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	merged, err := file.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merged cells of %q: %w", sheet, err)
	}

	flat := make(map[coord]string)
	for _, mc := range merged {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, fmt.Errorf("merged range %s: %w", mc.GetStartAxis(), err)
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, fmt.Errorf("merged range %s: %w", mc.GetEndAxis(), err)
		}
		value := mc.GetCellValue()
		for row := startRow; row <= endRow; row++ {
			for col := startCol; col <= endCol; col++ {
				flat[coord{row, col}] = value
			}
		}
	}

	return &RangeReader{file: file, sheet: sheet, flat: flat}, nil
}

// Read returns the cells of the given range as strings, left-to-right,
// top-to-bottom. Empty cells read as "".
func (r *RangeReader) Read(rng Range) ([][]string, error) {
	rows := make([][]string, 0, rng.Rows())
	for row := rng.MinRow; row <= rng.MaxRow; row++ {
		cells := make([]string, 0, rng.Cols())
		for col := rng.MinCol; col <= rng.MaxCol; col++ {
			if v, ok := r.flat[coord{row, col}]; ok {
				cells = append(cells, v)
				continue
			}
			axis, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, err
			}
			v, err := r.file.GetCellValue(r.sheet, axis)
			if err != nil {
				return nil, fmt.Errorf("read cell %s!%s: %w", r.sheet, axis, err)
			}
			cells = append(cells, v)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// ReadRange opens a workbook file and reads one rectangular range from it.
func ReadRange(path, sheet, rangeExpr string) ([][]string, error) {
	rng, err := ParseRange(rangeExpr)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader, err := NewRangeReader(f, sheet)
	if err != nil {
		return nil, err
	}
	return reader.Read(rng)
}
