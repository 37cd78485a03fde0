package excel_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/akdemia/akdemia/pkg/excel"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		expr    string
		want    excel.Range
		wantErr bool
	}{
		{expr: "A1:D10", want: excel.Range{MinRow: 1, MinCol: 1, MaxRow: 10, MaxCol: 4}},
		{expr: " b2 : c3 ", want: excel.Range{MinRow: 2, MinCol: 2, MaxRow: 3, MaxCol: 3}},
		{expr: "D10:A1", want: excel.Range{MinRow: 1, MinCol: 1, MaxRow: 10, MaxCol: 4}},
		{expr: "B2", want: excel.Range{MinRow: 2, MinCol: 2, MaxRow: 2, MaxCol: 2}},
		{expr: "", wantErr: true},
		{expr: "A1:B2:C3", wantErr: true},
		{expr: "1A:B2", wantErr: true},
		{expr: "nope", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := excel.ParseRange(tc.expr)
			if tc.wantErr {
				require.ErrorIs(t, err, excel.ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := "Subjects"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)

	cells := map[string]any{
		"A1": "code", "B1": "name", "C1": "credits",
		"A2": "MAT101", "B2": "Algebra", "C2": 4.5,
		"A3": "FIS201", "B3": "Physics", "C3": 3,
	}
	for axis, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, axis, v))
	}

	// D1:D3 merged; only the top-left carries a stored value.
	require.NoError(t, f.MergeCell(sheet, "D1", "D3"))
	require.NoError(t, f.SetCellValue(sheet, "D1", "2026"))

	path := filepath.Join(t.TempDir(), "subjects.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadRange(t *testing.T) {
	path := writeWorkbook(t)

	rows, err := excel.ReadRange(path, "Subjects", "A1:D3")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"code", "name", "credits", "2026"}, rows[0])
	assert.Equal(t, "MAT101", rows[1][0])
	assert.Equal(t, "Algebra", rows[1][1])
	assert.Equal(t, "FIS201", rows[2][0])
}

func TestReadRange_MergedCellsFlatten(t *testing.T) {
	path := writeWorkbook(t)

	rows, err := excel.ReadRange(path, "Subjects", "D1:D3")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Every cell of a merged range reads as the top-left value.
	for i, row := range rows {
		assert.Equalf(t, "2026", row[0], "row %d inside merged region", i)
	}
}

func TestReadRange_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t)

	_, err := excel.ReadRange(path, "Missing", "A1:B2")
	require.ErrorIs(t, err, excel.ErrSheetNotFound)
}

func TestReadRange_EmptyCellsReadBlank(t *testing.T) {
	path := writeWorkbook(t)

	rows, err := excel.ReadRange(path, "Subjects", "F1:G2")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, []string{"", ""}, row)
	}
}
