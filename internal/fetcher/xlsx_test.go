package fetcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	err := f.Save(path)
	require.NoError(t, err)
	return path
}

func TestReadXLSX_Basic(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"ad_id", "date", "spend"},
			{"A1", "2024-03-05", "$100"},
			{"A2", "03-06-2024", ""},
		},
	})

	tbl, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ad_id", "date", "spend"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"A1", "2024-03-05", "$100"}, tbl.Rows[0])
	assert.Equal(t, "A2", tbl.Rows[1][0])
	assert.Len(t, tbl.Rows[1], 3)
}

func TestReadXLSX_SkipsBlankRowsAndPads(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"", ""},
			{"id", "name", "age"},
			{"CU1"},
			{" ", ""},
			{"CU2", "Bo", "40"},
		},
	})

	tbl, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"CU1", "", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"CU2", "Bo", "40"}, tbl.Rows[1])
}

func TestReadXLSX_SheetByName(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Data": {{"x"}, {"1"}},
	})

	tbl, err := ReadXLSX(path, XLSXOptions{SheetName: "Data"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1"}}, tbl.Rows)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestReadXLSX_SheetIndexOutOfRange(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"x"}}})
	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadXLSX_EmptySheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {}})
	_, err := ReadXLSX(path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestReadXLSX_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, writeTestFile(path, "not a zip"))
	_, err := ReadXLSX(path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open file")
}

func TestReadFile_DispatchesOnExtension(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "paid_ads.csv")
	require.NoError(t, writeTestFile(csvPath, "ad_id,spend\nA1,10\n"))
	tbl, err := ReadFile(ctx, csvPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ad_id", "spend"}, tbl.Header)

	tsvPath := filepath.Join(dir, "paid_ads.tsv")
	require.NoError(t, writeTestFile(tsvPath, "ad_id\tspend\nA1\t10\n"))
	tbl, err = ReadFile(ctx, tsvPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A1", "10"}}, tbl.Rows)

	semiPath := filepath.Join(dir, "paid_ads.txt")
	require.NoError(t, writeTestFile(semiPath, "ad_id;spend\nA1;10\n"))
	tbl, err = ReadFile(ctx, semiPath, Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A1", "10"}}, tbl.Rows)

	xlsxPath := createTestXLSX(t, map[string][][]string{"Sheet1": {{"ad_id"}, {"A1"}}})
	tbl, err = ReadFile(ctx, xlsxPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A1"}}, tbl.Rows)

	_, err = ReadFile(ctx, filepath.Join(dir, "paid_ads.json"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = ReadFile(ctx, filepath.Join(dir, "missing.csv"), Options{})
	require.Error(t, err)
}
