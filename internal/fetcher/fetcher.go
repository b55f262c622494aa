// Package fetcher reads staging exports from local CSV and XLSX files.
package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a parsed export: the header row and the data rows beneath it.
type Table struct {
	Header []string
	Rows   [][]string
}

// Options configures ReadFile.
type Options struct {
	Delimiter rune   // separator for .csv and .txt; default ','. .tsv is always tab separated
	SheetName string // XLSX sheet; default is the first sheet
}

// Extensions lists the file extensions ReadFile understands.
var Extensions = []string{".csv", ".tsv", ".txt", ".xlsx"}

// ReadFile parses path as CSV or XLSX based on its extension. The first
// non-blank row is the header.
func ReadFile(ctx context.Context, path string, opts Options) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{SheetName: opts.SheetName})
	case ".csv", ".tsv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		delim := opts.Delimiter
		if ext == ".tsv" {
			delim = '\t'
		}
		return ReadCSV(ctx, f, CSVOptions{Delimiter: delim, HasHeader: true})
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q (want one of %v)", ext, Extensions)
	}
}
