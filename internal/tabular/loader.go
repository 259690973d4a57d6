package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TableSource fetches a serialized table for a non-file source id. The
// Elasticsearch index in internal/search implements it.
type TableSource interface {
	TableJSON(ctx context.Context, docID string) ([]byte, error)
}

// Loader resolves a report's source id to a Table. Ids with a spreadsheet
// extension load from the data directory; anything else is treated as an
// index document id.
type Loader struct {
	// Dir is the root of on-disk report files.
	Dir string
	// Source serves index-backed tables; may be nil when only files are used.
	Source TableSource
}

func (l *Loader) Load(ctx context.Context, sourceID string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(sourceID)) {
	case ".xlsx":
		return l.loadXLSX(sourceID)
	case ".csv":
		return l.loadCSV(sourceID)
	default:
		if l.Source == nil {
			return nil, fmt.Errorf("no table source configured for %q", sourceID)
		}
		raw, err := l.Source.TableJSON(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		return FromJSONRecords(raw)
	}
}

// path confines file sources to the data directory.
func (l *Loader) path(sourceID string) (string, error) {
	name := filepath.Base(filepath.Clean(sourceID))
	if name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("invalid table source %q", sourceID)
	}
	return filepath.Join(l.Dir, name), nil
}

func (l *Loader) loadXLSX(sourceID string) (*Table, error) {
	p, err := l.path(sourceID)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", sourceID, err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s has no sheets", sourceID)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourceID, err)
	}
	return fromRows(rows), nil
}

func (l *Loader) loadCSV(sourceID string) (*Table, error) {
	p, err := l.path(sourceID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", sourceID, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourceID, err)
	}
	return fromRows(rows), nil
}

// fromRows treats the first row as the header and pads short rows, which
// spreadsheets with merged or trailing-empty cells produce routinely.
func fromRows(rows [][]string) *Table {
	if len(rows) == 0 {
		return &Table{}
	}
	t := &Table{Columns: rows[0]}
	width := len(t.Columns)
	for _, row := range rows[1:] {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = row[:width]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
