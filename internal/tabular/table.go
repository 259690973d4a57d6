// Package tabular is the boundary to report tables. It loads spreadsheets or
// Elasticsearch-stored tables into a uniform Table the analysis pipeline can
// describe to the model and feed to the code runner.
package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Table is a rectangular snapshot of one report. All cells are strings; type
// interpretation is left to the generated analysis code.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Info renders a compact structural summary used as table context in code
// generation prompts.
func (t *Table) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows: %d, columns: %d\n", len(t.Rows), len(t.Columns))
	fmt.Fprintf(&b, "columns: %s\n", strings.Join(t.Columns, ", "))
	sample := len(t.Rows)
	if sample > 3 {
		sample = 3
	}
	if sample > 0 {
		b.WriteString("sample:\n")
		for _, row := range t.Rows[:sample] {
			fmt.Fprintf(&b, "  %s\n", strings.Join(row, " | "))
		}
	}
	return b.String()
}

// WriteCSV streams the table as CSV, header first. The runner hands this to
// the generated code as its DataFrame source.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FromJSONRecords parses the record-list form stored in Elasticsearch
// ([{"col": value, ...}, ...]). Column order is alphabetical for
// determinism; cells are stringified.
func FromJSONRecords(raw []byte) (*Table, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse table records: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	colSet := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec {
			colSet[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	t := &Table{Columns: cols}
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = stringify(rec[c])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// trim the ".0" JSON gives integral numbers
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
