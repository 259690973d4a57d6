package tabular

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	content := "well,crew,rate\n101,7,25.5\n102,7,\n"
	if err := os.WriteFile(filepath.Join(dir, "measure.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	l := &Loader{Dir: dir}
	tbl, err := l.Load(context.Background(), "measure.csv")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Columns) != 3 || tbl.Columns[0] != "well" {
		t.Fatalf("unexpected columns: %v", tbl.Columns)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0][2] != "25.5" {
		t.Fatalf("unexpected rows: %v", tbl.Rows)
	}
}

func TestLoadXLSX(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	cells := map[string]any{
		"A1": "well", "B1": "crew",
		"A2": 101, "B2": "crew 7",
		"A3": 102, // B3 left empty: loader must pad the row
	}
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("set cell: %v", err)
		}
	}
	p := filepath.Join(dir, "plan.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	l := &Loader{Dir: dir}
	tbl, err := l.Load(context.Background(), "plan.xlsx")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Columns) != 2 || len(tbl.Rows) != 2 {
		t.Fatalf("unexpected shape: %v / %v", tbl.Columns, tbl.Rows)
	}
	if len(tbl.Rows[1]) != 2 || tbl.Rows[1][1] != "" {
		t.Fatalf("short row not padded: %v", tbl.Rows[1])
	}
}

type fakeSource struct{ raw string }

func (f fakeSource) TableJSON(ctx context.Context, docID string) ([]byte, error) {
	if f.raw == "" {
		return nil, fmt.Errorf("no table for %s", docID)
	}
	return []byte(f.raw), nil
}

func TestLoadFromIndexSource(t *testing.T) {
	l := &Loader{Source: fakeSource{raw: `[{"well":101,"rate":25.5},{"well":102,"rate":null}]`}}
	tbl, err := l.Load(context.Background(), "oil_event")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Columns) != 2 || tbl.Columns[0] != "rate" || tbl.Columns[1] != "well" {
		t.Fatalf("expected sorted columns, got %v", tbl.Columns)
	}
	if tbl.Rows[0][1] != "101" || tbl.Rows[1][0] != "" {
		t.Fatalf("unexpected rows: %v", tbl.Rows)
	}
}

func TestLoadWithoutSourceConfigured(t *testing.T) {
	l := &Loader{Dir: t.TempDir()}
	if _, err := l.Load(context.Background(), "oil_event"); err == nil {
		t.Fatal("expected error when no index source is configured")
	}
}

func TestInfoAndCSVRoundTrip(t *testing.T) {
	tbl := &Table{
		Columns: []string{"well", "rate"},
		Rows:    [][]string{{"101", "25.5"}, {"102", "19.1"}},
	}
	info := tbl.Info()
	for _, frag := range []string{"rows: 2", "columns: well, rate", "101 | 25.5"} {
		if !strings.Contains(info, frag) {
			t.Fatalf("info missing %q:\n%s", frag, info)
		}
	}
	var b strings.Builder
	if err := tbl.WriteCSV(&b); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if b.String() != "well,rate\n101,25.5\n102,19.1\n" {
		t.Fatalf("unexpected csv: %q", b.String())
	}
}
