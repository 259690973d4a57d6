package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"assistd/internal/tabular"
)

func TestNormalizeRewritesShow(t *testing.T) {
	code := "plt.plot(df['rate'])\nplt.show()"
	got, wantsPlot := normalize(code, "/tmp/plot.png")
	if !wantsPlot {
		t.Fatal("plotting code not detected")
	}
	if strings.Contains(got, "plt.show()") {
		t.Fatalf("show call not rewritten:\n%s", got)
	}
	for _, frag := range []string{"plt.figure(figsize=(10, 6))", "plt.tight_layout()", `plt.savefig("/tmp/plot.png"`, "dpi=150"} {
		if !strings.Contains(got, frag) {
			t.Fatalf("normalized code missing %q:\n%s", frag, got)
		}
	}
}

func TestNormalizePlotWithoutShow(t *testing.T) {
	got, wantsPlot := normalize("plt.hist(df['depth'])", "/tmp/p.png")
	if !wantsPlot || !strings.Contains(got, "plt.savefig") {
		t.Fatalf("savefig not appended:\n%s", got)
	}
}

func TestNormalizeKeepsExistingFigure(t *testing.T) {
	got, _ := normalize("plt.figure(figsize=(4, 4))\nplt.plot([1])\nplt.show()", "/tmp/p.png")
	if strings.Count(got, "plt.figure") != 1 {
		t.Fatalf("extra figure call injected:\n%s", got)
	}
}

func TestNormalizeNonPlottingCode(t *testing.T) {
	code := "print(df.describe())"
	got, wantsPlot := normalize(code, "/tmp/p.png")
	if wantsPlot || got != code {
		t.Fatalf("non-plotting code altered: %q", got)
	}
}

func TestHarnessWrapsCodeInGuard(t *testing.T) {
	h := harness("print(df.head())", "/data/table.csv")
	for _, frag := range []string{
		"matplotlib.use('Agg')",
		`pd.read_csv("/data/table.csv")`,
		"try:\n    print(df.head())",
		"except Exception as e:",
	} {
		if !strings.Contains(h, frag) {
			t.Fatalf("harness missing %q:\n%s", frag, h)
		}
	}
}

func TestNewPlotNameUnique(t *testing.T) {
	a, b := newPlotName(), newPlotName()
	if a == b {
		t.Fatalf("plot names collide: %s", a)
	}
	if !strings.HasPrefix(a, "plot_") || !strings.HasSuffix(a, ".png") {
		t.Fatalf("unexpected plot name %s", a)
	}
}

func TestRunMissingInterpreter(t *testing.T) {
	r, err := New(Config{Python: "definitely-not-a-python", ArtifactsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tbl := &tabular.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}
	if _, err := r.Run(context.Background(), "print(df)", tbl); err == nil {
		t.Fatal("expected infrastructure error for missing interpreter")
	}
}

func TestPrunePlots(t *testing.T) {
	dir := t.TempDir()
	r, err := New(Config{ArtifactsDir: dir, MaxPlots: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	base := time.Now().Add(-time.Hour)
	names := []string{"plot_1_a.png", "plot_2_b.png", "plot_3_c.png", "plot_4_d.png"}
	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		mod := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(p, mod, mod); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	r.prunePlots()
	left, _ := filepath.Glob(filepath.Join(dir, "plot_*.png"))
	if len(left) != 2 {
		t.Fatalf("expected 2 retained plots, got %v", left)
	}
	for _, p := range left {
		name := filepath.Base(p)
		if name != "plot_3_c.png" && name != "plot_4_d.png" {
			t.Fatalf("oldest plots not pruned first, kept %s", name)
		}
	}
}
