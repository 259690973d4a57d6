// Package runner executes model-generated analysis code against a report
// table. The code is untrusted output of a language model, so the execution
// boundary guarantees the caller always gets back a text/plot/code triple:
// exceptions inside the generated code are caught and rendered as output,
// never propagated.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"assistd/internal/common/fsutil"
	"assistd/internal/tabular"
)

const (
	defaultPython  = "python3"
	defaultTimeout = 60 * time.Second
	// defaultMaxPlots bounds the artifacts directory; older plots are pruned.
	defaultMaxPlots = 50
)

// Result is the outcome of one code execution. Output carries both normal
// prints and any caught exception text.
type Result struct {
	Output   string
	PlotPath string
	// Code is the normalized form that actually ran, with display calls
	// rewritten to artifact writes.
	Code string
}

// Runner shells out to a Python interpreter with pandas and matplotlib
// available. Zero value is not usable; call New.
type Runner struct {
	python       string
	artifactsDir string
	timeout      time.Duration
	maxPlots     int
}

// Config tunes the runner. Zero fields take package defaults.
type Config struct {
	// Python is the interpreter binary.
	Python string
	// ArtifactsDir receives plot images; created if missing.
	ArtifactsDir string
	// Timeout bounds one execution.
	Timeout time.Duration
	// MaxPlots caps retained plot artifacts.
	MaxPlots int
}

func New(cfg Config) (*Runner, error) {
	if cfg.Python == "" {
		cfg.Python = defaultPython
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxPlots <= 0 {
		cfg.MaxPlots = defaultMaxPlots
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = "artifacts"
	}
	dir, err := fsutil.EnsureDir(cfg.ArtifactsDir)
	if err != nil {
		return nil, err
	}
	return &Runner{
		python:       cfg.Python,
		artifactsDir: dir,
		timeout:      cfg.Timeout,
		maxPlots:     cfg.MaxPlots,
	}, nil
}

// Run executes code against table, bound as the DataFrame `df`. An error is
// returned only for infrastructure failures (interpreter missing, workspace
// setup); failures of the generated code itself come back in Result.Output.
func (r *Runner) Run(ctx context.Context, code string, table *tabular.Table) (Result, error) {
	plotName := newPlotName()
	plotPath := filepath.Join(r.artifactsDir, plotName)
	normalized, wantsPlot := normalize(code, plotPath)

	work, err := os.MkdirTemp("", "assistd-run-")
	if err != nil {
		return Result{}, fmt.Errorf("workspace: %w", err)
	}
	defer os.RemoveAll(work)

	csvPath := filepath.Join(work, "table.csv")
	cf, err := os.Create(csvPath)
	if err != nil {
		return Result{}, fmt.Errorf("write table: %w", err)
	}
	if err := table.WriteCSV(cf); err != nil {
		cf.Close()
		return Result{}, fmt.Errorf("write table: %w", err)
	}
	cf.Close()

	scriptPath := filepath.Join(work, "analysis.py")
	if err := os.WriteFile(scriptPath, []byte(harness(normalized, csvPath)), 0o644); err != nil {
		return Result{}, fmt.Errorf("write script: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, r.python, scriptPath)
	cmd.Dir = work
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	runErr := cmd.Run()

	out := strings.TrimSpace(buf.String())
	if ctx.Err() == context.DeadlineExceeded {
		out = fmt.Sprintf("execution timed out after %s", r.timeout)
	} else if runErr != nil && out == "" {
		// interpreter-level failure with nothing printed
		return Result{}, fmt.Errorf("run interpreter: %w", runErr)
	}

	res := Result{Output: out, Code: normalized}
	if wantsPlot && fsutil.PathExists(plotPath) {
		res.PlotPath = plotPath
		r.prunePlots()
	}
	return res, nil
}

func newPlotName() string {
	return fmt.Sprintf("plot_%d_%s.png", time.Now().Unix(), uuid.NewString()[:8])
}

// normalize rewrites interactive display calls into an artifact write and
// ensures a figure of a sane size exists when the code plots at all. It
// reports whether the code is expected to produce a plot.
func normalize(code, plotPath string) (string, bool) {
	code = strings.TrimSpace(code)
	usesPlot := strings.Contains(code, "plt.")
	if !usesPlot {
		return code, false
	}
	save := fmt.Sprintf("plt.tight_layout()\nplt.savefig(%q, dpi=150, bbox_inches='tight')", plotPath)
	if strings.Contains(code, "plt.show()") {
		code = strings.Replace(code, "plt.show()", save, 1)
		// any further show calls are dead weight after the first save
		code = strings.ReplaceAll(code, "plt.show()", "")
	} else {
		code = code + "\n" + save
	}
	if !strings.Contains(code, "plt.figure") {
		code = "plt.figure(figsize=(10, 6))\n" + code
	}
	return code, true
}

// harness wraps the normalized code in the execution preamble. The code runs
// inside try/except so any exception it raises is reported as output text.
func harness(code, csvPath string) string {
	var b strings.Builder
	b.WriteString("import pandas as pd\n")
	b.WriteString("import numpy as np\n")
	b.WriteString("import matplotlib\n")
	b.WriteString("matplotlib.use('Agg')\n")
	b.WriteString("import matplotlib.pyplot as plt\n")
	fmt.Fprintf(&b, "df = pd.read_csv(%q)\n", csvPath)
	b.WriteString("try:\n")
	for _, line := range strings.Split(code, "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("except Exception as e:\n")
	b.WriteString("    print(f'Execution error: {type(e).__name__}: {e}')\n")
	return b.String()
}

// prunePlots drops the oldest plot artifacts beyond the retention cap.
// Best effort.
func (r *Runner) prunePlots() {
	matches, err := filepath.Glob(filepath.Join(r.artifactsDir, "plot_*.png"))
	if err != nil || len(matches) <= r.maxPlots {
		return
	}
	type aged struct {
		path string
		mod  time.Time
	}
	files := make([]aged, 0, len(matches))
	for _, p := range matches {
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		files = append(files, aged{path: p, mod: st.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
	for _, f := range files[:len(files)-r.maxPlots] {
		_ = os.Remove(f.path)
	}
}
