// Package registry holds the catalog of analyzable reports. The catalog maps
// a stable report id to its title, description and table source, and is what
// report discovery and selection resolve against.
package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"assistd/internal/common/fsutil"
	"assistd/pkg/types"
)

// builtin is the default catalog shipped with the daemon. A catalog file
// replaces it wholesale when configured.
var builtin = []types.Report{
	{
		ID:          "work_plan",
		Title:       "Work plan",
		Description: "Planned field works: repairs, well interventions, crews and scheduled dates.",
		DocID:       "oil_event",
		Source:      "oil_event",
	},
	{
		ID:          "drilling_report",
		Title:       "Drilling report",
		Description: "Daily drilling progress: depth, penetration rate and rig operations.",
		DocID:       "chess_rep",
		Source:      "chess_rep",
	},
	{
		ID:          "measurement_report",
		Title:       "Measured production report",
		Description: "Well measurement results: liquid rate, water cut and gas factor per well.",
		DocID:       "measure_rep",
		Source:      "measure_rep",
	},
	{
		ID:          "gas_utilization",
		Title:       "Gas utilization report",
		Description: "Associated gas balance: produced, utilized and flared volumes per facility.",
		DocID:       "gaz_rep",
		Source:      "gaz_rep",
	},
}

// Registry is an immutable report catalog. Build it once at startup.
type Registry struct {
	reports []types.Report
	byID    map[string]types.Report
	byDocID map[string]types.Report
}

// New builds a registry from the given reports, validating ids are unique.
func New(reports []types.Report) (*Registry, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("empty report catalog")
	}
	r := &Registry{
		reports: make([]types.Report, len(reports)),
		byID:    make(map[string]types.Report, len(reports)),
		byDocID: make(map[string]types.Report, len(reports)),
	}
	copy(r.reports, reports)
	for _, rep := range reports {
		if rep.ID == "" {
			return nil, fmt.Errorf("report with empty id in catalog")
		}
		if _, dup := r.byID[rep.ID]; dup {
			return nil, fmt.Errorf("duplicate report id %q in catalog", rep.ID)
		}
		r.byID[rep.ID] = rep
		if rep.DocID != "" {
			r.byDocID[rep.DocID] = rep
		}
	}
	return r, nil
}

// Builtin returns the registry over the default catalog.
func Builtin() *Registry {
	r, err := New(builtin)
	if err != nil {
		// the builtin catalog is a package constant; this cannot happen
		panic(err)
	}
	return r
}

// Load reads a YAML catalog file, or returns the builtin catalog when path is
// empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Builtin(), nil
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Reports []types.Report `yaml:"reports"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", p, err)
	}
	return New(doc.Reports)
}

// All returns the catalog in a stable order.
func (r *Registry) All() []types.Report {
	out := make([]types.Report, len(r.reports))
	copy(out, r.reports)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get looks a report up by its catalog id.
func (r *Registry) Get(id string) (types.Report, bool) {
	rep, ok := r.byID[id]
	return rep, ok
}

// GetByDocID looks a report up by its search-index document id.
func (r *Registry) GetByDocID(docID string) (types.Report, bool) {
	rep, ok := r.byDocID[docID]
	return rep, ok
}

// DocIDs returns the index document ids of every cataloged report. Report
// discovery restricts its search to these.
func (r *Registry) DocIDs() []string {
	ids := make([]string, 0, len(r.byDocID))
	for id := range r.byDocID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MatchTitle finds reports whose title or id contains the query, case
// insensitively. Used for direct mentions like "open the drilling report".
func (r *Registry) MatchTitle(query string) []types.Report {
	q := strings.ToLower(query)
	var out []types.Report
	for _, rep := range r.All() {
		if strings.Contains(q, strings.ToLower(rep.Title)) || strings.Contains(q, strings.ToLower(rep.ID)) {
			out = append(out, rep)
		}
	}
	return out
}
