package intent

import (
	"testing"

	"assistd/pkg/types"
)

func TestParseDirectLabels(t *testing.T) {
	cases := []struct {
		raw  string
		want types.RouteDecision
	}{
		{"reports_analysis", types.RouteReports},
		{"  Documentation_Search\n", types.RouteDocumentation},
		{"general_question", types.RouteGeneral},
		{"the intent here is clearly reports_analysis, because...", types.RouteReports},
	}
	for _, c := range cases {
		if got := Parse(c.raw, ""); got != c.want {
			t.Fatalf("Parse(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestParseFallsBackToKeywords(t *testing.T) {
	cases := []struct {
		query string
		want  types.RouteDecision
	}{
		{"show me the flow rate per well for march", types.RouteReports},
		{"how to configure the export interface", types.RouteDocumentation},
		{"good morning", types.RouteGeneral},
		{"", types.RouteGeneral},
	}
	for _, c := range cases {
		if got := Parse("I cannot decide", c.query); got != c.want {
			t.Fatalf("fallback for %q = %s, want %s", c.query, got, c.want)
		}
	}
}

func TestFallbackPrefersReportsOnTie(t *testing.T) {
	// One hit on each list: report wins because documentation requires a
	// strictly higher score.
	q := "show the manual"
	if got := Fallback(q); got != types.RouteReports {
		t.Fatalf("Fallback(%q) = %s, want %s", q, got, types.RouteReports)
	}
}
