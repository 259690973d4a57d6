// Package intent interprets the route classifier's output. The model is asked
// for exactly one label; when it rambles or fails, a keyword score over the
// raw query decides instead.
package intent

import (
	"strings"

	"assistd/pkg/types"
)

var docKeywords = []string{
	"how to", "instruction", "configure", "setup", "interface", "manual",
	"documentation", "where do i", "guide", "settings", "feature",
}

var reportKeywords = []string{
	"flow rate", "production", "well", "gas", "oil", "analysis", "chart",
	"plot", "show", "data", "report", "statistics", "crew", "drilling",
	"density", "utilization", "output",
}

// Parse maps the classifier's raw reply onto a route decision. An
// unrecognized reply falls back to keyword scoring of the original query.
func Parse(raw, query string) types.RouteDecision {
	r := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(r, string(types.RouteDocumentation)):
		return types.RouteDocumentation
	case strings.Contains(r, string(types.RouteReports)):
		return types.RouteReports
	case strings.Contains(r, string(types.RouteGeneral)):
		return types.RouteGeneral
	}
	return Fallback(query)
}

// Fallback scores the query against documentation and report keyword lists.
// Ties and empty scores resolve to a general question.
func Fallback(query string) types.RouteDecision {
	q := strings.ToLower(query)
	docScore := score(q, docKeywords)
	reportScore := score(q, reportKeywords)
	switch {
	case docScore > reportScore && docScore > 0:
		return types.RouteDocumentation
	case reportScore > 0:
		return types.RouteReports
	default:
		return types.RouteGeneral
	}
}

func score(q string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(q, w) {
			n++
		}
	}
	return n
}
