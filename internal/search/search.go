// Package search is the boundary to the external report and documentation
// indexes. The assistant core depends on the Index interface only; the
// Elasticsearch implementation lives in elastic.go.
package search

import "context"

// Document is one documentation passage relevant to a query.
type Document struct {
	Score   float64
	Content string
}

// ReportHit is one report document matched by a discovery query.
type ReportHit struct {
	ID          string
	Score       float64
	Description string
	Tags        []string
}

// Index is the search collaborator contract.
type Index interface {
	// Reports returns ranked report hits for a user query, best first.
	Reports(ctx context.Context, query string) ([]ReportHit, error)
	// Documents returns up to size documentation passages for a query.
	Documents(ctx context.Context, query string, size int) ([]Document, error)
	// Ping verifies the index is reachable.
	Ping(ctx context.Context) error
}
