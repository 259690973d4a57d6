package types

// RouteDecision classifies a user turn into one of the assistant's pipelines.
type RouteDecision string

const (
	RouteReports       RouteDecision = "reports_analysis"
	RouteDocumentation RouteDecision = "documentation_search"
	RouteGeneral       RouteDecision = "general_question"
)

// Report describes one analyzable report in the catalog.
type Report struct {
	// Stable identifier for the report.
	// example: work_plan
	ID string `json:"id" yaml:"id"`
	// Human-friendly title.
	// example: Field work plan
	Title string `json:"title" yaml:"title"`
	// Short description of what the report covers.
	Description string `json:"description" yaml:"description"`
	// Document id under which the report is indexed for search.
	// example: oil_event
	DocID string `json:"doc_id" yaml:"doc_id"`
	// Identifier of the tabular source backing the report.
	// example: work_plan.xlsx
	Source string `json:"source" yaml:"source"`
}

// ReportOption is one selectable report offered to the user when a query
// matches more than one report.
type ReportOption struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
