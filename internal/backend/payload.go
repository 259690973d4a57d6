package backend

// Operation tags the kind of generation work a request carries. The set is
// closed; dispatch is exhaustive over it.
type Operation string

const (
	OpClassifyIntent      Operation = "classify_intent"
	OpWorkPlanCode        Operation = "generate_work_plan_code"
	OpDrillingCode        Operation = "generate_drilling_code"
	OpMeasurementCode     Operation = "generate_measurement_code"
	OpGasUtilizationCode  Operation = "generate_gas_utilization_code"
	OpFinalAnswer         Operation = "generate_final_response"
	OpDocumentationAnswer Operation = "generate_documentation_response"
	OpCombinedSummary     Operation = "generate_combined_analysis"
)

// Payload is the closed tagged-variant of generation requests. Each variant
// carries its own typed argument record.
type Payload interface {
	Operation() Operation
}

// ClassifyIntent asks the model which pipeline a user query belongs to.
type ClassifyIntent struct {
	Query string
}

func (ClassifyIntent) Operation() Operation { return OpClassifyIntent }

// WorkPlanCode generates analysis code for the field work plan report.
type WorkPlanCode struct {
	Query     string
	TableInfo string
	Selected  string
}

func (WorkPlanCode) Operation() Operation { return OpWorkPlanCode }

// DrillingCode generates analysis code for the drilling samples report.
type DrillingCode struct {
	Query    string
	Selected string
}

func (DrillingCode) Operation() Operation { return OpDrillingCode }

// MeasurementCode generates analysis code for the measured production report.
type MeasurementCode struct {
	Query    string
	Selected string
}

func (MeasurementCode) Operation() Operation { return OpMeasurementCode }

// GasUtilizationCode generates analysis code for the gas utilization report.
type GasUtilizationCode struct {
	Query    string
	Selected string
}

func (GasUtilizationCode) Operation() Operation { return OpGasUtilizationCode }

// FinalAnswer synthesizes the user-facing explanation of an executed analysis.
type FinalAnswer struct {
	Query       string
	Code        string
	Output      string
	SummaryType string
}

func (FinalAnswer) Operation() Operation { return OpFinalAnswer }

// DocumentationAnswer synthesizes an answer grounded in documentation passages.
type DocumentationAnswer struct {
	Query    string
	Passages []string
}

func (DocumentationAnswer) Operation() Operation { return OpDocumentationAnswer }

// SummarySection is one already-answered report section feeding a combined
// summary.
type SummarySection struct {
	Title string
	Text  string
}

// CombinedSummary condenses several per-report answers into one.
type CombinedSummary struct {
	Query    string
	Sections []SummarySection
}

func (CombinedSummary) Operation() Operation { return OpCombinedSummary }

// Unknown preserves an unrecognized operation tag so the request can still be
// enqueued and deterministically resolved to an error by the dispatcher.
type Unknown struct {
	Name string
}

func (u Unknown) Operation() Operation { return Operation(u.Name) }

// Parse maps a wire-level operation tag and argument map onto a typed
// payload. It never fails: unrecognized tags come back as Unknown so that
// callers waiting on such a request terminate with a recorded error instead
// of a silent drop.
func Parse(op string, args map[string]any) Payload {
	switch Operation(op) {
	case OpClassifyIntent:
		return ClassifyIntent{Query: str(args, "query")}
	case OpWorkPlanCode:
		return WorkPlanCode{Query: str(args, "query"), TableInfo: str(args, "table_info"), Selected: str(args, "selected_option")}
	case OpDrillingCode:
		return DrillingCode{Query: str(args, "query"), Selected: str(args, "selected_option")}
	case OpMeasurementCode:
		return MeasurementCode{Query: str(args, "query"), Selected: str(args, "selected_option")}
	case OpGasUtilizationCode:
		return GasUtilizationCode{Query: str(args, "query"), Selected: str(args, "selected_option")}
	case OpFinalAnswer:
		return FinalAnswer{
			Query:       str(args, "query"),
			Code:        str(args, "code"),
			Output:      str(args, "output"),
			SummaryType: str(args, "summary_type"),
		}
	case OpDocumentationAnswer:
		return DocumentationAnswer{Query: str(args, "query"), Passages: strs(args, "passages")}
	case OpCombinedSummary:
		p := CombinedSummary{Query: str(args, "query")}
		if raw, ok := args["sections"].(map[string]any); ok {
			for title, v := range raw {
				if s, ok := v.(string); ok {
					p.Sections = append(p.Sections, SummarySection{Title: title, Text: s})
				}
			}
		}
		return p
	default:
		return Unknown{Name: op}
	}
}

func str(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func strs(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
