package backend

import "context"

// Generation budgets per operation, mirroring how much each answer is allowed
// to ramble. Classification is deliberately tiny and deterministic.
var (
	classifyOpts      = Options{MaxTokens: 50, Temperature: 0}
	codeOpts          = Options{MaxTokens: 1000, Temperature: 0}
	finalOpts         = Options{MaxTokens: 4000, Temperature: 0}
	documentationOpts = Options{MaxTokens: 7000, Temperature: 0}
	combinedOpts      = Options{MaxTokens: 6000, Temperature: 0}
)

// Dispatcher routes a typed payload to its prompt and invokes the generator
// exactly once. It is the queue worker's execution target.
type Dispatcher struct {
	gen Generator
}

func NewDispatcher(gen Generator) *Dispatcher {
	return &Dispatcher{gen: gen}
}

// Execute performs the generation call for one payload. Failures propagate to
// the caller; the queue worker records them on the owning request instead of
// letting them escape the drain loop.
func (d *Dispatcher) Execute(ctx context.Context, p Payload) (string, error) {
	switch p := p.(type) {
	case ClassifyIntent:
		return d.gen.Generate(ctx, classifyMessages(p.Query), classifyOpts)
	case WorkPlanCode:
		return d.gen.Generate(ctx, codeMessages("field work plan", p.Query, p.TableInfo, p.Selected), codeOpts)
	case DrillingCode:
		return d.gen.Generate(ctx, codeMessages("drilling samples (density and solids)", p.Query, "", p.Selected), codeOpts)
	case MeasurementCode:
		return d.gen.Generate(ctx, codeMessages("measured production", p.Query, "", p.Selected), codeOpts)
	case GasUtilizationCode:
		return d.gen.Generate(ctx, codeMessages("gas utilization", p.Query, "", p.Selected), codeOpts)
	case FinalAnswer:
		return d.gen.Generate(ctx, finalAnswerMessages(p), finalOpts)
	case DocumentationAnswer:
		if len(p.Passages) == 0 {
			return "No relevant documentation was found for this question. Try rephrasing it or contact the system administrator.", nil
		}
		return d.gen.Generate(ctx, documentationMessages(p), documentationOpts)
	case CombinedSummary:
		return d.gen.Generate(ctx, combinedMessages(p), combinedOpts)
	case Unknown:
		return "", unknownOperationError{name: p.Name}
	default:
		return "", unknownOperationError{name: string(p.Operation())}
	}
}
