// Package workflow orchestrates one conversational turn: route the query,
// gather context from the search index and report tables, push every
// generation step through the shared queue, and assemble the final answer.
package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"assistd/internal/backend"
	"assistd/internal/intent"
	"assistd/internal/queue"
	"assistd/internal/registry"
	"assistd/internal/runner"
	"assistd/internal/search"
	"assistd/internal/tabular"
	"assistd/pkg/types"
)

const (
	// defaultDocPassages is how many documentation passages ground an answer.
	defaultDocPassages = 3
	// scoreGapFactor decides report ambiguity: the best hit wins outright only
	// when it scores at least this many times the runner-up.
	scoreGapFactor = 2.0
)

// TableLoader resolves a report's table source. *tabular.Loader implements it.
type TableLoader interface {
	Load(ctx context.Context, sourceID string) (*tabular.Table, error)
}

// CodeRunner executes generated analysis code. *runner.Runner implements it.
type CodeRunner interface {
	Run(ctx context.Context, code string, table *tabular.Table) (runner.Result, error)
}

// Config wires the orchestrator's collaborators. Queue, Index, Loader, Runner
// and Registry are required.
type Config struct {
	Queue       *queue.Manager
	Index       search.Index
	Loader      TableLoader
	Runner      CodeRunner
	Registry    *registry.Registry
	Logger      zerolog.Logger
	DocPassages int
}

// Service handles conversational turns and the raw queue API.
type Service struct {
	queue       *queue.Manager
	index       search.Index
	loader      TableLoader
	runner      CodeRunner
	registry    *registry.Registry
	log         zerolog.Logger
	docPassages int
}

func New(cfg Config) *Service {
	if cfg.DocPassages <= 0 {
		cfg.DocPassages = defaultDocPassages
	}
	return &Service{
		queue:       cfg.Queue,
		index:       cfg.Index,
		loader:      cfg.Loader,
		runner:      cfg.Runner,
		registry:    cfg.Registry,
		log:         cfg.Logger,
		docPassages: cfg.DocPassages,
	}
}

// Ask runs a full conversational turn. Progress of every generation step is
// delivered to sink; the returned response is terminal for the turn, either
// an answer or a report-selection prompt.
func (s *Service) Ask(ctx context.Context, req types.AskRequest, sink queue.ProgressFunc) (*types.AskResponse, error) {
	route := s.classify(ctx, req.SessionID, req.Query, sink)
	s.log.Info().Str("session_id", req.SessionID).Str("route", string(route)).Msg("turn routed")

	switch route {
	case types.RouteDocumentation:
		return s.answerDocumentation(ctx, req, sink)
	case types.RouteReports:
		return s.answerReports(ctx, req, sink)
	default:
		return s.answerGeneral(ctx, req, sink)
	}
}

// classify routes the query through the model, falling back to keyword
// scoring when the classification request itself fails.
func (s *Service) classify(ctx context.Context, sessionID, query string, sink queue.ProgressFunc) types.RouteDecision {
	raw, err := s.queue.Wait(ctx, sessionID, backend.ClassifyIntent{Query: query}, sink)
	if err != nil {
		s.log.Warn().Err(err).Msg("intent classification failed, using keyword fallback")
		return intent.Fallback(query)
	}
	return intent.Parse(raw, query)
}

func (s *Service) answerGeneral(ctx context.Context, req types.AskRequest, sink queue.ProgressFunc) (*types.AskResponse, error) {
	answer, err := s.queue.Wait(ctx, req.SessionID, backend.FinalAnswer{
		Query:       req.Query,
		SummaryType: "general",
	}, sink)
	if err != nil {
		return nil, err
	}
	return &types.AskResponse{Route: string(types.RouteGeneral), Answer: answer}, nil
}

func (s *Service) answerDocumentation(ctx context.Context, req types.AskRequest, sink queue.ProgressFunc) (*types.AskResponse, error) {
	var passages []string
	docs, err := s.index.Documents(ctx, req.Query, s.docPassages)
	if err != nil {
		// answer without grounding rather than failing the turn; the
		// dispatcher renders a no-documentation reply for zero passages
		s.log.Warn().Err(err).Msg("documentation search failed")
	}
	for _, d := range docs {
		passages = append(passages, d.Content)
	}
	answer, err := s.queue.Wait(ctx, req.SessionID, backend.DocumentationAnswer{
		Query:    req.Query,
		Passages: passages,
	}, sink)
	if err != nil {
		return nil, err
	}
	return &types.AskResponse{Route: string(types.RouteDocumentation), Answer: answer}, nil
}

func (s *Service) answerReports(ctx context.Context, req types.AskRequest, sink queue.ProgressFunc) (*types.AskResponse, error) {
	reports, options, err := s.resolveReports(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(options) > 0 {
		return &types.AskResponse{
			Route:          string(types.RouteReports),
			Options:        options,
			NeedsSelection: true,
		}, nil
	}

	selected := len(req.ReportIDs) > 0
	if len(reports) == 1 {
		return s.analyzeSingle(ctx, req, reports[0], selected, sink)
	}
	return s.analyzeCombined(ctx, req, reports, sink)
}

// resolveReports decides which catalog reports the turn targets. Explicit ids
// win; otherwise a direct title mention, then index discovery. An ambiguous
// or empty resolution yields options for the caller to choose from.
func (s *Service) resolveReports(ctx context.Context, req types.AskRequest) ([]types.Report, []types.ReportOption, error) {
	if len(req.ReportIDs) > 0 {
		reports := make([]types.Report, 0, len(req.ReportIDs))
		for _, id := range req.ReportIDs {
			rep, ok := s.registry.Get(id)
			if !ok {
				return nil, nil, unknownReportError{id: id}
			}
			reports = append(reports, rep)
		}
		return reports, nil, nil
	}

	if matched := s.registry.MatchTitle(req.Query); len(matched) == 1 {
		return matched, nil, nil
	}

	hits, err := s.index.Reports(ctx, req.Query)
	if err != nil {
		s.log.Warn().Err(err).Msg("report discovery failed, offering full catalog")
		return nil, s.catalogOptions(), nil
	}
	var candidates []types.Report
	var scores []float64
	for _, h := range hits {
		rep, ok := s.registry.GetByDocID(h.ID)
		if !ok {
			continue
		}
		candidates = append(candidates, rep)
		scores = append(scores, h.Score)
	}
	switch {
	case len(candidates) == 0:
		return nil, s.catalogOptions(), nil
	case len(candidates) == 1:
		return candidates[:1], nil, nil
	case scores[0] >= scoreGapFactor*scores[1]:
		// clear winner
		return candidates[:1], nil, nil
	}
	opts := make([]types.ReportOption, 0, len(candidates))
	for _, rep := range candidates {
		opts = append(opts, types.ReportOption{ID: rep.ID, Title: rep.Title, Description: rep.Description})
	}
	return nil, opts, nil
}

func (s *Service) catalogOptions() []types.ReportOption {
	all := s.registry.All()
	opts := make([]types.ReportOption, 0, len(all))
	for _, rep := range all {
		opts = append(opts, types.ReportOption{ID: rep.ID, Title: rep.Title, Description: rep.Description})
	}
	return opts
}

func (s *Service) analyzeSingle(ctx context.Context, req types.AskRequest, rep types.Report, selected bool, sink queue.ProgressFunc) (*types.AskResponse, error) {
	section, err := s.analyzeReport(ctx, req, rep, selected, sink)
	if err != nil {
		return nil, err
	}
	answer, err := s.queue.Wait(ctx, req.SessionID, backend.FinalAnswer{
		Query:       req.Query,
		Code:        section.code,
		Output:      section.output,
		SummaryType: rep.ID,
	}, sink)
	if err != nil {
		return nil, err
	}
	return &types.AskResponse{
		Route:    string(types.RouteReports),
		Answer:   answer,
		Code:     section.code,
		Output:   section.output,
		PlotPath: section.plotPath,
	}, nil
}

func (s *Service) analyzeCombined(ctx context.Context, req types.AskRequest, reports []types.Report, sink queue.ProgressFunc) (*types.AskResponse, error) {
	sections := make(map[string]string, len(reports))
	summary := make([]backend.SummarySection, 0, len(reports))
	plotPath := ""
	for _, rep := range reports {
		section, err := s.analyzeReport(ctx, req, rep, true, sink)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", rep.ID, err)
		}
		answer, err := s.queue.Wait(ctx, req.SessionID, backend.FinalAnswer{
			Query:       req.Query,
			Code:        section.code,
			Output:      section.output,
			SummaryType: rep.ID,
		}, sink)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", rep.ID, err)
		}
		sections[rep.ID] = answer
		summary = append(summary, backend.SummarySection{Title: rep.Title, Text: answer})
		if section.plotPath != "" {
			plotPath = section.plotPath
		}
	}
	combined, err := s.queue.Wait(ctx, req.SessionID, backend.CombinedSummary{
		Query:    req.Query,
		Sections: summary,
	}, sink)
	if err != nil {
		return nil, err
	}
	return &types.AskResponse{
		Route:    string(types.RouteReports),
		Answer:   combined,
		Sections: sections,
		PlotPath: plotPath,
	}, nil
}

type reportSection struct {
	code     string
	output   string
	plotPath string
}

// analyzeReport runs the code-generation and execution half of one report:
// load the table, generate analysis code through the queue, execute it.
func (s *Service) analyzeReport(ctx context.Context, req types.AskRequest, rep types.Report, selected bool, sink queue.ProgressFunc) (reportSection, error) {
	table, err := s.loader.Load(ctx, rep.Source)
	if err != nil {
		return reportSection{}, fmt.Errorf("load table for %s: %w", rep.ID, err)
	}
	code, err := s.queue.Wait(ctx, req.SessionID, s.codePayload(req.Query, rep, table.Info(), selected), sink)
	if err != nil {
		return reportSection{}, err
	}
	res, err := s.runner.Run(ctx, code, table)
	if err != nil {
		return reportSection{}, fmt.Errorf("execute analysis for %s: %w", rep.ID, err)
	}
	s.log.Debug().Str("report", rep.ID).Bool("plot", res.PlotPath != "").Msg("analysis executed")
	return reportSection{code: res.Code, output: res.Output, plotPath: res.PlotPath}, nil
}

// codePayload picks the domain-specific code generator for a report. Reports
// outside the builtin four use the work-plan generator, which is the only one
// that takes the table structure inline.
func (s *Service) codePayload(query string, rep types.Report, tableInfo string, selected bool) backend.Payload {
	sel := ""
	if selected {
		sel = rep.Title
	}
	switch rep.ID {
	case "drilling_report":
		return backend.DrillingCode{Query: query, Selected: sel}
	case "measurement_report":
		return backend.MeasurementCode{Query: query, Selected: sel}
	case "gas_utilization":
		return backend.GasUtilizationCode{Query: query, Selected: sel}
	default:
		return backend.WorkPlanCode{Query: query, TableInfo: tableInfo, Selected: sel}
	}
}
