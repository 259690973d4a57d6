package types

// AskRequest is a full conversational turn submitted to POST /ask.
type AskRequest struct {
	// Identifier of the logical user session.
	// example: s-1042
	SessionID string `json:"session_id"`
	// Natural-language question about oilfield operations.
	// example: Show average well flow rate per crew for March.
	Query string `json:"query"`
	// Optional report ids to analyze. When empty the assistant resolves
	// candidates itself and may return options instead of an answer.
	// example: ["work_plan"]
	ReportIDs []string `json:"report_ids,omitempty"`
}

// AskResponse is the final payload of a conversational turn.
type AskResponse struct {
	// Pipeline the query was routed to.
	// example: reports_analysis
	Route string `json:"route"`
	// Final answer text.
	Answer string `json:"answer,omitempty"`
	// Generated analysis code, when a report pipeline ran.
	Code string `json:"code,omitempty"`
	// Raw textual output of the executed analysis code.
	Output string `json:"output,omitempty"`
	// Path to a rendered plot artifact, when one was produced.
	PlotPath string `json:"plot_path,omitempty"`
	// Per-report answer sections for multi-report turns, keyed by report id.
	Sections map[string]string `json:"sections,omitempty"`
	// Candidate reports when the query was ambiguous; the caller is expected
	// to re-ask with report_ids set.
	Options []ReportOption `json:"options,omitempty"`
	// True when Options is populated and no analysis was performed yet.
	NeedsSelection bool `json:"needs_selection,omitempty"`
}

// EnqueueRequest submits one raw generation request to POST /requests.
type EnqueueRequest struct {
	// Identifier of the logical user session.
	// example: s-1042
	SessionID string `json:"session_id"`
	// Operation tag, e.g. classify_intent or generate_work_plan_code.
	Operation string `json:"operation"`
	// Named arguments required by the operation.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// EnqueueResponse acknowledges an accepted generation request.
type EnqueueResponse struct {
	// Identifier to poll position and fetch the result with.
	// example: 3f9c01ab
	RequestID string `json:"request_id"`
}

// PositionResponse reports the coarse lifecycle phase of a request.
type PositionResponse struct {
	RequestID string `json:"request_id"`
	// One of waiting, processing, completed, error.
	// example: waiting
	Phase string `json:"phase"`
	// 1-based place among still-waiting requests; 0 while processing,
	// -1 otherwise.
	// example: 3
	Position int `json:"position"`
	// Human-readable status line.
	Message string `json:"message,omitempty"`
}

// ResultResponse carries the stored output of a completed request.
type ResultResponse struct {
	RequestID string `json:"request_id"`
	Result    string `json:"result"`
}

// ProgressEvent is one NDJSON line of the /ask progress stream.
type ProgressEvent struct {
	// Lifecycle phase of the request currently being waited on.
	// example: processing
	Phase string `json:"phase"`
	// Coarse completion percentage for progress display.
	// example: 75
	Percent int `json:"percent"`
	// Human-readable progress line.
	Message string `json:"message,omitempty"`
	// Seconds elapsed since the wait began.
	ElapsedSeconds int64 `json:"elapsed_seconds,omitempty"`
}

// AskStreamLine is the envelope for each line of the /ask NDJSON stream:
// progress lines first, then exactly one line with Answer or Error set.
type AskStreamLine struct {
	Progress *ProgressEvent `json:"progress,omitempty"`
	Answer   *AskResponse   `json:"answer,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall service state.
	// example: ready
	State string `json:"state"`
	// Number of requests still waiting in the queue.
	// example: 2
	QueueDepth int `json:"queue_depth"`
	// Request id currently being processed, empty when the worker is idle.
	Processing string `json:"processing,omitempty"`
	// Number of records still retained in the status table.
	// example: 17
	Records int `json:"records"`
	// True while the background worker goroutine is alive.
	WorkerRunning bool `json:"worker_running"`
	// Totals since process start.
	EnqueuedTotal  uint64 `json:"enqueued_total"`
	CompletedTotal uint64 `json:"completed_total"`
	FailedTotal    uint64 `json:"failed_total"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: request not found: 3f9c01ab
	Error string `json:"error"`
	// HTTP status code.
	// example: 404
	Code int `json:"code"`
}
