package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assistd/internal/queue"
	"assistd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Ask(ctx context.Context, req types.AskRequest, sink queue.ProgressFunc) (*types.AskResponse, error)
	Enqueue(sessionID, operation string, args map[string]any) string
	Position(id string) types.PositionResponse
	Result(id string) (string, error)
	Status() types.StatusResponse
	Ready(ctx context.Context) error
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeJSON[types.AskRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeJSONError(w, http.StatusBadRequest, "query is required")
			return
		}

		// Stream progress and the terminal answer as NDJSON lines. The sink
		// runs on this goroutine (the wait loop is synchronous), so writing
		// without extra locking is safe.
		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		writeLine := func(line types.AskStreamLine) {
			_ = enc.Encode(line)
			if flush != nil {
				flush()
			}
		}
		sink := func(p queue.Progress) {
			writeLine(types.AskStreamLine{Progress: &types.ProgressEvent{
				Phase:          string(p.Phase),
				Percent:        p.Percent,
				Message:        p.Message,
				ElapsedSeconds: int64(p.Elapsed.Seconds()),
			}})
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		if lvl >= LevelInfo {
			z := zlog.Info().Str("path", r.URL.Path).Str("session_id", req.SessionID)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("ask start")
		}
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Ask(joinedCtx, req, sink)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeLine(types.AskStreamLine{Error: err.Error()})
			if lvl >= LevelError {
				zlog.Error().Err(err).Dur("dur", time.Since(start)).Msg("ask end")
			}
			return
		}
		writeLine(types.AskStreamLine{Answer: resp})
		if lvl >= LevelInfo {
			zlog.Info().Str("route", resp.Route).Dur("dur", time.Since(start)).Msg("ask end")
		}
	})

	r.Post("/requests", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeJSON[types.EnqueueRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.Operation) == "" {
			writeJSONError(w, http.StatusBadRequest, "operation is required")
			return
		}
		id := svc.Enqueue(req.SessionID, req.Operation, req.Arguments)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(types.EnqueueResponse{RequestID: id})
	})

	r.Get("/requests/{id}", func(w http.ResponseWriter, r *http.Request) {
		pos := svc.Position(chi.URLParam(r, "id"))
		if pos.Phase == string(queue.PhaseNotFound) {
			writeJSONError(w, http.StatusNotFound, "request not found: "+pos.RequestID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pos)
	})

	r.Get("/requests/{id}/result", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		result, err := svc.Result(id)
		if err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.ResultResponse{RequestID: id, Result: result})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces the JSON content type and body size limit, then decodes
// the request body. On failure it writes the error response itself.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return req, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}
