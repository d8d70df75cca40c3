package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/api"
	"github.com/aretw0/abacus/pkg/arith"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/runner"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds request bodies independently of the expression limit.
const maxBodySize = 1 << 20

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves a Calculator over HTTP.
type Server struct {
	Calculator ports.Calculator

	doc           *openapi3.T
	requestSchema *openapi3.Schema
	gatherer      prometheus.Gatherer
	logger        *slog.Logger
	historyLimit  int
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves the gatherer on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistoryLimit sets how many evaluations GET /history returns without a limit parameter.
func WithHistoryLimit(n int) Option {
	return func(s *Server) {
		s.historyLimit = n
	}
}

// NewHandler creates a new HTTP handler for the calculator.
func NewHandler(calc ports.Calculator, opts ...Option) (http.Handler, error) {
	doc, err := api.Load(context.Background())
	if err != nil {
		return nil, err
	}
	schema, err := api.Schema(doc, "EvaluateRequest")
	if err != nil {
		return nil, err
	}

	s := &Server{
		Calculator:    calc,
		doc:           doc,
		requestSchema: schema,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/evaluate", s.Evaluate)
	for _, op := range arith.Ops {
		r.Get("/"+op.String(), s.Apply(op))
	}
	r.Route("/history", func(r chi.Router) {
		r.Get("/", s.ListHistory)
		r.Delete("/", s.ClearHistory)
		r.Get("/{id}", s.GetEvaluation)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Abacus API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Evaluate handles the POST /evaluate request.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}
	if len(data) > maxBodySize {
		s.writeError(w, http.StatusRequestEntityTooLarge, runner.ErrInputTooLarge)
		return
	}

	// Validate the generic document first so schema errors name the offending field.
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("Evaluate: Invalid request body", "error", err)
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := s.requestSchema.VisitJSON(raw); err != nil {
		s.logger.Warn("Evaluate: Request does not match schema", "error", err)
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var body EvaluateRequest
	if err := json.Unmarshal(data, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	rec, err := s.Calculator.Evaluate(r.Context(), body.Expression)
	s.writeEvaluation(w, rec, err)
}

// Apply returns the handler for GET /<op>?a=&b=.
func (s *Server) Apply(op arith.Op) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has("a") || !q.Has("b") {
			s.writeError(w, http.StatusBadRequest, errors.New("query parameters a and b are required"))
			return
		}

		rec, err := s.Calculator.Apply(r.Context(), op, q.Get("a"), q.Get("b"))
		s.writeEvaluation(w, rec, err)
	}
}

// ListHistory handles the GET /history request.
func (s *Server) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	list, err := s.Calculator.History(r.Context(), limit)
	if err != nil {
		s.logger.Error("ListHistory failed", "error", err)
		s.writeError(w, statusFor(err), err)
		return
	}
	if list == nil {
		list = []domain.Evaluation{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

// GetEvaluation handles the GET /history/{id} request.
func (s *Server) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Calculator.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// ClearHistory handles the DELETE /history request.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.Calculator.ClearHistory(r.Context()); err != nil {
		s.logger.Error("ClearHistory failed", "error", err)
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "abacus-http",
		"version":     abacus.Version,
		"api_version": apiVersion,
	})
}

// writeEvaluation answers with the record, or with the error when the
// calculation failed. Failed records are still stored in the history.
func (s *Server) writeEvaluation(w http.ResponseWriter, rec *domain.Evaluation, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("Evaluation failed", "error", err)
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// statusFor maps calculator errors to HTTP status codes.
func statusFor(err error) int {
	var syntaxErr *expr.SyntaxError
	switch {
	case errors.Is(err, domain.ErrEvaluationNotFound):
		return http.StatusNotFound
	case errors.Is(err, runner.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, arith.ErrDivideByZero):
		return http.StatusUnprocessableEntity
	case errors.As(err, &syntaxErr),
		errors.Is(err, arith.ErrInvalidNumber),
		errors.Is(err, expr.ErrEmptyExpression),
		errors.Is(err, expr.ErrInvalidUTF8),
		errors.Is(err, runner.ErrInvalidUTF8),
		errors.Is(err, domain.ErrEmptyID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}
