package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation.
type brokenStore struct{}

var errBroken = errors.New("disk on fire")

func (brokenStore) Append(context.Context, *domain.Evaluation) error { return errBroken }
func (brokenStore) Get(context.Context, string) (*domain.Evaluation, error) {
	return nil, errBroken
}
func (brokenStore) List(context.Context, int) ([]domain.Evaluation, error) { return nil, errBroken }
func (brokenStore) Clear(context.Context) error                             { return errBroken }

func newTestHandler(t *testing.T, calc *abacus.Calculator, opts ...Option) http.Handler {
	t.Helper()
	h, err := NewHandler(calc, opts...)
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestEvaluate_LiteralExpressions(t *testing.T) {
	h := newTestHandler(t, abacus.New())

	tests := []struct {
		expression string
		result     string
		kind       string
	}{
		{"1+1", "2", "int"},
		{"5-3", "2", "int"},
		{"2*3", "6", "int"},
		{"10/2", "5", "int"},
		{"1/3", "1/3", "rat"},
		{"0.5 * 3", "1.5", "float"},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/evaluate", `{"expression": "`+tt.expression+`"}`)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			rec := decode[domain.Evaluation](t, w)
			assert.Equal(t, tt.result, rec.Result)
			assert.Equal(t, tt.kind, rec.Kind)
			assert.NotEmpty(t, rec.ID)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	h := newTestHandler(t, abacus.New(abacus.WithMaxInputSize(8)))

	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"malformed json", `{"expression":`, http.StatusBadRequest, "invalid request body"},
		{"missing field", `{"expr": "1"}`, http.StatusBadRequest, "invalid request body"},
		{"wrong type", `{"expression": 1}`, http.StatusBadRequest, "invalid request body"},
		{"syntax", `{"expression": "1 +"}`, http.StatusBadRequest, "syntax error"},
		{"divide by zero", `{"expression": "1/0"}`, http.StatusUnprocessableEntity, "division by zero"},
		{"too large", `{"expression": "1+1+1+1+1"}`, http.StatusRequestEntityTooLarge, "maximum allowed size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/evaluate", tt.body)
			assert.Equal(t, tt.status, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.Contains(t, resp.Error, tt.msg)
		})
	}
}

func TestApply(t *testing.T) {
	h := newTestHandler(t, abacus.New())

	tests := []struct {
		target     string
		status     int
		expression string
		result     string
	}{
		{"/add?a=1&b=1", http.StatusOK, "1 + 1", "2"},
		{"/subtract?a=5&b=3", http.StatusOK, "5 - 3", "2"},
		{"/multiply?a=2&b=3", http.StatusOK, "2 * 3", "6"},
		{"/divide?a=10&b=2", http.StatusOK, "10 / 2", "5"},
		{"/add?a=9223372036854775807&b=1", http.StatusOK, "9223372036854775807 + 1", "9223372036854775808"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.target, "")
			require.Equal(t, tt.status, w.Code, w.Body.String())
			rec := decode[domain.Evaluation](t, w)
			assert.Equal(t, tt.expression, rec.Expression)
			assert.Equal(t, tt.result, rec.Result)
		})
	}

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodGet, "/divide?a=1&b=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/add?a=one&b=1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/add?a=1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/modulo?a=1&b=1", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/add?a=1&b=1", "").Code)
}

func TestApply_OperandLimits(t *testing.T) {
	store := memory.NewStore()
	h := newTestHandler(t, abacus.New(abacus.WithStore(store), abacus.WithMaxInputSize(4)))

	w := do(t, h, http.MethodGet, "/add?a=123456&b=1", "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Equal(t, 0, store.Len())

	w = do(t, h, http.MethodGet, "/add?a=%1B%5B2J&b=1", "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	list, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "[2J + 1", list[0].Expression)
}

func TestHistory(t *testing.T) {
	h := newTestHandler(t, abacus.New(), WithHistoryLimit(2))

	first := decode[domain.Evaluation](t, do(t, h, http.MethodGet, "/add?a=1&b=1", ""))
	do(t, h, http.MethodGet, "/add?a=2&b=2", "")
	do(t, h, http.MethodGet, "/divide?a=1&b=0", "")

	// Default limit from options.
	w := do(t, h, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]domain.Evaluation](t, w)
	require.Len(t, list, 2)
	assert.True(t, list[0].Failed(), "newest first, failures recorded")
	assert.Equal(t, "2 + 2", list[1].Expression)

	// Explicit limit, 0 means all.
	list = decode[[]domain.Evaluation](t, do(t, h, http.MethodGet, "/history?limit=0", ""))
	assert.Len(t, list, 3)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/history?limit=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/history?limit=x", "").Code)

	// Lookup.
	w = do(t, h, http.MethodGet, "/history/"+first.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decode[domain.Evaluation](t, w))
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/history/nope", "").Code)

	// Clear.
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/history", "").Code)
	w = do(t, h, http.MethodGet, "/history", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestStoreFailures(t *testing.T) {
	h := newTestHandler(t, abacus.New(abacus.WithStore(brokenStore{})))

	w := do(t, h, http.MethodPost, "/evaluate", `{"expression": "1 + 1"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "failed to record evaluation")

	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/history", "").Code)
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodDelete, "/history", "").Code)
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/history/x", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	calc := abacus.New(abacus.WithLifecycleHooks(m.Hooks()))

	// Disabled unless a gatherer is given.
	assert.Equal(t, http.StatusNotFound, do(t, newTestHandler(t, calc), http.MethodGet, "/metrics", "").Code)

	h := newTestHandler(t, calc, WithMetrics(reg))
	do(t, h, http.MethodGet, "/multiply?a=2&b=3", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `abacus_evaluations_total{op="multiply",outcome="ok"} 1`)
}

func TestServiceEndpoints(t *testing.T) {
	h := newTestHandler(t, abacus.New())

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	info := decode[map[string]string](t, do(t, h, http.MethodGet, "/info", ""))
	assert.Equal(t, "abacus-http", info["app"])
	assert.Equal(t, abacus.Version, info["version"])
	assert.Equal(t, "0.1.0", info["api_version"])

	w = do(t, h, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, http.MethodOptions, "/evaluate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
