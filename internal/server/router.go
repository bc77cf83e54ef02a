package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bidscore/internal/score"
	"bidscore/internal/score/scorer"
	"bidscore/internal/template"
)

// maxBodyBytes limits the size of a calculation request body.
const maxBodyBytes = 1 << 20

// KindMalformed and KindNotFound complete the engine error kinds in API error bodies.
const (
	KindMalformed = "malformed_request"
	KindNotFound  = "not_found"
)

// Calculator evaluates calculation requests.
type Calculator interface {
	Score(ctx context.Context, request scorer.Request) (*scorer.Report, error)
}

// ReportsRepository gives access to stored calculation reports.
type ReportsRepository interface {
	Get(id string) (*scorer.Report, bool)
	List() []scorer.Summary
}

// TemplatesRepository gives access to preset rule sets.
type TemplatesRepository interface {
	List() []template.Template
	Get(id string) (template.Template, error)
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail"`
}

// ApiV1Router manages routes for API version 1 and the legacy calculate
// endpoints.
type ApiV1Router struct {
	calculator Calculator
	reports    ReportsRepository
	templates  TemplatesRepository
	// static — path to directory with static files.
	// If empty, static file serving is disabled.
	static string
}

// Mux returns a configured *http.ServeMux with registered handlers.
// Registers the following routes:
//   - POST /api/v1/calculations — runs a calculation
//   - GET /api/v1/calculations — lists recent calculations
//   - GET /api/v1/calculations/{id} — retrieves a calculation
//   - GET /api/v1/templates, GET /api/v1/templates/{id} — preset rule sets
//   - POST /api/calculate, /calculate, /api/tools/bidding/scoring/calculate — legacy aliases
//   - GET /static/... — serves static files (if enabled)
func (ar *ApiV1Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/calculations", ar.calculateHandler)
	mux.HandleFunc("GET /api/v1/calculations", ar.listCalculationsHandler)
	mux.HandleFunc("GET /api/v1/calculations/{id}", ar.calculationHandler)
	mux.HandleFunc("GET /api/v1/templates", ar.listTemplatesHandler)
	mux.HandleFunc("GET /api/v1/templates/{id}", ar.templateHandler)

	for _, path := range []string{"/api/calculate", "/calculate", "/api/tools/bidding/scoring/calculate"} {
		mux.HandleFunc("POST "+path, ar.legacyCalculateHandler)
	}

	if len(ar.static) != 0 {
		fs := http.FileServer(http.Dir(ar.static))
		mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
	}

	return mux
}

// calculateHandler decodes a calculation request and returns the report with
// status 201. Engine errors map to 400 (config, input) and 422 (computation).
func (ar *ApiV1Router) calculateHandler(w http.ResponseWriter, r *http.Request) {
	ar.calculate(w, r, http.StatusCreated)
}

// legacyCalculateHandler serves the old calculate paths, which answer 200.
func (ar *ApiV1Router) legacyCalculateHandler(w http.ResponseWriter, r *http.Request) {
	ar.calculate(w, r, http.StatusOK)
}

func (ar *ApiV1Router) calculate(w http.ResponseWriter, r *http.Request, status int) {
	defer r.Body.Close()

	var request scorer.Request
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&request); err != nil {
		slog.Warn("Unable to decode calculation request", "error", err)
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: KindMalformed, Detail: err.Error()})
		return
	}

	report, err := ar.calculator.Score(r.Context(), request)
	if err != nil {
		ar.writeScoreError(w, err)
		return
	}

	writeJSON(w, status, report)
}

func (ar *ApiV1Router) writeScoreError(w http.ResponseWriter, err error) {
	kind, ok := score.KindOf(err)
	if !ok {
		slog.Error("Calculation failed", "error", err)
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Detail: err.Error()})
		return
	}

	status := http.StatusBadRequest
	if kind == score.KindComputation {
		status = http.StatusUnprocessableEntity
	}

	var detail string
	var configErr *score.ConfigError
	var inputErr *score.InputError
	var computationErr *score.ComputationError
	switch {
	case errors.As(err, &configErr):
		detail = configErr.Message
	case errors.As(err, &inputErr):
		detail = inputErr.Message
	case errors.As(err, &computationErr):
		detail = computationErr.Message
	}

	slog.Info("Calculation rejected", "kind", kind, "field", score.FieldOf(err), "detail", detail)
	writeError(w, status, ErrorResponse{Error: string(kind), Field: score.FieldOf(err), Detail: detail})
}

func (ar *ApiV1Router) listCalculationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ar.reports.List())
}

// calculationHandler returns a stored report by id or 404.
func (ar *ApiV1Router) calculationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, found := ar.reports.Get(id)
	if !found {
		slog.Debug("Calculation not found", "id", id)
		writeError(w, http.StatusNotFound, ErrorResponse{Error: KindNotFound, Detail: "calculation not found: " + id})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (ar *ApiV1Router) listTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ar.templates.List())
}

func (ar *ApiV1Router) templateHandler(w http.ResponseWriter, r *http.Request) {
	t, err := ar.templates.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: KindNotFound, Detail: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func writeError(w http.ResponseWriter, status int, response ErrorResponse) {
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		slog.Warn("Unable to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// NewApiV1Router creates a new API v1 router.
// Parameters:
//   - static: path to static files (can be empty)
//   - calculator: evaluates calculation requests
//   - reports: stored reports
//   - templates: preset rule sets
func NewApiV1Router(
	static string,
	calculator Calculator,
	reports ReportsRepository,
	templates TemplatesRepository,
) *ApiV1Router {
	return &ApiV1Router{
		calculator: calculator,
		reports:    reports,
		templates:  templates,
		static:     static,
	}
}
