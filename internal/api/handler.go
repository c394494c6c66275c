// Package api provides the HTTP JSON handlers consumed by the dashboard UI.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sgjobs-insights/internal/domain"
	"sgjobs-insights/internal/service"
)

// Defaults carries the request defaults and guardrails from configuration.
type Defaults struct {
	CapPercentile float64
	BinCount      int
	MaxSampleRows int
}

// Handler serves the analytics API.
type Handler struct {
	insights *service.Insights
	defaults Defaults
}

// NewHandler creates a Handler over the insights service.
func NewHandler(insights *service.Insights, defaults Defaults) *Handler {
	return &Handler{insights: insights, defaults: defaults}
}

// Routes mounts all API routes on a new chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/filters", h.filterOptions)
		r.Post("/salary/heatmap", h.salaryHeatmap)
		r.Post("/salary/summary", h.salarySummary)
		r.Post("/jobs/sample", h.jobsSample)
		r.Post("/companies/top", h.topCompanies)
		r.Get("/history", h.history)
		r.Post("/cache/clear", h.clearCache)
	})
	return r
}

// filtersPayload is the FilterSet as it appears in request bodies.
type filtersPayload struct {
	PositionLevels  []string `json:"position_levels"`
	Categories      []string `json:"categories"`
	EmploymentTypes []string `json:"employment_types"`
	StatusGroups    []string `json:"status_groups"`
}

func (p filtersPayload) toDomain() domain.FilterSet {
	return domain.FilterSet{
		PositionLevels:  p.PositionLevels,
		Categories:      p.Categories,
		EmploymentTypes: p.EmploymentTypes,
		StatusGroups:    p.StatusGroups,
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) filterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.insights.FilterOptions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

type heatmapRequest struct {
	Filters       filtersPayload `json:"filters"`
	CapPercentile *float64       `json:"cap_percentile"`
	BinCount      *int           `json:"bin_count"`
}

func (h *Handler) salaryHeatmap(w http.ResponseWriter, r *http.Request) {
	var req heatmapRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	params := domain.HeatmapParams{
		CapPercentile: h.defaults.CapPercentile,
		BinCount:      h.defaults.BinCount,
	}
	if req.CapPercentile != nil {
		params.CapPercentile = *req.CapPercentile
	}
	if req.BinCount != nil {
		params.BinCount = *req.BinCount
	}

	result, err := h.insights.SalaryHeatmap(r.Context(), req.Filters.toDomain(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type summaryRequest struct {
	Filters filtersPayload `json:"filters"`
}

func (h *Handler) salarySummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.insights.SalarySummary(r.Context(), req.Filters.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type sampleRequest struct {
	Filters filtersPayload `json:"filters"`
	MaxRows int            `json:"max_rows"`
}

func (h *Handler) jobsSample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.MaxRows > h.defaults.MaxSampleRows {
		writeError(w, domain.ErrValidation("max_rows %d exceeds the server cap of %d", req.MaxRows, h.defaults.MaxSampleRows))
		return
	}

	rows, err := h.insights.DetailSample(r.Context(), req.Filters.toDomain(), domain.SampleParams{MaxRows: req.MaxRows})
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []domain.JobRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows, "row_count": len(rows)})
}

type topCompaniesRequest struct {
	Filters filtersPayload `json:"filters"`
	TopN    int            `json:"top_n"`
}

func (h *Handler) topCompanies(w http.ResponseWriter, r *http.Request) {
	var req topCompaniesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.TopN == 0 {
		req.TopN = 10
	}

	stats, err := h.insights.TopCompanies(r.Context(), req.Filters.toDomain(), req.TopN)
	if err != nil {
		writeError(w, err)
		return
	}
	if stats == nil {
		stats = []domain.CompanyStat{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": stats})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, domain.ErrValidation("invalid limit %q", v))
			return
		}
		limit = n
	}

	records, err := h.insights.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.QueryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	h.insights.ClearCaches()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return domain.ErrValidation("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}

	var execution *domain.ExecutionError
	if errors.As(err, &execution) {
		body.SQL = execution.SQL
		body.Params = fmt.Sprintf("%v", execution.Params)
	}

	writeJSON(w, httpStatusFromDomainError(err), body)
}
