package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"student-loan-sim/domain"
	"student-loan-sim/report"
	"student-loan-sim/service"
)

type SimulationHandler struct {
	service    *service.SimulationService
	runTimeout time.Duration
}

func NewSimulationHandler(service *service.SimulationService, runTimeout time.Duration) *SimulationHandler {
	return &SimulationHandler{service: service, runTimeout: runTimeout}
}

type defaultsResponse struct {
	Parameters        domain.SimulationParameters `json:"parameters"`
	Simulations       int                         `json:"simulations"`
	LookbackYears     int                         `json:"lookback_years"`
	InvestmentOptions []domain.InvestmentOption   `json:"investment_options"`
}

// RunSimulation handles POST /simulation/run.
func (h *SimulationHandler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.SimulationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	record, err := h.service.Run(ctx, req, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// TraceSimulation handles POST /simulation/trace.
func (h *SimulationHandler) TraceSimulation(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.TraceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trace, err := h.service.Trace(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trace)
}

// GetRun handles GET /simulation/runs/{id}.
func (h *SimulationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	record, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// RunPDF handles GET /simulation/runs/{id}/pdf.
func (h *SimulationHandler) RunPDF(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	record, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	pdf, err := report.SummaryPDF(record)
	if err != nil {
		writeError(w, r, fmt.Errorf("render pdf for run %s: %w", record.ID, err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="simulation-%s.pdf"`, record.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("writing pdf response", "run_id", record.ID, "error", err)
	}
}

// ListRuns handles GET /simulation/runs?limit=N.
func (h *SimulationHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Defaults handles GET /simulation/defaults.
func (h *SimulationHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, defaultsResponse{
		Parameters:        h.service.Defaults(),
		Simulations:       service.DefaultSimulationCount,
		LookbackYears:     h.service.DefaultLookback(),
		InvestmentOptions: domain.InvestmentOptions,
	})
}
