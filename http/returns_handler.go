package http

import (
	"net/http"
	"strconv"

	"student-loan-sim/service"
)

type ReturnsHandler struct {
	service *service.SimulationService
}

func NewReturnsHandler(service *service.SimulationService) *ReturnsHandler {
	return &ReturnsHandler{service: service}
}

// GetReturns handles GET /returns?ticker=SPY&years=20.
func (h *ReturnsHandler) GetReturns(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	years := 0
	if raw := r.URL.Query().Get("years"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid years", http.StatusBadRequest)
			return
		}
		years = n
	}

	returns, err := h.service.HistoricalReturns(r.Context(), ticker, years)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, returns)
}
