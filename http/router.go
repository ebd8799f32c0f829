package http

import "net/http"

// NewRouter wires the handlers onto a mux. The CPU-heavy endpoints share
// the limiter; metrics may be nil.
func NewRouter(
	simulation *SimulationHandler,
	returns *ReturnsHandler,
	limiter *RateLimiter,
	metrics http.Handler,
) *http.ServeMux {
	limited := func(h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return RateLimitMiddleware(limiter, h)
	}

	mux := http.NewServeMux()
	mux.Handle("/simulation/run", limited(simulation.RunSimulation))
	mux.Handle("/simulation/trace", limited(simulation.TraceSimulation))
	mux.HandleFunc("/simulation/runs", simulation.ListRuns)
	mux.HandleFunc("/simulation/runs/{id}", simulation.GetRun)
	mux.HandleFunc("/simulation/runs/{id}/pdf", simulation.RunPDF)
	mux.HandleFunc("/simulation/defaults", simulation.Defaults)
	mux.HandleFunc("/returns", returns.GetReturns)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	return mux
}
