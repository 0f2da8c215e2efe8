package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Analysis API
	mux.HandleFunc("/analyze", s.app.AnalysisHandler.AnalyzeHandler)         // POST - submit analysis
	mux.HandleFunc("/api/backtest", s.app.AnalysisHandler.BacktestHandler)   // POST - evaluate forecasters
	mux.HandleFunc("/status/", s.app.AnalysisHandler.StatusHandler)          // GET /{id} - poll job state
	mux.HandleFunc("/data/", s.app.AnalysisHandler.DataHandler)              // GET /{ticker} - simple artifacts
	mux.HandleFunc("/hybrid_data/", s.app.AnalysisHandler.HybridDataHandler) // GET /{ticker} - hybrid artifact

	// System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
