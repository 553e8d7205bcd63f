package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/tally/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Imports and snapshots
	mux.HandleFunc("/api/imports", requireUser(rateLimit(s.importLimiter, s.handleImport)))
	mux.HandleFunc("/api/snapshots/", requireUser(s.routeSnapshots))
	mux.HandleFunc("/api/snapshots", requireUser(s.handleSnapshotList))

	// External accounts
	mux.HandleFunc("/api/accounts/", requireUser(s.routeAccounts))
	mux.HandleFunc("/api/accounts", requireUser(s.handleAccounts))

	// Growth
	mux.HandleFunc("/api/growth/", requireUser(s.routeGrowth))
	mux.HandleFunc("/api/growth", requireUser(s.handleGrowth))
	mux.HandleFunc("/api/networth", requireUser(s.handleNetWorth))
}

// routeSnapshots dispatches /api/snapshots/{id}[/holdings|/allocation].
func (s *Server) routeSnapshots(w http.ResponseWriter, r *http.Request, userID string) {
	id, sub := splitPath(r, "/api/snapshots/")
	if id == "" {
		s.handleSnapshotList(w, r, userID)
		return
	}

	switch sub {
	case "":
		s.handleSnapshot(w, r, userID, id)
	case "holdings":
		s.handleSnapshotHoldings(w, r, userID, id)
	case "allocation":
		s.handleSnapshotAllocation(w, r, userID, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeAccounts dispatches /api/accounts/{id}[/entries].
func (s *Server) routeAccounts(w http.ResponseWriter, r *http.Request, userID string) {
	id, sub := splitPath(r, "/api/accounts/")
	if id == "" {
		s.handleAccounts(w, r, userID)
		return
	}

	switch sub {
	case "":
		s.handleAccount(w, r, userID, id)
	case "entries":
		s.handleAccountEntries(w, r, userID, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeGrowth dispatches /api/growth/chart.png and /api/growth/{source}.
func (s *Server) routeGrowth(w http.ResponseWriter, r *http.Request, userID string) {
	name, sub := splitPath(r, "/api/growth/")
	switch {
	case name == "":
		s.handleGrowth(w, r, userID)
	case sub != "":
		WriteError(w, http.StatusNotFound, "Not found")
	case name == "chart.png":
		s.handleGrowthChart(w, r, userID)
	default:
		s.handleSourceGrowth(w, r, userID, name)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
