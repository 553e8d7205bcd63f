package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// --- Growth handlers ---

// growthOptions reads sources, range and interval from the query string.
// Values are validated by the growth service.
func growthOptions(r *http.Request) interfaces.GrowthOptions {
	q := r.URL.Query()
	opts := interfaces.GrowthOptions{
		Range:    models.TimeRange(strings.TrimSpace(q.Get("range"))),
		Interval: strings.TrimSpace(q.Get("interval")),
	}
	for _, raw := range strings.Split(q.Get("sources"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			opts.Sources = append(opts.Sources, models.Source(strings.ToLower(raw)))
		}
	}
	return opts
}

// handleGrowth handles GET /api/growth[?sources=&range=&interval=].
func (s *Server) handleGrowth(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	points, err := s.app.GrowthService.BuildGrowthSeries(r.Context(), userID, growthOptions(r))
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"points": points,
	})
}

// handleSourceGrowth handles GET /api/growth/{source}.
func (s *Server) handleSourceGrowth(w http.ResponseWriter, r *http.Request, userID, rawSource string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	source, ok := models.ParseSource(rawSource)
	if !ok {
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("unknown source %q", rawSource), Code: "not_found"})
		return
	}

	points, err := s.app.GrowthService.BuildSourceGrowthSeries(r.Context(), userID, source, growthOptions(r))
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"source": source,
		"points": points,
	})
}

// handleGrowthChart handles GET /api/growth/chart.png.
func (s *Server) handleGrowthChart(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.GrowthService.RenderChart(r.Context(), userID, growthOptions(r))
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleNetWorth handles GET /api/networth.
func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.GrowthService.NetWorthSummary(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}
