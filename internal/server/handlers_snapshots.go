package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// --- Import & snapshot handlers ---

// handleImport handles POST /api/imports: multipart "file", "date"
// (YYYY-MM-DD) and optional "source".
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	maxBytes := int64(s.app.Config.Server.MaxUploadMB) << 20
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid upload: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "file is required", "invalid")
		return
	}
	defer file.Close()

	rawDate := strings.TrimSpace(r.FormValue("date"))
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "date must be YYYY-MM-DD", Code: "invalid", Field: "date"})
		return
	}

	result, err := s.app.ImportService.Import(r.Context(), interfaces.ImportRequest{
		UserID:       userID,
		Source:       models.Source(strings.TrimSpace(r.FormValue("source"))),
		SnapshotDate: date,
		Filename:     header.Filename,
		Body:         file,
	})
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// handleSnapshotList handles GET /api/snapshots[?source=].
func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var source models.Source
	if raw := r.URL.Query().Get("source"); raw != "" {
		src, ok := models.ParseSource(raw)
		if !ok {
			WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown source %q", raw), Code: "invalid", Field: "source"})
			return
		}
		source = src
	}

	snapshots, err := s.app.ImportService.ListSnapshots(r.Context(), userID, source)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": snapshots,
	})
}

// handleSnapshot handles GET and DELETE /api/snapshots/{id}.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, userID, id string) {
	switch r.Method {
	case http.MethodGet:
		snap, err := s.app.ImportService.GetSnapshot(r.Context(), userID, id)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	case http.MethodDelete:
		if err := s.app.ImportService.DeleteSnapshot(r.Context(), userID, id); err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleSnapshotHoldings(w http.ResponseWriter, r *http.Request, userID, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	holdings, err := s.app.ImportService.GetHoldings(r.Context(), userID, id)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": id,
		"holdings":    holdings,
	})
}

func (s *Server) handleSnapshotAllocation(w http.ResponseWriter, r *http.Request, userID, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	allocation, err := s.app.ImportService.GetAllocation(r.Context(), userID, id)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": id,
		"allocation":  allocation,
	})
}
