package server

import (
	"net/http"

	"github.com/bobmcallan/tally/internal/interfaces"
)

// --- External account handlers ---

// handleAccounts handles GET (list) and POST (create) on /api/accounts.
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := s.app.LedgerService.ListAccounts(r.Context(), userID)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"accounts": accounts,
		})
	case http.MethodPost:
		var input interfaces.AccountInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		acct, err := s.app.LedgerService.CreateAccount(r.Context(), userID, input)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, acct)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleAccount handles GET, PATCH and DELETE on /api/accounts/{id}.
func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request, userID, id string) {
	switch r.Method {
	case http.MethodGet:
		acct, err := s.app.LedgerService.GetAccount(r.Context(), userID, id)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, acct)
	case http.MethodPatch:
		var update interfaces.AccountUpdate
		if !DecodeJSON(w, r, &update) {
			return
		}
		acct, err := s.app.LedgerService.UpdateAccount(r.Context(), userID, id, update)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, acct)
	case http.MethodDelete:
		if err := s.app.LedgerService.DeleteAccount(r.Context(), userID, id); err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// handleAccountEntries handles GET (history) and POST (record value) on
// /api/accounts/{id}/entries.
func (s *Server) handleAccountEntries(w http.ResponseWriter, r *http.Request, userID, id string) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.app.LedgerService.ListEntries(r.Context(), userID, id)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"account_id": id,
			"entries":    entries,
		})
	case http.MethodPost:
		var input interfaces.EntryInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		entry, err := s.app.LedgerService.RecordValue(r.Context(), userID, id, input)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, entry)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}
