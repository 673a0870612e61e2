package handlers

import (
	"net/http"

	"github.com/eden-finance/vest-sub001/api/types"
)

// TreasuryHandler handles treasury-related HTTP requests
type TreasuryHandler struct {
	service types.TreasuryService
}

// NewTreasuryHandler creates a new treasury handler
func NewTreasuryHandler(service types.TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{service: service}
}

// HandleTreasury handles GET /v1/treasury
func (h *TreasuryHandler) HandleTreasury(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	info, err := h.service.GetTreasury(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "treasury_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// HandleFeeEvents handles GET /v1/treasury/events
func (h *TreasuryHandler) HandleFeeEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	events, err := h.service.GetFeeEvents(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fee_events_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  len(events),
	})
}
