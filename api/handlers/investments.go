package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/eden-finance/vest-sub001/api/types"
)

// InvestmentHandler handles investment-related HTTP requests
type InvestmentHandler struct {
	service types.InvestmentService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(service types.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{service: service}
}

// HandleInvest handles POST /v1/invest
func (h *InvestmentHandler) HandleInvest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.InvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	if req.PoolID == "" {
		writeError(w, http.StatusBadRequest, "missing_pool_id", "pool_id is required")
		return
	}
	if req.Amount == "" {
		writeError(w, http.StatusBadRequest, "missing_amount", "amount is required")
		return
	}
	if req.Investor == "" {
		req.Investor = r.Header.Get("X-Investor-Address")
	}
	if req.Investor == "" {
		writeError(w, http.StatusBadRequest, "missing_investor", "investor address is required")
		return
	}

	resp, err := h.service.Invest(r.Context(), &req)
	if err != nil {
		writeServiceError(w, "invest_failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleInvestWithSwap handles POST /v1/invest/swap
func (h *InvestmentHandler) HandleInvestWithSwap(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.InvestWithSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	if req.PoolID == "" {
		writeError(w, http.StatusBadRequest, "missing_pool_id", "pool_id is required")
		return
	}
	if req.TokenIn == "" {
		writeError(w, http.StatusBadRequest, "missing_token_in", "token_in is required")
		return
	}
	if req.AmountIn == "" {
		writeError(w, http.StatusBadRequest, "missing_amount_in", "amount_in is required")
		return
	}
	if req.MinAmountOut == "" {
		writeError(w, http.StatusBadRequest, "missing_min_amount_out", "min_amount_out is required")
		return
	}
	if req.Deadline == 0 {
		writeError(w, http.StatusBadRequest, "missing_deadline", "deadline is required")
		return
	}
	if req.Investor == "" {
		req.Investor = r.Header.Get("X-Investor-Address")
	}
	if req.Investor == "" {
		writeError(w, http.StatusBadRequest, "missing_investor", "investor address is required")
		return
	}

	resp, err := h.service.InvestWithSwap(r.Context(), &req)
	if err != nil {
		writeServiceError(w, "invest_with_swap_failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleWithdraw handles POST /v1/withdraw
func (h *InvestmentHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	if req.PoolID == "" {
		writeError(w, http.StatusBadRequest, "missing_pool_id", "pool_id is required")
		return
	}
	if req.ReceiptID == "" {
		writeError(w, http.StatusBadRequest, "missing_receipt_id", "receipt_id is required")
		return
	}
	if req.ShareAmount == "" {
		writeError(w, http.StatusBadRequest, "missing_share_amount", "share_amount is required")
		return
	}
	if req.Investor == "" {
		req.Investor = r.Header.Get("X-Investor-Address")
	}
	if req.Investor == "" {
		writeError(w, http.StatusBadRequest, "missing_investor", "investor address is required")
		return
	}

	resp, err := h.service.Withdraw(r.Context(), &req)
	if err != nil {
		writeServiceError(w, "withdraw_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleInvestment handles GET /v1/investments/{id}
func (h *InvestmentHandler) HandleInvestment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	prefix := "/v1/investments/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}
	investmentID := strings.TrimPrefix(r.URL.Path, prefix)
	if investmentID == "" {
		writeError(w, http.StatusBadRequest, "missing_investment_id", "Investment ID is required")
		return
	}

	investment, err := h.service.GetInvestment(r.Context(), investmentID)
	if err != nil {
		writeError(w, http.StatusNotFound, "investment_not_found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"investment": investment})
}

// HandleReceipt handles GET /v1/receipts/{id}
func (h *InvestmentHandler) HandleReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	prefix := "/v1/receipts/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}
	receiptID := strings.TrimPrefix(r.URL.Path, prefix)
	if receiptID == "" {
		writeError(w, http.StatusBadRequest, "missing_receipt_id", "Receipt ID is required")
		return
	}

	receipt, err := h.service.GetReceipt(r.Context(), receiptID)
	if err != nil {
		writeError(w, http.StatusNotFound, "receipt_not_found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"receipt": receipt})
}

// GetPoolInvestments handles GET /v1/pools/{poolId}/investments
func (h *InvestmentHandler) GetPoolInvestments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	poolID := r.Header.Get("X-Pool-ID")
	if poolID == "" {
		writeError(w, http.StatusBadRequest, "missing_pool_id", "Pool ID is required")
		return
	}

	req := &types.ListInvestmentsRequest{
		PoolID: poolID,
		Status: r.URL.Query().Get("status"),
		Limit:  parseLimit(r),
	}
	resp, err := h.service.ListInvestments(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_investments_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetInvestorInvestments handles GET /v1/investors/{address}/investments
func (h *InvestmentHandler) GetInvestorInvestments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	investor := r.Header.Get("X-Investor-Address")
	if investor == "" {
		writeError(w, http.StatusBadRequest, "missing_investor", "Investor address is required")
		return
	}

	req := &types.ListInvestmentsRequest{
		Investor: investor,
		PoolID:   r.URL.Query().Get("pool_id"),
		Status:   r.URL.Query().Get("status"),
		Limit:    parseLimit(r),
	}
	resp, err := h.service.ListInvestments(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_investments_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetInvestorReceipts handles GET /v1/investors/{address}/receipts
func (h *InvestmentHandler) GetInvestorReceipts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	investor := r.Header.Get("X-Investor-Address")
	if investor == "" {
		writeError(w, http.StatusBadRequest, "missing_investor", "Investor address is required")
		return
	}

	receipts, err := h.service.ListReceipts(r.Context(), investor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_receipts_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"receipts": receipts,
		"total":    len(receipts),
	})
}

// HandlePendingMaturities handles GET /v1/maturities/pending
func (h *InvestmentHandler) HandlePendingMaturities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	pending, err := h.service.PendingMaturities(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "pending_maturities_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pending": pending,
		"total":   len(pending),
	})
}

// parseLimit reads the limit query parameter, zero when absent or malformed
func parseLimit(r *http.Request) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// writeServiceError maps service failures onto HTTP statuses by message
// shape: lookups that missed are 404, ownership rejections are 403, and
// everything else is a plain bad request.
func writeServiceError(w http.ResponseWriter, code string, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found") || strings.Contains(msg, "not registered"):
		writeError(w, http.StatusNotFound, code, msg)
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "does not own"):
		writeError(w, http.StatusForbidden, code, msg)
	default:
		writeError(w, http.StatusBadRequest, code, msg)
	}
}
