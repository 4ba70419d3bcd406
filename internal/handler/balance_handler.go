package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"contractor-payments/internal/errors"
	"contractor-payments/internal/service"
)

type BalanceHandler struct {
	balanceService *service.BalanceService
}

func NewBalanceHandler(balanceService *service.BalanceService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

const maxDepositBody = 4 << 10

// DepositRequest keeps amount raw so that only JSON numbers are accepted.
type DepositRequest struct {
	Amount json.RawMessage `json:"amount"`
}

type DepositResponse struct {
	AccountID int64  `json:"account_id"`
	Balance   string `json:"balance"`
	Version   int64  `json:"version"`
}

func (h *BalanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := pathID(r, "user_id", errors.ErrInvalidAccount)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req DepositRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxDepositBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, appErr := parseAmount(req.Amount)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	deposit, err := h.balanceService.Deposit(r.Context(), accountID, amount)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DepositResponse{
		AccountID: deposit.AccountID,
		Balance:   deposit.Balance.StringFixed(2),
		Version:   deposit.Version,
	})
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, *errors.AppError) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, errors.ErrInvalidAmount.Detailed("amount must be a JSON number")
	}
	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, errors.ErrInvalidAmount.Detailed(err.Error())
	}
	return amount, nil
}
