package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"contractor-payments/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type AccountResponse struct {
	AccountID  int64  `json:"account_id"`
	FullName   string `json:"full_name"`
	Profession string `json:"profession"`
	Type       string `json:"type"`
	Balance    string `json:"balance"`
	Version    int64  `json:"version"`
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountID := vars["account_id"]

	account, err := h.accountService.GetAccount(r.Context(), accountID)
	if err != nil {
		handleError(w, err)
		return
	}

	response := AccountResponse{
		AccountID:  account.ID,
		FullName:   account.FullName(),
		Profession: account.Profession,
		Type:       string(account.Role),
		Balance:    account.Balance.StringFixed(2),
		Version:    account.Version,
	}

	writeJSON(w, http.StatusOK, response)
}
