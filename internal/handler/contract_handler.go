package handler

import (
	"net/http"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
	"contractor-payments/internal/service"
)

type ContractHandler struct {
	queryService *service.QueryService
}

func NewContractHandler(queryService *service.QueryService) *ContractHandler {
	return &ContractHandler{
		queryService: queryService,
	}
}

type ContractResponse struct {
	ID           int64  `json:"id"`
	Terms        string `json:"terms"`
	Status       string `json:"status"`
	ClientID     int64  `json:"client_id"`
	ContractorID int64  `json:"contractor_id"`
}

type JobResponse struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Paid        bool    `json:"paid"`
	PaymentDate *string `json:"payment_date,omitempty"`
	ContractID  int64   `json:"contract_id"`
}

func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	caller, appErr := callerID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	id, appErr := pathID(r, "id", errors.ErrContractNotFound)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	contract, err := h.queryService.GetContract(r.Context(), id, caller)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractResponse(contract))
}

func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	caller, appErr := callerID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	contracts, err := h.queryService.ListContracts(r.Context(), caller)
	if err != nil {
		handleError(w, err)
		return
	}

	response := make([]ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		response = append(response, toContractResponse(c))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *ContractHandler) ListUnpaidJobs(w http.ResponseWriter, r *http.Request) {
	caller, appErr := callerID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	jobs, err := h.queryService.ListUnpaidJobs(r.Context(), caller)
	if err != nil {
		handleError(w, err)
		return
	}

	response := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		response = append(response, toJobResponse(j))
	}
	writeJSON(w, http.StatusOK, response)
}

func toContractResponse(c *domain.Contract) ContractResponse {
	return ContractResponse{
		ID:           c.ID,
		Terms:        c.Terms,
		Status:       string(c.Status),
		ClientID:     c.ClientID,
		ContractorID: c.ContractorID,
	}
}

func toJobResponse(j *domain.Job) JobResponse {
	resp := JobResponse{
		ID:          j.ID,
		Description: j.Description,
		Price:       j.Price.StringFixed(2),
		Paid:        j.Paid,
		ContractID:  j.ContractID,
	}
	if j.PaymentDate != nil {
		s := formatTime(*j.PaymentDate)
		resp.PaymentDate = &s
	}
	return resp
}
