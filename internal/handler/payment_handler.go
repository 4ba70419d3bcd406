package handler

import (
	"net/http"

	"contractor-payments/internal/errors"
	"contractor-payments/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

type PaymentResponse struct {
	JobID         int64  `json:"job_id"`
	Price         string `json:"price"`
	PaidAt        string `json:"paid_at"`
	ClientBalance string `json:"client_balance"`
}

func (h *PaymentHandler) PayJob(w http.ResponseWriter, r *http.Request) {
	caller, appErr := callerID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	jobID, appErr := pathID(r, "job_id", errors.ErrInvalidJobID)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	payment, err := h.paymentService.PayJob(r.Context(), jobID, caller)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PaymentResponse{
		JobID:         payment.JobID,
		Price:         payment.Price.StringFixed(2),
		PaidAt:        formatTime(payment.PaidAt),
		ClientBalance: payment.ClientBalance.StringFixed(2),
	})
}
