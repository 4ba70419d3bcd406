package handler

import (
	"net/http"
	"strconv"
	"time"

	"contractor-payments/internal/errors"
	"contractor-payments/internal/service"
)

type AdminHandler struct {
	queryService *service.QueryService
}

func NewAdminHandler(queryService *service.QueryService) *AdminHandler {
	return &AdminHandler{
		queryService: queryService,
	}
}

type BestProfessionResponse struct {
	Profession  string `json:"profession,omitempty"`
	TotalEarned string `json:"total_earned,omitempty"`
}

type BestClientResponse struct {
	ID        int64  `json:"id"`
	FullName  string `json:"full_name"`
	TotalPaid string `json:"total_paid"`
}

func (h *AdminHandler) BestProfession(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := dateRange(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	best, err := h.queryService.BestProfession(r.Context(), start, end)
	if err != nil {
		handleError(w, err)
		return
	}
	if best == nil {
		writeJSON(w, http.StatusOK, BestProfessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, BestProfessionResponse{
		Profession:  best.Profession,
		TotalEarned: best.TotalEarned.StringFixed(2),
	})
}

func (h *AdminHandler) BestClients(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := dateRange(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > service.MaxBestClientsLimit {
			writeError(w, errors.ErrInvalidLimit)
			return
		}
		limit = n
	}

	clients, err := h.queryService.BestClients(r.Context(), start, end, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	response := make([]BestClientResponse, 0, len(clients))
	for _, c := range clients {
		response = append(response, BestClientResponse{
			ID:        c.ID,
			FullName:  c.FullName,
			TotalPaid: c.TotalPaid.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func dateRange(r *http.Request) (time.Time, time.Time, *errors.AppError) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.ErrInvalidDateRange
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.ErrInvalidDateRange
	}
	return start, end, nil
}
