package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"contractor-payments/internal/errors"
)

// ProfileHeader carries the caller's account id.
const ProfileHeader = "profile_id"

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")

	statusCode := appErr.HTTPStatus()
	errResponse := Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Error: &errResponse})
}

// handleError writes err as an AppError, hiding anything unexpected behind internal_error.
func handleError(w http.ResponseWriter, err error) {
	if appErr, ok := errors.As(err); ok {
		writeError(w, appErr)
		return
	}
	writeError(w, errors.NewAppError(errors.InternalError, "an unexpected error occurred"))
}

func callerID(r *http.Request) (int64, *errors.AppError) {
	id, err := strconv.ParseInt(r.Header.Get(ProfileHeader), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrUnauthorized
	}
	return id, nil
}

func pathID(r *http.Request, name string, invalid *errors.AppError) (int64, *errors.AppError) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
