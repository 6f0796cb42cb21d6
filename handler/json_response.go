package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/notifyhub/pkg/binder"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	if j.body == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(j.body)
}

// JSON renders v as the response body with status 200.
func JSON(v any) Response {
	return jsonResponse{status: http.StatusOK, body: v}
}

// JSONWithStatus renders v with an explicit status.
func JSONWithStatus(status int, v any) Response {
	return jsonResponse{status: status, body: v}
}

// JSONError maps err onto a status code and an ErrorBody.
func JSONError(err error) Response {
	status, detail := classify(err)
	return jsonResponse{status: status, body: ErrorBody{Error: detail}}
}

func classify(err error) (int, ErrorDetail) {
	var (
		httpErr HTTPError
		valErr  binder.ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest, ErrorDetail{
			Code:    "validation_error",
			Message: "request validation failed",
			Details: valErr,
		}
	case errors.As(err, &httpErr):
		msg := httpErr.Message
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, ErrorDetail{Code: httpErr.Key, Message: msg}
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, ErrorDetail{Code: ErrUnsupportedMedia.Key, Message: err.Error()}
	case errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrEmptyBody):
		return http.StatusBadRequest, ErrorDetail{Code: ErrBadRequest.Key, Message: err.Error()}
	}
	return http.StatusInternalServerError, ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}
