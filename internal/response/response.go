package response

import (
	"net/http"

	"github.com/nikdata/oura-hrv/internal"
)

// APIResponse is the envelope returned by every trigger endpoint.
type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta}
}

func Failure(status int, msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(status, msg)}
}

func BadRequest(msg string) APIResponse   { return Failure(http.StatusBadRequest, msg) }
func Unauthorized(msg string) APIResponse { return Failure(http.StatusUnauthorized, msg) }
func Conflict(msg string) APIResponse     { return Failure(http.StatusConflict, msg) }
func BadGateway(msg string) APIResponse   { return Failure(http.StatusBadGateway, msg) }
func InternalError(msg string) APIResponse {
	return Failure(http.StatusInternalServerError, msg)
}
