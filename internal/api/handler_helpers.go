package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case http.StatusBadRequest:
		resp = response.BadRequest(msg + ": " + err.Error())
	case http.StatusConflict:
		resp = response.Conflict(msg + ": " + err.Error())
	case http.StatusBadGateway:
		resp = response.BadGateway(msg + ": " + err.Error())
	case http.StatusInternalServerError:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.Failure(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

// statusFor maps pipeline errors onto HTTP statuses. Upstream failures are
// reported as 502 so callers can tell them from local faults.
func statusFor(err error) int {
	var authErr *internal.AuthError
	var transportErr *internal.TransportError
	if errors.As(err, &authErr) || errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
