package handlers

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"site-cms/pkg/apperr"
)

// HandlerFunc is an endpoint body. The returned value becomes the "data" field
// of the success envelope; a returned error is translated by Wrap.
type HandlerFunc func(c *gin.Context) (any, error)

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// Wrap turns a HandlerFunc into a gin handler that always answers with a JSON
// envelope. Returned errors and panics are both classified through apperr.
func Wrap(logger *slog.Logger, production bool, h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				appErr := apperr.FromPanic(rec)
				logRequestError(logger, production, c, appErr, rec, debug.Stack())
				abortWithError(c, appErr)
			}
		}()

		data, err := h(c)
		if err != nil {
			appErr := apperr.Classify(err)
			// misses already show up in the request log line
			if appErr.Code != apperr.CodeNotFound {
				logRequestError(logger, production, c, appErr, err, nil)
			}
			abortWithError(c, appErr)
			return
		}
		c.JSON(http.StatusOK, successResponse{Success: true, Data: data})
	}
}

func abortWithError(c *gin.Context, appErr *apperr.AppError) {
	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

func logRequestError(logger *slog.Logger, production bool, c *gin.Context, appErr *apperr.AppError, cause any, stack []byte) {
	attrs := []any{
		"message", appErr.Message,
		"code", appErr.Code,
		"status", appErr.Status,
		"url", c.Request.URL.String(),
		"method", c.Request.Method,
		"cause", cause,
	}
	if !production {
		if stack == nil {
			stack = debug.Stack()
		}
		attrs = append(attrs, "stack", string(stack))
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
		return
	}
	logger.Warn("request failed", attrs...)
}
