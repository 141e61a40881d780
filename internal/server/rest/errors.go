package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gogamastore/storefront/internal/common"
)

var statusByKind = map[common.Kind]int{
	common.KindValidation:      http.StatusBadRequest,
	common.KindUnauthorized:    http.StatusUnauthorized,
	common.KindTokenExpired:    http.StatusUnauthorized,
	common.KindBadCredentials:  http.StatusUnauthorized,
	common.KindProductNotFound: http.StatusNotFound,
	common.KindCartNotFound:    http.StatusNotFound,
	common.KindUserNotFound:    http.StatusNotFound,
	common.KindNotFound:        http.StatusNotFound,
	common.KindEmailTaken:      http.StatusConflict,
	common.KindUnavailable:     http.StatusServiceUnavailable,
	common.KindInternal:        http.StatusInternalServerError,
}

type errorResponse struct {
	Error   common.Kind `json:"error"`
	Message string      `json:"message"`
}

func errorBody(err error) (int, errorResponse) {
	kind := common.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	msg := err.Error()
	switch kind {
	case common.KindUnavailable:
		msg = "service temporarily unavailable"
	case common.KindInternal:
		msg = "internal server error"
	}
	return status, errorResponse{Error: kind, Message: msg}
}

func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, body)
}

func (s *HTTPServer) abort(c *gin.Context, err error) {
	s.writeError(c, err)
	c.Abort()
}
