package webapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"linguo/internal/logging"
	"linguo/internal/services"
)

const startKey = "webapi.start"

type envelope struct {
	Status string `json:"status"`
	// ResponseTime is the server-side processing time in milliseconds.
	ResponseTime int64 `json:"response_time"`
	Data         any   `json:"data,omitempty"`
	Error        any   `json:"error,omitempty"`
}

func elapsedMS(c *gin.Context) int64 {
	if value, ok := c.Get(startKey); ok {
		if started, ok := value.(time.Time); ok {
			return time.Since(started).Milliseconds()
		}
	}
	return 0
}

func (s *Server) ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Status: "ok", ResponseTime: elapsedMS(c), Data: data})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", slog.String("path", c.Request.URL.Path), logging.Error(err))
	}
	c.JSON(status, envelope{Status: "error", ResponseTime: elapsedMS(c), Error: services.Message(err)})
}
