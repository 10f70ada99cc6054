package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"netinv/internal/inventory"
)

// requestLogger logs one line per request at a level following the status.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"elapsed", time.Since(start).Round(time.Microsecond),
		}
		if s := SessionFrom(c); s.UserID != "" {
			args = append(args, "user", s.UserID)
		}
		if err := c.Errors.Last(); err != nil {
			args = append(args, "error", err.Err)
		}
		logger.Log(c.Request.Context(), level, "request", args...)
	}
}

func instrument(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// audit records every mutating request in the operations table, named after
// its route ("POST /v1/sites/:id/floorplan").
func audit(ops inventory.OperationLog, clock inventory.Clock, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		ctx := context.WithoutCancel(c.Request.Context())
		op, err := ops.CreateOperation(ctx, inventory.Operation{
			Operation:  fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()),
			Parameters: c.Request.URL.RequestURI(),
			UserID:     SessionFrom(c).UserID,
			StartedAt:  clock.Now().UTC(),
		})
		if err != nil {
			logger.Warn("recording operation", "path", c.Request.URL.Path, "error", err)
			c.Next()
			return
		}

		c.Next()

		var last error
		if e := c.Errors.Last(); e != nil {
			last = e.Err
		}
		status := inventory.StatusFor(last)
		if last == nil && c.Writer.Status() >= 400 {
			status = inventory.StatusError
		}
		if err := ops.FinishOperation(ctx, op.ID, status, clock.Now().UTC()); err != nil {
			logger.Warn("finishing operation", "id", op.ID, "error", err)
		}
	}
}
