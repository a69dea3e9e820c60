package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vbonduro/whrtrack/internal/measure"
	"github.com/vbonduro/whrtrack/internal/service"
)

func apiError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// fail maps service errors onto HTTP statuses. Anything unrecognized is
// logged and reported as a 500 without detail.
func (s *Server) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apiError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, measure.ErrInvalidHip),
		errors.Is(err, measure.ErrInvalidWaist),
		errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrInvalidMealType),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidPreference):
		apiError(c, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(op+" failed", "error", err)
		apiError(c, http.StatusInternalServerError, op+" failed")
	}
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

// parseLimit reads ?limit=N. Absent means 0, which lists everything.
func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}

// parseTime accepts RFC 3339 or integer milliseconds since the epoch.
func parseTime(raw string) (time.Time, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", raw)
	}
	return t, nil
}

// parseRange reads ?start=&end=. ok is false when neither is present.
func parseRange(c *gin.Context) (start, end time.Time, ok bool, err error) {
	rawStart, rawEnd := c.Query("start"), c.Query("end")
	if rawStart == "" && rawEnd == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if rawStart == "" || rawEnd == "" {
		return time.Time{}, time.Time{}, false, errors.New("start and end must be given together")
	}
	if start, err = parseTime(rawStart); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if end, err = parseTime(rawEnd); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return start, end, true, nil
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
