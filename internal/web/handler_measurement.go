package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/measure"
	"github.com/vbonduro/whrtrack/internal/service"
	"github.com/vbonduro/whrtrack/internal/watch"
)

type measurementView struct {
	*domain.Measurement
	Risk domain.RiskBand `json:"risk"`
}

func newMeasurementView(m *domain.Measurement) measurementView {
	return measurementView{Measurement: m, Risk: measure.Classify(m.WHR)}
}

type measurementRequest struct {
	Waist float64                `json:"waist"`
	Hip   float64                `json:"hip"`
	Unit  domain.MeasurementUnit `json:"unit"`
}

func (s *Server) handleCreateMeasurement(c *gin.Context) {
	var req measurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.measurements.Save(c.Request.Context(), req.Waist, req.Hip, req.Unit)
	if err != nil {
		s.fail(c, "save measurement", err)
		return
	}
	c.JSON(http.StatusCreated, newMeasurementView(m))
}

func (s *Server) handleListMeasurements(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.measurements.Recent(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, "list measurements", err)
		return
	}
	views := make([]measurementView, 0, len(list))
	for _, m := range list {
		views = append(views, newMeasurementView(m))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleDeleteMeasurement(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.measurements.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, "delete measurement", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteAllMeasurements(c *gin.Context) {
	if err := s.measurements.DeleteAll(c.Request.Context()); err != nil {
		s.fail(c, "delete measurements", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type analyzeRequest struct {
	ID    int64                  `json:"id"`
	Waist float64                `json:"waist"`
	Hip   float64                `json:"hip"`
	Unit  domain.MeasurementUnit `json:"unit"`
}

// handleAnalyzeMeasurement narrates a stored reading (by id) or an ad-hoc one.
func (s *Server) handleAnalyzeMeasurement(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := c.Request.Context()

	waist, hip := req.Waist, req.Hip
	if req.ID != 0 {
		m, err := s.measurements.Get(ctx, req.ID)
		if err != nil {
			s.fail(c, "get measurement", err)
			return
		}
		waist, hip = m.WaistInches, m.HipInches
	} else {
		unit := req.Unit
		if unit == "" {
			unit = s.prefs.Current().MeasurementUnit
		}
		if !unit.Valid() {
			s.fail(c, "analyze measurement", fmt.Errorf("%w: unknown unit %q", service.ErrInvalidPreference, unit))
			return
		}
		waist, hip = measure.ToInches(waist, unit), measure.ToInches(hip, unit)
	}

	ratio, err := measure.ComputeRatio(waist, hip)
	if err != nil {
		s.fail(c, "analyze measurement", err)
		return
	}

	reply := s.coach.AnalyzeMeasurement(ctx, waist, hip)
	c.JSON(http.StatusOK, gin.H{
		"whr":      ratio,
		"risk":     measure.Classify(ratio),
		"text":     reply.Text,
		"fallback": reply.Fallback,
	})
}

func (s *Server) handleWatchMeasurements(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	streamSnapshots(c, s.logger, func(ctx context.Context) (*watch.Subscription[[]*domain.Measurement], error) {
		return s.measurements.Watch(ctx, limit), nil
	})
}
