package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/service"
	"github.com/vbonduro/whrtrack/internal/watch"
)

func (s *Server) handleGetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, s.prefs.Current())
}

func (s *Server) handleUpdatePreferences(c *gin.Context) {
	var patch service.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := s.prefs.Update(c.Request.Context(), patch)
	if err != nil {
		s.fail(c, "update preferences", err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (s *Server) handleWatchPreferences(c *gin.Context) {
	streamSnapshots(c, s.logger, func(ctx context.Context) (*watch.Subscription[domain.Preferences], error) {
		return s.prefs.Watch(ctx), nil
	})
}
