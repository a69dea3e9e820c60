package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/service"
	"github.com/vbonduro/whrtrack/internal/watch"
)

type mealRequest struct {
	Items    []domain.FoodItem `json:"items"`
	MealType domain.MealType   `json:"meal_type"`
}

func (s *Server) handleCreateMeal(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.meals.Save(c.Request.Context(), req.Items, req.MealType)
	if err != nil {
		s.fail(c, "save meal", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *Server) handleCreateManualMeal(c *gin.Context) {
	var req service.ManualMeal
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.meals.SaveManual(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "save meal", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// handleListMeals serves ?start=&end= as an inclusive range, otherwise the
// newest ?limit=N meals (all when absent).
func (s *Server) handleListMeals(c *gin.Context) {
	ctx := c.Request.Context()

	start, end, ranged, err := parseRange(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if ranged {
		meals, err := s.meals.InRange(ctx, start, end)
		if err != nil {
			s.fail(c, "list meals", err)
			return
		}
		c.JSON(http.StatusOK, meals)
		return
	}

	limit, err := parseLimit(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	meals, err := s.meals.Recent(ctx, limit)
	if err != nil {
		s.fail(c, "list meals", err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (s *Server) handleMealItems(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.meals.Items(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "get meal items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleDailyTotals(c *gin.Context) {
	days, err := s.meals.DailyTotals(c.Request.Context())
	if err != nil {
		s.fail(c, "daily totals", err)
		return
	}
	c.JSON(http.StatusOK, days)
}

func (s *Server) handleDeleteMeal(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.meals.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, "delete meal", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteAllMeals(c *gin.Context) {
	if err := s.meals.DeleteAll(c.Request.Context()); err != nil {
		s.fail(c, "delete meals", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleWatchMeals(c *gin.Context) {
	start, end, ranged, err := parseRange(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if ranged {
		if start.After(end) {
			s.fail(c, "watch meals", service.ErrInvalidRange)
			return
		}
		streamSnapshots(c, s.logger, func(ctx context.Context) (*watch.Subscription[[]*domain.Meal], error) {
			return s.meals.WatchRange(ctx, start, end)
		})
		return
	}

	limit, err := parseLimit(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	streamSnapshots(c, s.logger, func(ctx context.Context) (*watch.Subscription[[]*domain.Meal], error) {
		return s.meals.Watch(ctx, limit), nil
	})
}

func (s *Server) handleProgress(c *gin.Context) {
	progress, err := s.meals.CalorieProgress(c.Request.Context())
	if err != nil {
		s.fail(c, "calorie progress", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
