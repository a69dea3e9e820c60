package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vbonduro/whrtrack/internal/service"
)

// Services bundles the application services the HTTP layer exposes.
type Services struct {
	Measurements *service.MeasurementService
	Meals        *service.MealService
	Preferences  *service.PreferenceService
	Coach        *service.CoachService
}

type Server struct {
	measurements *service.MeasurementService
	meals        *service.MealService
	prefs        *service.PreferenceService
	coach        *service.CoachService
	router       *gin.Engine
	logger       *slog.Logger
}

func NewServer(svcs Services, logger *slog.Logger) *Server {
	s := &Server{
		measurements: svcs.Measurements,
		meals:        svcs.Meals,
		prefs:        svcs.Preferences,
		coach:        svcs.Coach,
		router:       gin.New(),
		logger:       logger,
	}
	s.router.Use(requestLogger(logger), securityHeaders(), gin.Recovery())
	s.router.MaxMultipartMemory = maxPhotoSize
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")

	m := api.Group("/measurements")
	m.POST("", s.handleCreateMeasurement)
	m.GET("", s.handleListMeasurements)
	m.DELETE("", s.handleDeleteAllMeasurements)
	m.DELETE("/:id", s.handleDeleteMeasurement)
	m.GET("/watch", s.handleWatchMeasurements)
	m.POST("/analyze", s.handleAnalyzeMeasurement)

	meals := api.Group("/meals")
	meals.POST("", s.handleCreateMeal)
	meals.POST("/manual", s.handleCreateManualMeal)
	meals.POST("/scan", s.handleScanMeal)
	meals.GET("", s.handleListMeals)
	meals.GET("/daily", s.handleDailyTotals)
	meals.GET("/watch", s.handleWatchMeals)
	meals.GET("/:id/items", s.handleMealItems)
	meals.DELETE("", s.handleDeleteAllMeals)
	meals.DELETE("/:id", s.handleDeleteMeal)

	api.GET("/preferences", s.handleGetPreferences)
	api.PATCH("/preferences", s.handleUpdatePreferences)
	api.GET("/preferences/watch", s.handleWatchPreferences)

	api.GET("/progress", s.handleProgress)

	coach := api.Group("/coach")
	coach.POST("/chat", s.handleChat)
	coach.POST("/meal-plan", s.handleMealPlan)
	coach.POST("/exercise", s.handleExercise)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
