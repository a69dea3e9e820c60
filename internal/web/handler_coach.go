package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vbonduro/whrtrack/internal/ai"
)

const maxChatMessageLen = 4000

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string     `json:"message"`
	History []chatTurn `json:"history"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		apiError(c, http.StatusBadRequest, "message required")
		return
	}
	if len(message) > maxChatMessageLen {
		apiError(c, http.StatusBadRequest, "message too long")
		return
	}

	history := make([]ai.Message, 0, len(req.History))
	for _, turn := range req.History {
		switch ai.Role(turn.Role) {
		case ai.RoleUser:
			history = append(history, ai.UserMessage(turn.Content))
		case ai.RoleAssistant:
			history = append(history, ai.AssistantMessage(turn.Content))
		default:
			apiError(c, http.StatusBadRequest, "history role must be user or assistant")
			return
		}
	}

	c.JSON(http.StatusOK, s.coach.Chat(c.Request.Context(), message, history))
}

type mealPlanRequest struct {
	WHR                float64 `json:"whr"`
	TargetCalories     int     `json:"target_calories"`
	DietaryPreferences string  `json:"dietary_preferences"`
}

func (s *Server) handleMealPlan(c *gin.Context) {
	var req mealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	c.JSON(http.StatusOK, s.coach.MealPlan(c.Request.Context(), req.WHR, req.TargetCalories, req.DietaryPreferences))
}

type exerciseRequest struct {
	WHR          float64 `json:"whr"`
	FitnessLevel string  `json:"fitness_level"`
}

func (s *Server) handleExercise(c *gin.Context) {
	var req exerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	c.JSON(http.StatusOK, s.coach.ExerciseRecommendations(c.Request.Context(), req.WHR, req.FitnessLevel))
}
