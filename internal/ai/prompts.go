package ai

import (
	"fmt"
	"strings"

	"github.com/vbonduro/whrtrack/internal/measure"
)

const (
	coachSystemPrompt = `You are a friendly health coach who helps with nutrition, fitness and general wellness.
Answer in plain paragraphs or short bullet lists. Do not use markdown headings, hashtags or asterisks.
Keep answers concise.`

	analystSystemPrompt = `You are a body composition specialist. Explain waist-to-hip ratio results clearly.
Answer in plain paragraphs or short bullet lists. Do not use markdown headings, hashtags or asterisks.`

	foodSystemPrompt = `You identify foods in photos and estimate their nutrition.
Reply with raw JSON only: no markdown, no code fences, no commentary.
Always give the specific name of each food. Never use placeholder names.`

	// FoodImagePrompt asks for a JSON array of foods; ParseFoodItems reads the reply.
	FoodImagePrompt = `Identify every food item visible in this photo.

Return a JSON array where each element has exactly these fields:
[
  {"name": "Grilled Chicken Breast", "calories": 280, "protein": 53, "carbs": 0, "fat": 6, "quantity": 1.0}
]

Rules:
- name is the specific food, for example "Pepperoni Pizza" rather than "pizza" or "food"
- calories, protein, carbs and fat are whole numbers for one typical serving (macros in grams)
- quantity is 1.0 for each item
- list every separate item as its own element
- return only the JSON array`
)

func measurementPrompt(waist, hip, whr float64) string {
	return fmt.Sprintf(`Analyze this waist-to-hip ratio measurement:
- Waist: %.1f inches
- Hip: %.1f inches
- WHR: %.2f
- Risk category: %s

Cover:
1. What the risk category means for health
2. Personalized recommendations
3. Nutrition targets
4. Exercise suggestions`, waist, hip, whr, measure.Classify(whr))
}

func mealPlanPrompt(whr float64, targetCalories int, dietaryPreferences string) string {
	prefs := strings.TrimSpace(dietaryPreferences)
	if prefs == "" {
		prefs = "None"
	}
	return fmt.Sprintf(`Create a one-day meal plan for someone with:
- Waist-to-hip ratio: %.2f
- Calorie target: %d kcal
- Dietary preferences: %s

Include breakfast, lunch and dinner with calories and macros, plus two snacks with calories.
Keep it simple and practical.`, whr, targetCalories, prefs)
}

func exercisePrompt(whr float64, fitnessLevel string) string {
	level := strings.TrimSpace(fitnessLevel)
	if level == "" {
		level = "beginner"
	}
	return fmt.Sprintf(`Recommend exercises for someone with a waist-to-hip ratio of %.2f at a %s fitness level.

Include 3 to 4 specific exercises with sets and reps, a weekly schedule, and a realistic timeline for results.
Keep it achievable.`, whr, level)
}
