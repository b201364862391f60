// Package assist drafts exercise library entries with a language model.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cvos/coach-app/internal/domain"
)

var (
	// ErrNotConfigured is returned by Disabled.
	ErrNotConfigured = errors.New("AI assistant is not configured")
	// ErrGenerationFailed wraps model call and response decoding failures.
	ErrGenerationFailed = errors.New("failed to generate exercise details")
)

// ExerciseDetails is a draft the coach reviews before saving an exercise.
type ExerciseDetails struct {
	Category            string   `json:"category"`
	Subcategory         string   `json:"subcategory,omitempty"`
	Equipment           []string `json:"equipment"`
	ModalitySuitability []string `json:"modalitySuitability"`
	Aliases             []string `json:"aliases,omitempty"`
	Description         string   `json:"description"`
}

// Assistant suggests library fields for an exercise name.
type Assistant interface {
	SuggestExerciseDetails(ctx context.Context, name string) (*ExerciseDetails, error)
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) SuggestExerciseDetails(context.Context, string) (*ExerciseDetails, error) {
	return nil, ErrNotConfigured
}

var categories = []string{
	domain.CategoryWeightlifting,
	domain.CategoryGymnastics,
	domain.CategoryMonostructural,
	domain.CategoryFunctionalBodybuilding,
}

const systemPrompt = `You are an expert fitness coach. Given an exercise name, reply with its details as JSON.
The JSON must match this structure exactly:
{
  "category": "Weightlifting" | "Gymnastics" | "Monostructural" | "Functional Bodybuilding",
  "subcategory": string (optional, generic type like "Squat", "Press", "Pull"),
  "equipment": string[] (e.g. ["Barbell"], ["Dumbbell"], ["Kettlebell"], ["None"]),
  "modalitySuitability": string[] (e.g. ["Strength", "Hypertrophy", "Metcon", "Warmup"]),
  "aliases": string[] (common Spanish names, may be empty),
  "description": string (short technical description in Spanish)
}
Respond ONLY with the JSON.`

// parseDetails decodes a model reply. Markdown code fences are tolerated and
// a category outside the library's four is cleared for the coach to pick.
func parseDetails(text string) (*ExerciseDetails, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	var d ExerciseDetails
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	d.Category = canonicalCategory(d.Category)
	d.Subcategory = strings.TrimSpace(d.Subcategory)
	d.Description = strings.TrimSpace(d.Description)
	d.Equipment = trimAll(d.Equipment)
	d.ModalitySuitability = trimAll(d.ModalitySuitability)
	d.Aliases = trimAll(d.Aliases)
	return &d, nil
}

func canonicalCategory(c string) string {
	for _, known := range categories {
		if strings.EqualFold(strings.TrimSpace(c), known) {
			return known
		}
	}
	return ""
}

func trimAll(items []string) []string {
	out := []string{}
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
