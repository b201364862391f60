package assist

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when ai.model is empty.
const DefaultModel = "gemini-2.5-flash"

type geminiAssistant struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGeminiAssistant talks to the Gemini API with apiKey.
func NewGeminiAssistant(ctx context.Context, apiKey, model string, log *zap.Logger) (Assistant, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	log.Info("exercise assistant initialized", zap.String("model", model))
	return &geminiAssistant{client: client, model: model, log: log}, nil
}

func (g *geminiAssistant) SuggestExerciseDetails(ctx context.Context, name string) (*ExerciseDetails, error) {
	contents := []*genai.Content{
		genai.NewContentFromText("Exercise: "+strings.TrimSpace(name), genai.RoleUser),
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		g.log.Warn("exercise details request failed", zap.String("exercise", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	details, err := parseDetails(result.Text())
	if err != nil {
		g.log.Warn("exercise details reply rejected", zap.String("exercise", name), zap.Error(err))
		return nil, err
	}
	g.log.Debug("exercise details generated", zap.String("exercise", name), zap.String("category", details.Category))
	return details, nil
}
