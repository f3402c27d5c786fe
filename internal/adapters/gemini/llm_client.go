package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/mail-digest/internal/core"
	"github.com/mikey/mail-digest/internal/llm"
	"github.com/mikey/mail-digest/internal/utils"
	"go.uber.org/zap"
)

// GeminiClient is an implementation of the Classifier interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini classifier from an existing client
func NewGeminiClient(
	client *genai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GeminiClient {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ModelName identifies the configured Gemini model
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// complete sends one prompt to the model and returns the raw response text
func (c *GeminiClient) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

func (c *GeminiClient) scorePercent(ctx context.Context, promptFormat string, email *core.Email) (int, error) {
	emailJSON, err := llm.EmailJSON(email, c.maxBodySize, c.textProcessor)
	if err != nil {
		return 0, err
	}

	responseText, err := c.complete(ctx, fmt.Sprintf(promptFormat, emailJSON))
	if err != nil {
		return 0, err
	}

	var response llm.PercentResponse
	if err := llm.Unmarshal(responseText, &response); err != nil {
		return 0, err
	}

	return llm.ClampPercent(response.Percent), nil
}

// ScoreSpam rates how likely the email is spam, 0 to 100
func (c *GeminiClient) ScoreSpam(ctx context.Context, email *core.Email) (int, error) {
	return c.scorePercent(ctx, llm.DetectSpamPrompt, email)
}

// ScoreImportance rates how important the email is, 0 to 100
func (c *GeminiClient) ScoreImportance(ctx context.Context, email *core.Email) (int, error) {
	return c.scorePercent(ctx, llm.DetermineImportancePrompt, email)
}

// Summarize produces the email's main points as bullet lines
func (c *GeminiClient) Summarize(ctx context.Context, email *core.Email) ([]string, error) {
	emailJSON, err := llm.EmailJSON(email, c.maxBodySize, c.textProcessor)
	if err != nil {
		return nil, err
	}

	responseText, err := c.complete(ctx, fmt.Sprintf(llm.SummarizeBodyPrompt, emailJSON))
	if err != nil {
		return nil, err
	}

	var response llm.SummaryResponse
	if err := llm.Unmarshal(responseText, &response); err != nil {
		return nil, err
	}

	return response.MainPoints, nil
}

// Categorize sorts the email into exactly one category
func (c *GeminiClient) Categorize(ctx context.Context, email *core.Email) (core.Category, error) {
	emailJSON, err := llm.EmailJSON(email, c.maxBodySize, c.textProcessor)
	if err != nil {
		return core.CategoryOther, err
	}

	responseText, err := c.complete(ctx, fmt.Sprintf(llm.CategorizeEmailPrompt, emailJSON))
	if err != nil {
		return core.CategoryOther, err
	}

	var response llm.CategoryResponse
	if err := llm.Unmarshal(responseText, &response); err != nil {
		return core.CategoryOther, err
	}

	return llm.ParseCategory(response.Category), nil
}
