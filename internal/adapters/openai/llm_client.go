package openai

import (
	"context"
	"fmt"

	"github.com/mikey/mail-digest/internal/core"
	"github.com/mikey/mail-digest/internal/llm"
	"github.com/mikey/mail-digest/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the Classifier interface using OpenAI
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI classifier
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// ModelName identifies the configured OpenAI model
func (c *OpenAIClient) ModelName() string {
	return c.modelName
}

// complete sends one prompt to the chat completion API and returns the
// raw response text
func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert e-mail assistant. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) scorePercent(ctx context.Context, promptFormat string, email *core.Email) (int, error) {
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
func (c *OpenAIClient) ScoreSpam(ctx context.Context, email *core.Email) (int, error) {
	return c.scorePercent(ctx, llm.DetectSpamPrompt, email)
}

// ScoreImportance rates how important the email is, 0 to 100
func (c *OpenAIClient) ScoreImportance(ctx context.Context, email *core.Email) (int, error) {
	return c.scorePercent(ctx, llm.DetermineImportancePrompt, email)
}

// Summarize produces the email's main points as bullet lines
func (c *OpenAIClient) Summarize(ctx context.Context, email *core.Email) ([]string, error) {
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
func (c *OpenAIClient) Categorize(ctx context.Context, email *core.Email) (core.Category, error) {
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
