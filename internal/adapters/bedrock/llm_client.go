package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/mail-digest/internal/core"
	"github.com/mikey/mail-digest/internal/llm"
	"github.com/mikey/mail-digest/internal/utils"
	"go.uber.org/zap"
)

// BedrockClient is an implementation of the Classifier interface using Amazon Bedrock
type BedrockClient struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewBedrockClient creates a new Bedrock classifier
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// ModelName identifies the configured Bedrock model
func (c *BedrockClient) ModelName() string {
	return c.modelID
}

func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.")
}

func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}

// complete invokes the model with one prompt and returns the raw response
// text. The request and response payload shapes depend on the model family.
func (c *BedrockClient) complete(ctx context.Context, prompt string) (string, error) {
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}

	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	// Try a generic approach
	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}

	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	default:
		// Just use the raw response as a string
		return string(resp.Body), nil
	}
}

func (c *BedrockClient) scorePercent(ctx context.Context, promptFormat string, email *core.Email) (int, error) {
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
func (c *BedrockClient) ScoreSpam(ctx context.Context, email *core.Email) (int, error) {
	return c.scorePercent(ctx, llm.DetectSpamPrompt, email)
}

// ScoreImportance rates how important the email is, 0 to 100
func (c *BedrockClient) ScoreImportance(ctx context.Context, email *core.Email) (int, error) {
	return c.scorePercent(ctx, llm.DetermineImportancePrompt, email)
}

// Summarize produces the email's main points as bullet lines
func (c *BedrockClient) Summarize(ctx context.Context, email *core.Email) ([]string, error) {
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
func (c *BedrockClient) Categorize(ctx context.Context, email *core.Email) (core.Category, error) {
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
