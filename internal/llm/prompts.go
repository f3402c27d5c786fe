// Package llm holds the prompt set and response shapes shared by every
// classifier adapter, so the providers differ only in how they complete
// a prompt.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/mail-digest/internal/core"
	"github.com/mikey/mail-digest/internal/utils"
)

// Prompt formats, each taking the email serialized as JSON
const (
	DetectSpamPrompt = `You are an expert e-mail assistant, please assess whether the following email is spam or not.` +
		` Your assessment must be a single number from 0 to 100, indicating the probability you give to the email` +
		` being spam (0 meaning not spam, 100 meaning absolute certainty to be spam).` +
		` Respond with a JSON object of the form {"percent": <number>} and nothing else.` +
		"\nHere's the email in JSON format: %s"

	DetermineImportancePrompt = `You are an expert e-mail assistant, please assess whether the following email is important or not.` +
		` Your assessment must be a single number from 0 to 100, indicating the probability you give to the email` +
		` being important (0 meaning not important, 100 meaning critically important and/or urgent).` +
		` Respond with a JSON object of the form {"percent": <number>} and nothing else.` +
		"\nHere's the email in JSON format: %s"

	SummarizeBodyPrompt = `This is an important email, please summarize in 3 bullet points that encapsulate the most` +
		` important points of the email. Prioritize any deadlines or actions that the recipient of the email has to do.` +
		` Respond with a JSON object of the form {"main_points": ["...", "...", "..."]} and nothing else.` +
		"\nHere's the email in JSON format: %s"

	CategorizeEmailPrompt = `Please categorize this email in one of the following categories:` +
		` 1. Personal` +
		` 2. Work` +
		` 3. Official duties` +
		` 4. Marketing and promotions` +
		` 5. News and newsletters` +
		` 6. Other` +
		"\n\n" +
		` If there are multiple matching categories, choose the most appropriate one.` +
		` Respond with a JSON object of the form {"category": "<category name>"} and nothing else.` +
		"\nHere's the email in JSON format: %s"
)

// PercentResponse is the structured response of the scoring prompts
type PercentResponse struct {
	Percent int `json:"percent"`
}

// SummaryResponse is the structured response of the summarization prompt
type SummaryResponse struct {
	MainPoints []string `json:"main_points"`
}

// CategoryResponse is the structured response of the categorization prompt
type CategoryResponse struct {
	Category string `json:"category"`
}

// EmailJSON serializes an email for prompt interpolation, truncating and
// sanitizing the body first
func EmailJSON(email *core.Email, maxBodySize int, tp *utils.TextProcessor) (string, error) {
	encoded, err := json.Marshal(map[string]any{
		"from":    email.From,
		"to":      email.To,
		"subject": email.Subject,
		"date":    email.Date,
		"body":    tp.ProcessText(email.Body, maxBodySize),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode email for prompt: %w", err)
	}
	return string(encoded), nil
}

// Unmarshal parses a model response into v. Models occasionally wrap the
// JSON object in prose or fencing, so on failure the first balanced
// brace-to-brace span is extracted and retried.
func Unmarshal(responseText string, v any) error {
	if err := json.Unmarshal([]byte(responseText), v); err == nil {
		return nil
	}

	jsonStart := strings.IndexByte(responseText, '{')
	jsonEnd := strings.LastIndexByte(responseText, '}')
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return fmt.Errorf("no JSON object in LLM response %q", responseText)
	}

	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), v); err != nil {
		return fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return nil
}

// ClampPercent forces a model-reported score into the 0..100 range
func ClampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// ParseCategory maps a model-reported category name onto the fixed
// enumeration, tolerating case and phrasing drift. Unrecognized names
// fall back to Other.
func ParseCategory(name string) core.Category {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(normalized, "personal"):
		return core.CategoryPersonal
	case strings.Contains(normalized, "work"):
		return core.CategoryWork
	case strings.Contains(normalized, "official") || strings.Contains(normalized, "duties"):
		return core.CategoryDuties
	case strings.Contains(normalized, "marketing") || strings.Contains(normalized, "promotion"):
		return core.CategoryAds
	case strings.Contains(normalized, "news"):
		return core.CategoryNews
	default:
		return core.CategoryOther
	}
}
