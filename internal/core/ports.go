package core

import (
	"context"
)

// Classifier defines the interface for the LLM classification capability.
// Each method issues exactly one call to the underlying model.
type Classifier interface {
	// ScoreSpam rates how likely the email is spam, 0 to 100
	ScoreSpam(ctx context.Context, email *Email) (int, error)

	// ScoreImportance rates how important the email is, 0 to 100
	ScoreImportance(ctx context.Context, email *Email) (int, error)

	// Summarize produces the email's main points as bullet lines
	Summarize(ctx context.Context, email *Email) ([]string, error)

	// Categorize sorts the email into exactly one Category
	Categorize(ctx context.Context, email *Email) (Category, error)

	// ModelName identifies the underlying model, for the analysis record
	ModelName() string
}

// AnalysisCache defines the interface for caching classification results
type AnalysisCache interface {
	// Get retrieves a cached analysis for a message
	Get(ctx context.Context, messageID string) (*CachedAnalysis, error)

	// Set stores an analysis
	Set(ctx context.Context, entry *CachedAnalysis) error

	// Delete removes a cached analysis
	Delete(ctx context.Context, messageID string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
