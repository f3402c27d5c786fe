package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DomainChecker reports whether a sender address belongs to a trusted domain
type DomainChecker interface {
	IsWhitelisted(from string) bool
}

// PipelineConfig holds the stage thresholds for one pipeline
type PipelineConfig struct {
	// SpamSkipThreshold short-circuits importance scoring: an email with a
	// spam score at or above it is defined as unimportant without spending
	// a classification call.
	SpamSkipThreshold int

	// SummaryMinImportance short-circuits summarization: an email with an
	// importance score at or below it is never summarized.
	SummaryMinImportance int
}

// Pipeline runs one email through the ordered classification stages:
// spam detection, importance scoring, summarization, categorization.
// Stages two and three are ordered to minimize classification calls and
// that ordering must be preserved.
type Pipeline struct {
	classifier   Classifier
	cache        AnalysisCache
	whitelist    DomainChecker
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	cfg          PipelineConfig
}

// NewPipeline creates a new classification pipeline
func NewPipeline(
	classifier Classifier,
	cache AnalysisCache,
	whitelist DomainChecker,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	cfg PipelineConfig,
) *Pipeline {
	return &Pipeline{
		classifier:   classifier,
		cache:        cache,
		whitelist:    whitelist,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		cfg:          cfg,
	}
}

// Analyze classifies a single email. The position is the email's dispatch
// index within its batch and only matters for deterministic tie-breaking
// in the report. A returned error means a classification call failed;
// partially written fields in the returned analysis are not meaningful.
func (p *Pipeline) Analyze(ctx context.Context, email *Email, position int) (*EmailAnalysis, error) {
	analysis := &EmailAnalysis{
		Email:    email,
		Position: position,
	}

	// Reuse a previous full analysis when available
	if p.cacheEnabled {
		if entry, err := p.cache.Get(ctx, email.ID); err == nil {
			p.logger.Debug("Cache hit for message", zap.String("message_id", email.ID))
			analysis.SpamScore = entry.SpamScore
			analysis.ImportanceScore = entry.ImportanceScore
			analysis.Summary = entry.Summary
			analysis.Category = entry.Category
			analysis.AnalyzedAt = entry.AnalyzedAt
			analysis.ModelUsed = "cache"
			return analysis, nil
		}
	}

	// Stage 1: spam detection
	if p.whitelist != nil && p.whitelist.IsWhitelisted(email.From) {
		p.logger.Debug("Skipping spam check for whitelisted domain",
			zap.String("sender", email.From))
		analysis.SpamScore = 0
	} else {
		score, err := p.classifier.ScoreSpam(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("spam detection failed: %w", err)
		}
		analysis.SpamScore = score
	}

	// Stage 2: importance scoring, skipped for likely spam
	if analysis.SpamScore >= p.cfg.SpamSkipThreshold {
		analysis.ImportanceScore = 0
	} else {
		score, err := p.classifier.ScoreImportance(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("importance scoring failed: %w", err)
		}
		analysis.ImportanceScore = score
	}

	// Stage 3: summarization, only for important emails
	if analysis.ImportanceScore > p.cfg.SummaryMinImportance {
		points, err := p.classifier.Summarize(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("summarization failed: %w", err)
		}
		analysis.Summary = points
	}

	// Stage 4: categorization always runs
	category, err := p.classifier.Categorize(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("categorization failed: %w", err)
	}
	analysis.Category = category
	analysis.AnalyzedAt = time.Now()
	analysis.ModelUsed = p.classifier.ModelName()

	if p.cacheEnabled {
		entry := &CachedAnalysis{
			MessageID:       email.ID,
			SpamScore:       analysis.SpamScore,
			ImportanceScore: analysis.ImportanceScore,
			Summary:         analysis.Summary,
			Category:        analysis.Category,
			AnalyzedAt:      analysis.AnalyzedAt,
			ExpiresAt:       time.Now().Add(p.cacheTTL),
		}
		if err := p.cache.Set(ctx, entry); err != nil {
			p.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return analysis, nil
}
