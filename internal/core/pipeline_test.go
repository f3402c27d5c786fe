package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClassifier returns canned scores per message ID and counts every
// call so short-circuit behavior can be asserted.
type fakeClassifier struct {
	mu sync.Mutex

	spamScores       map[string]int
	importanceScores map[string]int
	summaries        map[string][]string
	categories       map[string]Category
	failFor          map[string]bool

	spamCalls       int
	importanceCalls int
	summaryCalls    int
	categoryCalls   int
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{
		spamScores:       make(map[string]int),
		importanceScores: make(map[string]int),
		summaries:        make(map[string][]string),
		categories:       make(map[string]Category),
		failFor:          make(map[string]bool),
	}
}

func (f *fakeClassifier) ScoreSpam(ctx context.Context, email *Email) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spamCalls++
	if f.failFor[email.ID] {
		return 0, errors.New("model unavailable")
	}
	return f.spamScores[email.ID], nil
}

func (f *fakeClassifier) ScoreImportance(ctx context.Context, email *Email) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.importanceCalls++
	return f.importanceScores[email.ID], nil
}

func (f *fakeClassifier) Summarize(ctx context.Context, email *Email) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	return f.summaries[email.ID], nil
}

func (f *fakeClassifier) Categorize(ctx context.Context, email *Email) (Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls++
	return f.categories[email.ID], nil
}

func (f *fakeClassifier) ModelName() string { return "fake-model" }

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*CachedAnalysis
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*CachedAnalysis)}
}

func (c *fakeCache) Get(ctx context.Context, messageID string) (*CachedAnalysis, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[messageID]
	if !ok {
		return nil, errors.New("cache entry not found")
	}
	return entry, nil
}

func (c *fakeCache) Set(ctx context.Context, entry *CachedAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.MessageID] = entry
	c.sets++
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, messageID string) error { return nil }
func (c *fakeCache) Cleanup(ctx context.Context) error                  { return nil }

type staticWhitelist map[string]bool

func (w staticWhitelist) IsWhitelisted(from string) bool { return w[from] }

func testEmail(id string) *Email {
	return &Email{
		ID:      id,
		From:    fmt.Sprintf("%s@example.com", id),
		Subject: "subject " + id,
		Body:    "body " + id,
	}
}

func defaultPipelineConfig() PipelineConfig {
	return PipelineConfig{SpamSkipThreshold: 60, SummaryMinImportance: 60}
}

func TestPipelineRunsAllStagesForImportantEmail(t *testing.T) {
	classifier := newFakeClassifier()
	classifier.spamScores["a"] = 10
	classifier.importanceScores["a"] = 80
	classifier.summaries["a"] = []string{"point one", "point two", "point three"}
	classifier.categories["a"] = CategoryWork

	pipeline := NewPipeline(classifier, nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())

	analysis, err := pipeline.Analyze(context.Background(), testEmail("a"), 3)
	require.NoError(t, err)

	assert.Equal(t, 10, analysis.SpamScore)
	assert.Equal(t, 80, analysis.ImportanceScore)
	assert.Equal(t, []string{"point one", "point two", "point three"}, analysis.Summary)
	assert.Equal(t, CategoryWork, analysis.Category)
	assert.Equal(t, 3, analysis.Position)
	assert.Equal(t, "fake-model", analysis.ModelUsed)
	assert.False(t, analysis.Degraded)

	assert.Equal(t, 1, classifier.spamCalls)
	assert.Equal(t, 1, classifier.importanceCalls)
	assert.Equal(t, 1, classifier.summaryCalls)
	assert.Equal(t, 1, classifier.categoryCalls)
}

func TestPipelineSkipsImportanceForLikelySpam(t *testing.T) {
	classifier := newFakeClassifier()
	classifier.spamScores["a"] = 60
	classifier.categories["a"] = CategoryAds

	pipeline := NewPipeline(classifier, nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())

	analysis, err := pipeline.Analyze(context.Background(), testEmail("a"), 0)
	require.NoError(t, err)

	assert.Equal(t, 0, analysis.ImportanceScore)
	assert.Nil(t, analysis.Summary)
	// The importance and summary capabilities must never be invoked
	assert.Equal(t, 0, classifier.importanceCalls)
	assert.Equal(t, 0, classifier.summaryCalls)
	// Categorization is independent of earlier short-circuits
	assert.Equal(t, 1, classifier.categoryCalls)
}

func TestPipelineSkipsSummaryForUnimportantEmail(t *testing.T) {
	classifier := newFakeClassifier()
	classifier.spamScores["a"] = 10
	classifier.importanceScores["a"] = 60
	classifier.categories["a"] = CategoryNews

	pipeline := NewPipeline(classifier, nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())

	analysis, err := pipeline.Analyze(context.Background(), testEmail("a"), 0)
	require.NoError(t, err)

	assert.Equal(t, 60, analysis.ImportanceScore)
	assert.Nil(t, analysis.Summary)
	assert.Equal(t, 1, classifier.importanceCalls)
	assert.Equal(t, 0, classifier.summaryCalls)
}

func TestPipelineWhitelistedSenderSkipsSpamCall(t *testing.T) {
	classifier := newFakeClassifier()
	classifier.importanceScores["a"] = 30
	classifier.categories["a"] = CategoryPersonal

	email := testEmail("a")
	checker := staticWhitelist{email.From: true}

	pipeline := NewPipeline(classifier, nil, checker, zap.NewNop(), false, 0, defaultPipelineConfig())

	analysis, err := pipeline.Analyze(context.Background(), email, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, analysis.SpamScore)
	assert.Equal(t, 0, classifier.spamCalls)
	assert.Equal(t, 1, classifier.importanceCalls)
}

func TestPipelineCacheHitSkipsAllCalls(t *testing.T) {
	classifier := newFakeClassifier()
	cached := &CachedAnalysis{
		MessageID:       "a",
		SpamScore:       5,
		ImportanceScore: 75,
		Summary:         []string{"cached point"},
		Category:        CategoryDuties,
		AnalyzedAt:      time.Now().Add(-time.Hour),
	}
	cache := newFakeCache()
	require.NoError(t, cache.Set(context.Background(), cached))

	pipeline := NewPipeline(classifier, cache, nil, zap.NewNop(), true, time.Hour, defaultPipelineConfig())

	analysis, err := pipeline.Analyze(context.Background(), testEmail("a"), 0)
	require.NoError(t, err)

	assert.Equal(t, 5, analysis.SpamScore)
	assert.Equal(t, 75, analysis.ImportanceScore)
	assert.Equal(t, []string{"cached point"}, analysis.Summary)
	assert.Equal(t, CategoryDuties, analysis.Category)
	assert.Equal(t, "cache", analysis.ModelUsed)

	assert.Equal(t, 0, classifier.spamCalls)
	assert.Equal(t, 0, classifier.importanceCalls)
	assert.Equal(t, 0, classifier.summaryCalls)
	assert.Equal(t, 0, classifier.categoryCalls)
}

func TestPipelineWritesBackToCache(t *testing.T) {
	classifier := newFakeClassifier()
	classifier.spamScores["a"] = 20
	classifier.importanceScores["a"] = 90
	classifier.summaries["a"] = []string{"p"}
	classifier.categories["a"] = CategoryWork

	cache := newFakeCache()
	pipeline := NewPipeline(classifier, cache, nil, zap.NewNop(), true, time.Hour, defaultPipelineConfig())

	_, err := pipeline.Analyze(context.Background(), testEmail("a"), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.sets)
	entry, err := cache.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 20, entry.SpamScore)
	assert.Equal(t, 90, entry.ImportanceScore)
	assert.Equal(t, CategoryWork, entry.Category)
	assert.True(t, entry.ExpiresAt.After(time.Now()))
}

func TestPipelineSurfacesClassifierFailure(t *testing.T) {
	classifier := newFakeClassifier()
	classifier.failFor["a"] = true

	pipeline := NewPipeline(classifier, nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())

	_, err := pipeline.Analyze(context.Background(), testEmail("a"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spam detection failed")
}
