package core

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func batchOf(n int) []*Email {
	emails := make([]*Email, n)
	for i := range emails {
		emails[i] = testEmail(fmt.Sprintf("msg-%d", i))
	}
	return emails
}

func TestBatchProcessorProducesOneResultPerInput(t *testing.T) {
	classifier := newFakeClassifier()
	emails := batchOf(20)
	for i, email := range emails {
		classifier.spamScores[email.ID] = i % 50
		classifier.importanceScores[email.ID] = i
		classifier.categories[email.ID] = Categories[i%len(Categories)]
	}

	pipeline := NewPipeline(classifier, nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())
	processor := NewBatchProcessor(pipeline, zap.NewNop(), 4, nil)

	results := processor.Process(context.Background(), emails)

	require.Len(t, results, len(emails))
	for i, analysis := range results {
		require.NotNil(t, analysis, "missing result at position %d", i)
		assert.Same(t, emails[i], analysis.Email)
		assert.Equal(t, i, analysis.Position)
		assert.Equal(t, i, analysis.ImportanceScore)
	}
}

func TestBatchProcessorSequentialMatchesConcurrent(t *testing.T) {
	build := func() ([]*Email, *Pipeline) {
		classifier := newFakeClassifier()
		emails := batchOf(8)
		for i, email := range emails {
			classifier.spamScores[email.ID] = 10
			classifier.importanceScores[email.ID] = 10 * i
			classifier.categories[email.ID] = CategoryWork
		}
		return emails, NewPipeline(classifier, nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())
	}

	emailsSeq, pipelineSeq := build()
	sequential := NewBatchProcessor(pipelineSeq, zap.NewNop(), 1, nil).Process(context.Background(), emailsSeq)

	emailsPar, pipelinePar := build()
	concurrent := NewBatchProcessor(pipelinePar, zap.NewNop(), 8, nil).Process(context.Background(), emailsPar)

	require.Len(t, concurrent, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i].ImportanceScore, concurrent[i].ImportanceScore)
		assert.Equal(t, sequential[i].Position, concurrent[i].Position)
	}
}

func TestBatchProcessorIsolatesFailures(t *testing.T) {
	classifier := newFakeClassifier()
	emails := batchOf(5)
	for _, email := range emails {
		classifier.spamScores[email.ID] = 10
		classifier.importanceScores[email.ID] = 80
		classifier.summaries[email.ID] = []string{"fine"}
		classifier.categories[email.ID] = CategoryPersonal
	}
	classifier.failFor[emails[2].ID] = true

	pipeline := NewPipeline(classifier, nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())
	processor := NewBatchProcessor(pipeline, zap.NewNop(), 3, nil)

	results := processor.Process(context.Background(), emails)

	require.Len(t, results, 5)
	for i, analysis := range results {
		require.NotNil(t, analysis)
		if i == 2 {
			assert.True(t, analysis.Degraded)
			assert.Equal(t, 0, analysis.SpamScore)
			assert.Equal(t, 0, analysis.ImportanceScore)
			assert.Nil(t, analysis.Summary)
			assert.Equal(t, CategoryOther, analysis.Category)
			continue
		}
		assert.False(t, analysis.Degraded, "healthy email %d must not be affected", i)
		assert.Equal(t, 80, analysis.ImportanceScore)
	}
}

func TestBatchProcessorReportsProgress(t *testing.T) {
	classifier := newFakeClassifier()
	emails := batchOf(6)
	for _, email := range emails {
		classifier.categories[email.ID] = CategoryOther
	}

	var mu sync.Mutex
	var seen []int
	progress := func(completed, total int, email *Email) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 6, total)
		assert.NotNil(t, email)
		seen = append(seen, completed)
	}

	pipeline := NewPipeline(classifier, nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())
	NewBatchProcessor(pipeline, zap.NewNop(), 2, progress).Process(context.Background(), emails)

	require.Len(t, seen, 6)
	// The collector is single-threaded, so the counter is strictly increasing
	for i, completed := range seen {
		assert.Equal(t, i+1, completed)
	}
}

func TestBatchProcessorEmptyBatch(t *testing.T) {
	pipeline := NewPipeline(newFakeClassifier(), nil, nil, zap.NewNop(), false, 0, defaultPipelineConfig())
	results := NewBatchProcessor(pipeline, zap.NewNop(), 4, nil).Process(context.Background(), nil)
	assert.Empty(t, results)
}
