package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/mail-digest/internal/core"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the AnalysisCache interface
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_cache (
			message_id TEXT PRIMARY KEY,
			spam_score INTEGER,
			importance_score INTEGER,
			summary TEXT,
			category INTEGER,
			analyzed_at TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on expires_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_expires_at ON analysis_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached analysis for a message
func (c *SQLiteCache) Get(ctx context.Context, messageID string) (*core.CachedAnalysis, error) {
	var spamScore, importanceScore, category int
	var summaryJSON string
	var analyzedAt, expiresAt string

	err := c.db.QueryRowContext(ctx, `
		SELECT spam_score, importance_score, summary, category, analyzed_at, expires_at
		FROM analysis_cache
		WHERE message_id = ? AND expires_at > datetime('now')
	`, messageID).Scan(&spamScore, &importanceScore, &summaryJSON, &category, &analyzedAt, &expiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry := &core.CachedAnalysis{
		MessageID:       messageID,
		SpamScore:       spamScore,
		ImportanceScore: importanceScore,
		Category:        core.Category(category),
	}

	if summaryJSON != "" {
		if err := json.Unmarshal([]byte(summaryJSON), &entry.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode cached summary: %w", err)
		}
	}

	if entry.AnalyzedAt, err = time.Parse(time.RFC3339, analyzedAt); err != nil {
		return nil, fmt.Errorf("failed to parse analyzed_at timestamp: %w", err)
	}
	if entry.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to parse expires_at timestamp: %w", err)
	}

	return entry, nil
}

// Set stores an analysis
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CachedAnalysis) error {
	summaryJSON := ""
	if entry.Summary != nil {
		encoded, err := json.Marshal(entry.Summary)
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		summaryJSON = string(encoded)
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analysis_cache
			(message_id, spam_score, importance_score, summary, category, analyzed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.MessageID, entry.SpamScore, entry.ImportanceScore, summaryJSON, int(entry.Category),
		entry.AnalyzedAt.Format(time.RFC3339), entry.ExpiresAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Delete removes a cached analysis
func (c *SQLiteCache) Delete(ctx context.Context, messageID string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE message_id = ?
	`, messageID)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE expires_at <= datetime('now')
	`)

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
