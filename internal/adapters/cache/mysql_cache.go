package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/mail-digest/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the AnalysisCache interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_cache (
			message_id VARCHAR(255) PRIMARY KEY,
			spam_score INT,
			importance_score INT,
			summary TEXT,
			category INT,
			analyzed_at TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
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
func (c *MySQLCache) Get(ctx context.Context, messageID string) (*core.CachedAnalysis, error) {
	var spamScore, importanceScore, category int
	var summaryJSON string
	var analyzedAt, expiresAt time.Time

	err := c.db.QueryRowContext(ctx, `
		SELECT spam_score, importance_score, summary, category, analyzed_at, expires_at
		FROM analysis_cache
		WHERE message_id = ? AND expires_at > NOW()
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
		AnalyzedAt:      analyzedAt,
		ExpiresAt:       expiresAt,
	}

	if summaryJSON != "" {
		if err := json.Unmarshal([]byte(summaryJSON), &entry.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode cached summary: %w", err)
		}
	}

	return entry, nil
}

// Set stores an analysis
func (c *MySQLCache) Set(ctx context.Context, entry *core.CachedAnalysis) error {
	summaryJSON := ""
	if entry.Summary != nil {
		encoded, err := json.Marshal(entry.Summary)
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		summaryJSON = string(encoded)
	}

	_, err := c.db.ExecContext(ctx, `
		REPLACE INTO analysis_cache
			(message_id, spam_score, importance_score, summary, category, analyzed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.MessageID, entry.SpamScore, entry.ImportanceScore, summaryJSON, int(entry.Category),
		entry.AnalyzedAt, entry.ExpiresAt)

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Delete removes a cached analysis
func (c *MySQLCache) Delete(ctx context.Context, messageID string) error {
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
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE expires_at <= NOW()
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
func (c *MySQLCache) startCleanupTask() {
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
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
