// Package db provides the optional Postgres chat archive: connection helpers,
// idempotent schema migration, and the message insert used by the archiver
// hook. The archive is write-only from the bot's point of view; engine state
// is never restored from it.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'
)

// Connect opens a Postgres connection for the given DSN.
func Connect(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty DSN")
	}
	return sql.Open("pgx", dsn)
}

// Migrate applies idempotent schema changes for the chat archive.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGSERIAL PRIMARY KEY,
			channel TEXT NOT NULL,
			message_id BIGINT NOT NULL,
			nick TEXT NOT NULL,
			message TEXT NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_channel_observed ON chat_messages (channel, observed_at)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// InsertChatMessage archives one observed chat line.
func InsertChatMessage(ctx context.Context, db *sql.DB, channel string, messageID uint64, nick, message string, observedAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO chat_messages (channel, message_id, nick, message, observed_at) VALUES ($1,$2,$3,$4,$5)`,
		channel, int64(messageID), nick, message, observedAt)
	return err
}
