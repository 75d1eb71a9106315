package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for chat registry operations.
// Methods accept context.Context for cancellation and timeouts. Every
// mutation is durably committed before the call returns.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RegisterChat inserts or refreshes a registry entry for the chat.
	// Re-registering a known chat is a no-op apart from the write (upsert).
	RegisterChat(ctx context.Context, chatID int64, title string) error

	// UnregisterChat removes the chat from the registry. Removing an unknown
	// chat is not an error.
	UnregisterChat(ctx context.Context, chatID int64) error

	// GetChat retrieves a registry entry by chat ID. Returns nil, nil if not found.
	GetChat(ctx context.Context, chatID int64) (*Chat, error)

	// ListChats retrieves all registered chats in registration order.
	ListChats(ctx context.Context) ([]Chat, error)

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RegisterChat inserts or refreshes a registry entry for the chat.
func (s *sqlxStore) RegisterChat(ctx context.Context, chatID int64, title string) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO chats (chat_id, title, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(chat_id) DO UPDATE SET
            title = excluded.title,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.ExecContext(ctx, query, chatID, title, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error registering chat", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to register chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Chat registered", "chat_id", chatID, "title", title)
	return nil
}

// UnregisterChat removes the chat from the registry.
func (s *sqlxStore) UnregisterChat(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE chat_id = ?;`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error unregistering chat", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to unregister chat %d: %w", chatID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		s.logger.DebugContext(ctx, "Unregister for unknown chat, nothing to do", "chat_id", chatID)
	} else {
		s.logger.InfoContext(ctx, "Chat unregistered", "chat_id", chatID)
	}
	return nil
}

// GetChat retrieves a registry entry by chat ID. Returns nil, nil if not found.
func (s *sqlxStore) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	var chat Chat
	query := `
        SELECT id, created_at, updated_at, chat_id, title
        FROM chats
        WHERE chat_id = ?;
    `

	err := s.db.GetContext(ctx, &chat, query, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching chat", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get chat %d: %w", chatID, err)
	}

	return &chat, nil
}

// ListChats retrieves all registered chats in registration order.
func (s *sqlxStore) ListChats(ctx context.Context) ([]Chat, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var chats []Chat
	query := `
        SELECT id, created_at, updated_at, chat_id, title
        FROM chats
        ORDER BY created_at ASC, id ASC;
    `

	if err := s.db.SelectContext(ctx, &chats, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing chats", "error", err)
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed registered chats", "count", len(chats))
	return chats, nil
}

// RunMaintenance performs database maintenance tasks like VACUUM.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	startTime := time.Now()

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "Error running VACUUM", "error", err)
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		s.logger.ErrorContext(ctx, "Error running ANALYZE", "error", err)
		return fmt.Errorf("failed to run ANALYZE: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed", "duration", time.Since(startTime))
	return nil
}
