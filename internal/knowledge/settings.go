// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ChatIDKey holds the Telegram chat that receives research reports.
const ChatIDKey = "telegram_chat_id"

// Setting returns the value stored under key, or "" when it is unset.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return v, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Removing an unset key is not an error.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting %s: %w", key, err)
	}
	return nil
}

// Destination returns a function reading the chat id on every call, so
// a change made while the monitor runs applies to the next relay. Read
// errors are logged at warn and yield "" which skips the relay.
func (s *Store) Destination(ctx context.Context, logger *zap.Logger) func() string {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func() string {
		v, err := s.Setting(ctx, ChatIDKey)
		if err != nil {
			logger.Warn("chat id unreadable, relay skipped", zap.String("db", s.Path()), zap.Error(err))
			return ""
		}
		return v
	}
}
