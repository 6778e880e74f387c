package repository

import (
	"context"

	"telegram-identity-bot/internal/domain/model"
)

// ProfileRepository stores the identity collected during a dialogue. The
// login is first associated with a conversation; the name is keyed by login,
// which stays the stable identity once known.
type ProfileRepository interface {
	// SaveLogin upserts the login for a conversation. Idempotent.
	SaveLogin(ctx context.Context, chatID int64, login string) error
	// FindLogin returns the login recorded for a conversation, or "" when
	// none was ever recorded.
	FindLogin(ctx context.Context, chatID int64) (string, error)
	// SaveName upserts the full name for a login.
	SaveName(ctx context.Context, login string, name model.FullName) error
	// FindName returns the stored name, or nil when absent. A stored value
	// that no longer parses into name parts is reported as nil.
	FindName(ctx context.Context, login string) (*model.FullName, error)
}
