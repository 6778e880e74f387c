package usecase

import (
	"context"
	"io"
	"sync"

	"telegram-identity-bot/internal/domain/model"

	"github.com/rs/zerolog"
)

// memProfileRepo is a small in-memory implementation used by unit tests.
// Override the *Err fields to simulate store failures.
type memProfileRepo struct {
	mu      sync.RWMutex
	logins  map[int64]string
	names   map[string]model.FullName
	saveErr error
	findErr error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{
		logins: make(map[int64]string),
		names:  make(map[string]model.FullName),
	}
}

func (m *memProfileRepo) SaveLogin(ctx context.Context, chatID int64, login string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins[chatID] = login
	return nil
}

func (m *memProfileRepo) FindLogin(ctx context.Context, chatID int64) (string, error) {
	if m.findErr != nil {
		return "", m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logins[chatID], nil
}

func (m *memProfileRepo) SaveName(ctx context.Context, login string, name model.FullName) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[login] = name
	return nil
}

func (m *memProfileRepo) FindName(ctx context.Context, login string) (*model.FullName, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.names[login]
	if !ok {
		return nil, nil
	}
	cp := name
	return &cp, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
