package application_test

import (
	"context"
	"fmt"
	"io"
	"sync"

	"telegram-identity-bot/internal/domain/model"

	"github.com/rs/zerolog"
)

// recorder collects the observable side effects of a dispatch in order, so
// tests can assert that durable writes happen before outbound sends.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// memDialogueRepo is an in-memory dialogue store for dispatcher tests.
type memDialogueRepo struct {
	mu        sync.RWMutex
	states    map[int64]model.DialogueState
	rec       *recorder
	getErr    error
	updateErr error
}

func newMemDialogueRepo(rec *recorder) *memDialogueRepo {
	return &memDialogueRepo{states: make(map[int64]model.DialogueState), rec: rec}
}

func (m *memDialogueRepo) Get(ctx context.Context, chatID int64) (*model.DialogueState, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[chatID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memDialogueRepo) Update(ctx context.Context, chatID int64, state model.DialogueState) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = state
	m.rec.add("update:%s", state)
	return nil
}

func (m *memDialogueRepo) Remove(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
	m.rec.add("remove")
	return nil
}

// memMessenger records outbound sends instead of talking to a transport.
type memMessenger struct {
	rec     *recorder
	sendErr error
}

func (m *memMessenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.rec.add("send:%s", text)
	return nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
