package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-identity-bot/internal/domain"
	"telegram-identity-bot/internal/domain/ports/repository"
	"telegram-identity-bot/internal/infra/metrics"
)

var _ repository.DialogueRepository[struct{}] = (*DialogueRepo[struct{}])(nil)

// DialogueRepo persists dialogue state through the store's procedural API.
// Every update appends a snapshot row; api.dialogue_latest returns only the
// most recent one, so older snapshots stay behind for audit.
type DialogueRepo[S any] struct {
	pool *pgxpool.Pool
}

func NewDialogueRepo[S any](pool *pgxpool.Pool) *DialogueRepo[S] {
	return &DialogueRepo[S]{pool: pool}
}

// Get returns the most recent snapshot, or nil when the conversation has no
// record. A snapshot that fails to decode is reported as nil as well: a
// state-shape change must not wedge the conversation, it just restarts it.
func (r *DialogueRepo[S]) Get(ctx context.Context, chatID int64) (*S, error) {
	var data *string
	err := r.pool.QueryRow(ctx, "select api.dialogue_latest($1)", chatID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.IncStoreError("dialogue_latest")
		return nil, domain.NewStoreError("dialogue_latest", err)
	}
	if data == nil {
		return nil, nil
	}
	var state S
	if err := json.Unmarshal([]byte(*data), &state); err != nil {
		return nil, nil
	}
	return &state, nil
}

// Update appends a new snapshot for the conversation. Serialization failure
// is a write-path defect and surfaces as an EncodingError.
func (r *DialogueRepo[S]) Update(ctx context.Context, chatID int64, state S) error {
	data, err := json.Marshal(state)
	if err != nil {
		return domain.NewEncodingError("dialogue_append", err)
	}
	if _, err := r.pool.Exec(ctx, "select api.dialogue_append($1, $2)", chatID, string(data)); err != nil {
		metrics.IncStoreError("dialogue_append")
		return domain.NewStoreError("dialogue_append", err)
	}
	return nil
}

// Remove deletes the whole history for the conversation. Removing an absent
// conversation succeeds silently.
func (r *DialogueRepo[S]) Remove(ctx context.Context, chatID int64) error {
	if _, err := r.pool.Exec(ctx, "select api.dialogue_delete($1)", chatID); err != nil {
		metrics.IncStoreError("dialogue_delete")
		return domain.NewStoreError("dialogue_delete", err)
	}
	return nil
}
