package repository

import "context"

// DialogueRepository persists one serializable state value per conversation.
// The store keeps an append-only history of snapshots; only the most recent
// one is authoritative.
//
// Get returns nil for a conversation with no record. A snapshot that no
// longer decodes into S is also reported as nil, never as an error, so a
// state-shape change cannot wedge a conversation.
type DialogueRepository[S any] interface {
	Get(ctx context.Context, chatID int64) (*S, error)
	Update(ctx context.Context, chatID int64, state S) error
	Remove(ctx context.Context, chatID int64) error
}
