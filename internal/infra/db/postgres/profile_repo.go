package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-identity-bot/internal/domain"
	"telegram-identity-bot/internal/domain/model"
	"telegram-identity-bot/internal/domain/ports/repository"
	"telegram-identity-bot/internal/infra/metrics"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo reads and writes identity fields through the store's
// procedural API. Each method is a single round trip; no client-side
// transaction spans two calls.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) SaveLogin(ctx context.Context, chatID int64, login string) error {
	if _, err := r.pool.Exec(ctx, "select api.chat_update($1, $2)", chatID, login); err != nil {
		metrics.IncStoreError("chat_update")
		return domain.NewStoreError("chat_update", err)
	}
	return nil
}

func (r *ProfileRepo) FindLogin(ctx context.Context, chatID int64) (string, error) {
	var login *string
	err := r.pool.QueryRow(ctx, "select api.login_get($1)", chatID).Scan(&login)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		metrics.IncStoreError("login_get")
		return "", domain.NewStoreError("login_get", err)
	}
	if login == nil {
		return "", nil
	}
	return *login, nil
}

func (r *ProfileRepo) SaveName(ctx context.Context, login string, name model.FullName) error {
	if _, err := r.pool.Exec(ctx, "select api.name_update($1, $2, $3)", login, name.First, name.Last); err != nil {
		metrics.IncStoreError("name_update")
		return domain.NewStoreError("name_update", err)
	}
	return nil
}

// FindName returns nil both for an absent row and for a stored value that no
// longer splits into name parts; the caller re-collects the name either way.
func (r *ProfileRepo) FindName(ctx context.Context, login string) (*model.FullName, error) {
	var stored *string
	err := r.pool.QueryRow(ctx, "select api.name_get($1)", login).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.IncStoreError("name_get")
		return nil, domain.NewStoreError("name_get", err)
	}
	if stored == nil {
		return nil, nil
	}
	return model.ParseFullName(*stored), nil
}
