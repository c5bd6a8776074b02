package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS cart_snapshots (
	storage_key TEXT PRIMARY KEY,
	payload     JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectSnapshotSQL = `SELECT payload FROM cart_snapshots WHERE storage_key = $1`
	upsertSnapshotSQL = `INSERT INTO cart_snapshots (storage_key, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (storage_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	deleteSnapshotSQL = `DELETE FROM cart_snapshots WHERE storage_key = $1`
)

// PostgresStore keeps one JSONB row per cart.
type PostgresStore struct {
	db     DBTX
	logger *slog.Logger
}

func NewPostgresStore(db DBTX, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the snapshot table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "create cart_snapshots", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (cart.Cart, error) {
	var payload []byte
	err := s.db.QueryRow(ctx, selectSnapshotSQL, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return cart.Cart{}, nil
	}
	if err != nil {
		return cart.Cart{}, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "select cart snapshot", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(payload, &c); err != nil {
		return cart.Cart{}, infra.WrapRepoErr(s.logger, infra.KindCorruptSnapshot, "unmarshal cart", err)
	}
	return c, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, c cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindCorruptSnapshot, "marshal cart", err)
	}
	if _, err := s.db.Exec(ctx, upsertSnapshotSQL, key, payload); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "upsert cart snapshot", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, deleteSnapshotSQL, key); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "delete cart snapshot", err)
	}
	return nil
}
