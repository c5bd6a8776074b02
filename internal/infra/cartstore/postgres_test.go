//go:build unit

package cartstore

import (
	"context"
	"encoding/json"
	"testing"

	"storefront-gateway/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *MockDBTX) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgx.Row)
}

type fakeRow struct {
	payload []byte
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.payload
	return nil
}

func TestPostgresStore_Load(t *testing.T) {
	payload, err := json.Marshal(sampleCart())
	require.NoError(t, err)

	tests := []struct {
		name      string
		row       fakeRow
		wantItems int
		wantKind  infra.RepositoryErrorKind
	}{
		{name: "stored snapshot", row: fakeRow{payload: payload}, wantItems: 2},
		{name: "no row yields empty cart", row: fakeRow{err: pgx.ErrNoRows}, wantItems: 0},
		{name: "query failure", row: fakeRow{err: assert.AnError}, wantKind: infra.KindStoreFailure},
		{name: "corrupt payload", row: fakeRow{payload: []byte("{")}, wantKind: infra.KindCorruptSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDBTX)
			db.On("QueryRow", mock.Anything, selectSnapshotSQL, []any{"cart-storage:u"}).Return(tt.row)

			store := NewPostgresStore(db, discardLogger())
			got, err := store.Load(context.Background(), "cart-storage:u")

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Items, tt.wantItems)
			db.AssertExpectations(t)
		})
	}
}

func TestPostgresStore_SaveUpserts(t *testing.T) {
	db := new(MockDBTX)
	db.On("Exec", mock.Anything, upsertSnapshotSQL, mock.MatchedBy(func(args []any) bool {
		if len(args) != 2 || args[0] != "cart-storage:u" {
			return false
		}
		raw, ok := args[1].([]byte)
		return ok && json.Valid(raw)
	})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	store := NewPostgresStore(db, discardLogger())
	require.NoError(t, store.Save(context.Background(), "cart-storage:u", sampleCart()))
	db.AssertExpectations(t)
}

func TestPostgresStore_DeleteAndSchemaErrors(t *testing.T) {
	db := new(MockDBTX)
	db.On("Exec", mock.Anything, deleteSnapshotSQL, []any{"cart-storage:u"}).Return(pgconn.CommandTag{}, assert.AnError)
	db.On("Exec", mock.Anything, createTableSQL, []any(nil)).Return(pgconn.CommandTag{}, nil)

	store := NewPostgresStore(db, discardLogger())

	err := store.Delete(context.Background(), "cart-storage:u")
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindStoreFailure))

	assert.NoError(t, store.EnsureSchema(context.Background()))
}
