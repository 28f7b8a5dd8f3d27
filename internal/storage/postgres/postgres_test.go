package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inteiros/GoStack-GoMarketplace/internal/storage"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func TestStore_EnsureSchema(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv_store")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetExisting(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
		WithArgs("@GoMarketplace:products").
		WillReturnRows(mock.NewRows([]string{"value"}).AddRow(`[{"id":"a","quantity":2}]`))

	got, err := s.Get(context.Background(), "@GoMarketplace:products")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a","quantity":2}]`, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
		WithArgs("k").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "postgres get")
}

func TestStore_SetUpserts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(setSQL)).
		WithArgs("k", "[]").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Set(context.Background(), "k", "[]"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(setSQL)).
		WithArgs("k", "[]").
		WillReturnError(errors.New("read-only transaction"))

	err := s.Set(context.Background(), "k", "[]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres set")
}
