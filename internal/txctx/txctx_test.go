package txctx

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectBegin()
	tx, err := sqlxDB.Beginx()
	require.NoError(t, err)

	ctx := With(context.Background(), tx)
	assert.Same(t, tx, Get(ctx))
	assert.Same(t, tx, Executor(ctx, sqlxDB))
}

func TestGet_NoTx(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	assert.Nil(t, Get(context.Background()))
	assert.Same(t, sqlxDB, Executor(context.Background(), sqlxDB))
}
