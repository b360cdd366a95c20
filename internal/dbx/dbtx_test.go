package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// openTokens returns a private in-memory database holding one refresh token "old".
func openTokens(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE refresh_tokens (token TEXT PRIMARY KEY, user_id TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO refresh_tokens(token, user_id) VALUES ('old', 'u1')`)
	require.NoError(t, err)
	return db
}

func tokens(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT token FROM refresh_tokens ORDER BY token`)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}

// rotate replaces old with next inside tx, the way token refresh does.
func rotate(ctx context.Context, tx DBTX, next string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = 'old'`)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return fmt.Errorf("deleted %d rows", n)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO refresh_tokens(token, user_id) VALUES (?, 'u1')`, next)
	return err
}

func TestWithTx_CommitsRotation(t *testing.T) {
	db := openTokens(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return rotate(ctx, tx, "new")
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, tokens(t, db))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTokens(t)
	boom := errors.New("token store down")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, rotate(ctx, tx, "new"))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"old"}, tokens(t, db))
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := openTokens(t)

	assert.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, rotate(ctx, tx, "new"))
			panic("kaput")
		})
	})
	assert.Equal(t, []string{"old"}, tokens(t, db))
}

func TestWithTx_CommitErrorIsReturned(t *testing.T) {
	db := openTokens(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return tx.(*sql.Tx).Rollback()
	})

	assert.ErrorIs(t, err, sql.ErrTxDone)
}

func TestWithTx_BeginError(t *testing.T) {
	db := openTokens(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert user: %w", unique)))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.False(t, IsUniqueViolation(nil))
}
