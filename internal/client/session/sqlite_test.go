package session

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db)
}

func TestSaveAndLoad(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	require.NoError(t, r.Save(ctx, &Session{Target: "http://jars.local", Token: "t1", Version: "v1"}))

	s, err := r.Load(ctx, "http://jars.local")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "t1", s.Token)
	assert.Equal(t, "v1", s.Version)
	assert.True(t, fixed.Equal(s.UpdatedAt))

	last, err := r.LastTarget(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://jars.local", last)
}

func TestLoad_Missing(t *testing.T) {
	r := setupRepo(t)

	s, err := r.Load(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, s)

	last, err := r.LastTarget(context.Background())
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestSave_Upserts(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &Session{Target: "local", Token: "old"}))
	require.NoError(t, r.Save(ctx, &Session{Target: "local", Token: "new", Version: "v2"}))
	require.NoError(t, r.Save(ctx, &Session{Target: "http://b"}))

	s, err := r.Load(ctx, "local")
	require.NoError(t, err)
	assert.Equal(t, "new", s.Token)
	assert.Equal(t, "v2", s.Version)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "http://b", all[0].Target)
	assert.Equal(t, "local", all[1].Target)

	last, err := r.LastTarget(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://b", last)
}

func TestForget(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &Session{Target: "local", Token: "t"}))
	require.NoError(t, r.Forget(ctx, "local"))
	require.NoError(t, r.Forget(ctx, "local"))

	s, err := r.Load(ctx, "local")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func newMockRepo(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestSave_RollsBackWhenMetadataFails(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+sessions`).
		WithArgs("local", "t", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+metadata`).
		WithArgs(lastTargetKey, []byte("local")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := r.Save(context.Background(), &Session{Target: "local", Token: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save session[local]")
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_BeginError(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("locked"))

	err := r.Save(context.Background(), &Session{Target: "local"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_DBErrorWrapped(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT token, version, updated_at FROM sessions`).
		WithArgs("local").
		WillReturnError(sql.ErrConnDone)

	_, err := r.Load(context.Background(), "local")
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "failed to load session[local]")
}

func TestList_ScanError(t *testing.T) {
	r, mock := newMockRepo(t)
	rows := sqlmock.NewRows([]string{"target", "token", "version", "updated_at"}).
		AddRow("local", "t", "v", "not a time")
	mock.ExpectQuery(`SELECT target, token, version, updated_at FROM sessions`).WillReturnRows(rows)

	_, err := r.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan session row")
}

func TestForget_DBErrorWrapped(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM sessions`).WithArgs("local").WillReturnError(errors.New("boom"))

	err := r.Forget(context.Background(), "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to forget session[local]")
}

func TestLastTarget_DBErrorWrapped(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT value FROM metadata`).WithArgs(lastTargetKey).WillReturnError(errors.New("boom"))

	_, err := r.LastTarget(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get metadata[last_target]")
}
