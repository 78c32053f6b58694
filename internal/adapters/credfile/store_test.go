package credfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(path, logger), path
}

func testUser() *domainauth.User {
	return &domainauth.User{
		ID:     "u-1",
		Email:  "a@b.com",
		Role:   domainauth.RoleAgent,
		Status: domainauth.StatusActive,
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	require.NoError(t, store.SetUser(ctx, testUser()))

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	u, err := store.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "a@b.com", u.Email)
}

func TestEmptyStoreReadsAsAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	u, err := store.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestPersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, path := newTestStore(t)

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	require.NoError(t, store.SetUser(ctx, testUser()))

	reopened := New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	tok, err := reopened.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	u, err := reopened.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u-1", u.ID)
}

func TestClearRemovesBothAndIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, path := newTestStore(t)

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	require.NoError(t, store.SetUser(ctx, testUser()))

	require.NoError(t, store.Clear(ctx))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
	u, err := store.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	// A second clear on a missing file still succeeds.
	require.NoError(t, store.Clear(ctx))
}

func TestCorruptFileReadsAsAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, path := newTestStore(t)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	u, err := store.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	// A write replaces the corrupt document wholesale.
	require.NoError(t, store.SetToken(ctx, "tok-2"))
	tok, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
}

func TestFilePermissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, path := newTestStore(t)

	require.NoError(t, store.SetToken(ctx, "tok-1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEmptyPathIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := New("", slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	require.NoError(t, store.SetUser(ctx, testUser()))

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	u, err := store.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, store.Clear(ctx))
}
