package devbackend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	apperrors "github.com/voicedesk/console-go/internal/errors"
	"github.com/voicedesk/console-go/internal/ports"
	"github.com/voicedesk/console-go/internal/token"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(Config{Email: "dev@example.com", Password: "dev"})
	require.NoError(t, err)
	return b
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Password: "dev"})
	require.Error(t, err)

	_, err = New(Config{Email: "dev@example.com"})
	require.Error(t, err)

	_, err = New(Config{Email: "dev@example.com", Password: "dev", Role: "superuser"})
	require.Error(t, err)

	b, err := New(Config{Email: "dev@example.com", Password: "dev"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, b.cfg.Role, "role defaults to admin")
	assert.Equal(t, DefaultSessionDuration, b.cfg.SessionDuration)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	b := newTestBackend(t)
	ctx := context.Background()

	t.Run("accepts configured credentials", func(t *testing.T) {
		t.Parallel()
		sess, err := b.Login(ctx, ports.Credentials{Email: "dev@example.com", Password: "dev"})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAdmin, sess.User.Role)
		assert.Equal(t, "dev@example.com", sess.User.Email)
		assert.False(t, token.Expired(sess.Token, time.Now()), "minted token carries a live expiry")
		assert.WithinDuration(t, time.Now().Add(DefaultSessionDuration), sess.ExpiresAt, 5*time.Second)
	})

	t.Run("rejects anything else", func(t *testing.T) {
		t.Parallel()
		_, err := b.Login(ctx, ports.Credentials{Email: "dev@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAuthFailed, apperrors.CodeOf(err))
		assert.Equal(t, "Invalid email or password", apperrors.UserMessage(err))
	})
}

func TestRegisterIssuesAgentSession(t *testing.T) {
	t.Parallel()
	b := newTestBackend(t)

	sess, err := b.Register(context.Background(), ports.Registration{
		Email:     "new@example.com",
		Username:  "newbie",
		Password:  "secret",
		FirstName: "New",
		LastName:  "Person",
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAgent, sess.User.Role)
	assert.Equal(t, "newbie", sess.User.Username)
	assert.Equal(t, "New", sess.User.FirstName)
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()
	b := newTestBackend(t)
	ctx := context.Background()

	sess, err := b.Login(ctx, ports.Credentials{Email: "dev@example.com", Password: "dev"})
	require.NoError(t, err)

	u, err := b.Profile(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)
	assert.Equal(t, sess.User.Email, u.Email)
	assert.Equal(t, sess.User.Role, u.Role)
}

func TestProfileRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	b := newTestBackend(t)
	ctx := context.Background()

	sess, err := b.Login(ctx, ports.Credentials{Email: "dev@example.com", Password: "dev"})
	require.NoError(t, err)

	// Move the clock past the session window.
	b.now = func() time.Time { return time.Now().Add(DefaultSessionDuration + time.Minute) }

	_, err = b.Profile(ctx, sess.Token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionExpired, apperrors.CodeOf(err))
}

func TestProfileRejectsGarbageToken(t *testing.T) {
	t.Parallel()
	b := newTestBackend(t)

	_, err := b.Profile(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionExpired, apperrors.CodeOf(err))
}

func TestLogoutIsNoOp(t *testing.T) {
	t.Parallel()
	b := newTestBackend(t)
	require.NoError(t, b.Logout(context.Background(), "anything"))
}
