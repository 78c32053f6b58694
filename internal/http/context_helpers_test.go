package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
)

func TestUserContextRoundTrip(t *testing.T) {
	t.Parallel()

	u := &domainauth.User{ID: "u-1", Role: domainauth.RoleManager}
	ctx := SetUserInContext(context.Background(), u)

	got, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, domainauth.RoleManager, RoleFromContext(ctx))
}

func TestUserContextAbsent(t *testing.T) {
	t.Parallel()

	got, ok := UserFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, domainauth.Role(""), RoleFromContext(context.Background()))
}

func TestSetNilUserIsNoOp(t *testing.T) {
	t.Parallel()

	ctx := SetUserInContext(context.Background(), nil)
	_, ok := UserFromContext(ctx)
	assert.False(t, ok)
}
