package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

type fakeAuth struct {
	sessions   map[string]*model.SessionResponse
	signedOut  []string
	signOutErr error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{sessions: map[string]*model.SessionResponse{
		"tok-admin": {
			AccessToken: "tok-admin",
			User:        &model.User{Email: "admin@example.com"},
			Profile:     &model.Profile{Role: model.RoleAdmin},
		},
	}}
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*model.SessionResponse, error) {
	if email != "admin@example.com" || password != "correct-horse" {
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}
	return f.sessions["tok-admin"], nil
}

func (f *fakeAuth) Session(ctx context.Context, token string) (*model.SessionResponse, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, apperrors.Unauthorized(errors.New("bad token"))
}

func (f *fakeAuth) SignOut(ctx context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return f.signOutErr
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newFakeAuth(), nil)
	defer store.Close()

	events, cancel := store.Subscribe()
	defer cancel()

	assert.Nil(t, store.Current())
	assert.False(t, store.Profile().HasAnyRole(model.RoleAdmin))

	_, err := store.SignIn(ctx, "admin@example.com", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	assert.Nil(t, store.Current())

	sess, err := store.SignIn(ctx, "admin@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "tok-admin", sess.AccessToken)
	assert.Equal(t, "tok-admin", store.Token())
	assert.True(t, store.Profile().HasAnyRole(model.HealthcareRoles...))

	ev := <-events
	assert.Equal(t, SignedIn, ev.Type)
	assert.Same(t, sess, ev.Session)

	require.NoError(t, store.SignOut(ctx))
	ev = <-events
	assert.Equal(t, SignedOut, ev.Type)
	assert.Nil(t, ev.Session)
	assert.Empty(t, store.Token())
}

func TestStore_Init(t *testing.T) {
	ctx := context.Background()

	t.Run("restores valid token", func(t *testing.T) {
		store := NewStore(newFakeAuth(), nil)
		events, cancel := store.Subscribe()
		defer cancel()

		require.NoError(t, store.Init(ctx, "tok-admin"))
		assert.Equal(t, Restored, (<-events).Type)
		assert.Equal(t, model.RoleAdmin, store.Profile().Role)
	})

	t.Run("stale token stays signed out", func(t *testing.T) {
		store := NewStore(newFakeAuth(), nil)
		require.NoError(t, store.Init(ctx, "expired"))
		assert.Nil(t, store.Current())
	})

	t.Run("empty token", func(t *testing.T) {
		store := NewStore(newFakeAuth(), nil)
		require.NoError(t, store.Init(ctx, ""))
		assert.Nil(t, store.Current())
	})
}

func TestStore_SignOutClearsOnBackendError(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuth()
	auth.signOutErr = errors.New("network down")
	store := NewStore(auth, nil)

	_, err := store.SignIn(ctx, "admin@example.com", "correct-horse")
	require.NoError(t, err)

	err = store.SignOut(ctx)
	assert.Error(t, err)
	assert.Nil(t, store.Current())
	assert.Equal(t, []string{"tok-admin"}, auth.signedOut)
}

func TestStore_Close(t *testing.T) {
	store := NewStore(newFakeAuth(), nil)
	events, cancel := store.Subscribe()

	store.Close()
	_, ok := <-events
	assert.False(t, ok)
	cancel()

	_, err := store.SignIn(context.Background(), "admin@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrClosed)

	late, _ := store.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestStore_VerifySignsOutRevokedSession(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuth()
	store := NewStore(auth, nil)
	defer store.Close()

	require.NoError(t, store.Init(ctx, "tok-admin"))
	events, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Verify(ctx))
	assert.Equal(t, "tok-admin", store.Token())

	delete(auth.sessions, "tok-admin")
	require.NoError(t, store.Verify(ctx))
	assert.Nil(t, store.Current())

	ev := <-events
	assert.Equal(t, SignedOut, ev.Type)
	assert.Empty(t, auth.signedOut, "a rejected token is not signed out remotely")

	assert.NoError(t, store.Verify(ctx), "no token, nothing to verify")
}
