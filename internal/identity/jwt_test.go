package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndResolve(t *testing.T) {
	resolver := NewResolver([]byte("test-secret"), time.Hour, "lexiduel-test")
	playerID := uuid.New()

	token, err := resolver.Issue(playerID, "nadia")
	require.NoError(t, err)

	got, err := resolver.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, playerID, got)
}

func TestResolveWrongSecret(t *testing.T) {
	issuer := NewResolver([]byte("secret-a"), time.Hour, "")
	token, err := issuer.Issue(uuid.New(), "")
	require.NoError(t, err)

	verifier := NewResolver([]byte("secret-b"), time.Hour, "")
	_, err = verifier.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveExpired(t *testing.T) {
	resolver := NewResolver([]byte("test-secret"), -time.Minute, "")
	token, err := resolver.Issue(uuid.New(), "")
	require.NoError(t, err)

	_, err = resolver.Resolve(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestResolveGarbage(t *testing.T) {
	resolver := NewResolver([]byte("test-secret"), time.Hour, "")
	_, err := resolver.Resolve("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
