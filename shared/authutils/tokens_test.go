package authutils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueVerify(t *testing.T) {
	m, err := NewJWTManager("secret", time.Hour, nil)
	require.NoError(t, err)

	tok, err := m.Issue("u-1", "alice", "alice@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWTManager_Rejects(t *testing.T) {
	m, err := NewJWTManager("secret", time.Hour, nil)
	require.NoError(t, err)
	other, err := NewJWTManager("other", time.Hour, nil)
	require.NoError(t, err)

	foreign, err := other.Issue("u-1", "alice", "")
	require.NoError(t, err)
	_, err = m.Verify(foreign)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Verify(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = NewJWTManager("", time.Hour, nil)
	assert.Error(t, err)
}
