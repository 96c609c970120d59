package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateAccessToken("ada", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.True(t, claims.CanWrite())
}

func TestManager_Rejects(t *testing.T) {
	m := NewManager("secret", time.Hour)

	past := time.Now().Add(-2 * time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		Type: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(past),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: RoleAdmin, Type: "refresh"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewManager("other", time.Hour).GenerateAccessToken("ada", RoleAdmin)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_CanWrite(t *testing.T) {
	assert.True(t, (&Claims{Role: RoleEditor}).CanWrite())
	assert.False(t, (&Claims{Role: "reader"}).CanWrite())
	assert.False(t, (&Claims{}).CanWrite())
}
