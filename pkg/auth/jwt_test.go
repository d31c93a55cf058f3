package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	// Arrange
	service, err := NewJWTService("test-secret", 1)
	require.NoError(t, err)

	// Act
	token, err := service.GenerateToken("host0001", RoleHost)
	require.NoError(t, err)

	claims, err := service.ParseToken(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "host0001", claims.UserID)
	assert.Equal(t, RoleHost, claims.Role)
}

func TestJWTService_WrongSecret(t *testing.T) {
	// Arrange
	issuer, err := NewJWTService("secret-a", 1)
	require.NoError(t, err)
	verifier, err := NewJWTService("secret-b", 1)
	require.NoError(t, err)

	token, err := issuer.GenerateToken("play0001", RolePlayer)
	require.NoError(t, err)

	// Act
	_, err = verifier.ParseToken(token)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Garbage(t *testing.T) {
	// Arrange
	service, err := NewJWTService("test-secret", 1)
	require.NoError(t, err)

	// Act & Assert
	_, err = service.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ParseToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService("", 1)
	assert.Error(t, err)
}
