package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftunes/st-requests/internal/api/middleware"
)

// testKeyPair generates an RSA key pair and returns the private key together
// with the PEM-encoded public key the middleware is configured with
func testKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})
	return key, string(publicPEM)
}

func signedToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthenticate_ValidJWT(t *testing.T) {
	key, publicPEM := testKeyPair(t)
	token := signedToken(t, key, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	result := middleware.Authenticate("Bearer "+token, middleware.AuthConfig{
		JWTPublicKey: publicPEM,
	})

	assert.True(t, result.Success)
	assert.Equal(t, middleware.AuthTypeJWT, result.AuthType)
	assert.Equal(t, "user-123", result.AuthSubject)
}

func TestAuthenticate_ExpiredJWT(t *testing.T) {
	key, publicPEM := testKeyPair(t)
	token := signedToken(t, key, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	result := middleware.Authenticate("Bearer "+token, middleware.AuthConfig{
		JWTPublicKey: publicPEM,
	})

	assert.False(t, result.Success)
	assert.Error(t, result.Error)
}

func TestAuthenticate_WrongKey(t *testing.T) {
	key, _ := testKeyPair(t)
	_, otherPublicPEM := testKeyPair(t)
	token := signedToken(t, key, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	result := middleware.Authenticate("Bearer "+token, middleware.AuthConfig{
		JWTPublicKey: otherPublicPEM,
	})

	assert.False(t, result.Success)
}

func TestAuthenticate_ValidAPIKey(t *testing.T) {
	result := middleware.Authenticate("ApiKey secret-key", middleware.AuthConfig{
		APIKeys: []string{"secret-key", "other-key"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, middleware.AuthTypeAPIKey, result.AuthType)
	assert.Empty(t, result.AuthSubject)
}

func TestAuthenticate_InvalidAPIKey(t *testing.T) {
	result := middleware.Authenticate("ApiKey wrong", middleware.AuthConfig{
		APIKeys: []string{"secret-key"},
	})

	assert.False(t, result.Success)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	result := middleware.Authenticate("", middleware.AuthConfig{})

	assert.False(t, result.Success)
	assert.ErrorContains(t, result.Error, "missing Authorization header")
}

func TestAuthenticate_UnsupportedScheme(t *testing.T) {
	result := middleware.Authenticate("Basic dXNlcjpwYXNz", middleware.AuthConfig{})

	assert.False(t, result.Success)
	assert.ErrorContains(t, result.Error, "unsupported authorization type")
}
