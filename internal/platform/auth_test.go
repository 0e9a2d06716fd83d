package platform

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/logger"
	"canopy/pkg/tenants"
)

func testApp() *App {
	return New(logger.Nop(), tenants.NewMemoryStore(logger.Nop()), Config{
		Env:        "dev",
		BaseDomain: "tenant.example.net",
		JWTSecret:  []byte("test-secret"),
	})
}

func TestTokenRoundTrip(t *testing.T) {
	a := testApp()

	raw, err := a.newToken("u1", "t1")
	require.NoError(t, err)

	uid, tid, err := a.parseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
	assert.Equal(t, "t1", tid)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	a := testApp()
	raw, err := a.newToken("u1", "t1")
	require.NoError(t, err)

	other := New(logger.Nop(), tenants.NewMemoryStore(logger.Nop()), Config{JWTSecret: []byte("other-secret")})
	_, _, err = other.parseToken(raw)
	assert.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	a := testApp()
	_, _, err := a.parseToken("not-a-token")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	a := testApp()

	tok, err := jwt.NewBuilder().
		Claim("userId", "u1").
		Claim("tenantId", "t1").
		IssuedAt(time.Now().Add(-2 * time.Hour)).
		Expiration(time.Now().Add(-time.Hour)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, a.cfg.JWTSecret))
	require.NoError(t, err)

	_, _, err = a.parseToken(string(signed))
	assert.Error(t, err)
}

func TestTokenMissingClaimsRejected(t *testing.T) {
	a := testApp()

	tok, err := jwt.NewBuilder().Expiration(time.Now().Add(time.Hour)).Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, a.cfg.JWTSecret))
	require.NoError(t, err)

	_, _, err = a.parseToken(string(signed))
	assert.Error(t, err)
}

func TestTokenEmptyClaimsRejected(t *testing.T) {
	a := testApp()

	cases := []struct {
		name             string
		userID, tenantID string
	}{
		{"empty userId", "", "t1"},
		{"empty tenantId", "u1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := jwt.NewBuilder().
				Claim("userId", tc.userID).
				Claim("tenantId", tc.tenantID).
				Expiration(time.Now().Add(time.Hour)).
				Build()
			require.NoError(t, err)
			signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, a.cfg.JWTSecret))
			require.NoError(t, err)

			_, _, err = a.parseToken(string(signed))
			assert.Error(t, err)
		})
	}
}
