package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionResolver_RoundTrip(t *testing.T) {
	resolver := NewSessionResolver([]byte("test-secret"), "pairchat-session", 3600)

	// Grant a session and replay its cookie on a fresh request.
	grantReq := httptest.NewRequest("POST", "/login", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, resolver.Grant(rec, grantReq, "alice"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest("GET", "/ws", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	username, err := resolver.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestSessionResolver_NoSession(t *testing.T) {
	resolver := NewSessionResolver([]byte("test-secret"), "pairchat-session", 3600)

	req := httptest.NewRequest("GET", "/ws", nil)
	_, err := resolver.Resolve(req)
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestSessionResolver_ForeignCookieRejected(t *testing.T) {
	issuer := NewSessionResolver([]byte("secret-one"), "pairchat-session", 3600)
	verifier := NewSessionResolver([]byte("secret-two"), "pairchat-session", 3600)

	grantReq := httptest.NewRequest("POST", "/login", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, issuer.Grant(rec, grantReq, "alice"))

	req := httptest.NewRequest("GET", "/ws", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	_, err := verifier.Resolve(req)
	assert.ErrorIs(t, err, ErrNoIdentity)
}
