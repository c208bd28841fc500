// Package identity resolves the authenticated user behind a request.
// Credential issuance is out of scope; resolvers only read identities
// established elsewhere.
package identity

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
)

// ErrNoIdentity is returned when a request carries no resolvable user.
var ErrNoIdentity = errors.New("no resolvable identity")

// Resolver extracts a stable username from a request, or fails.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

const sessionUserKey = "username"

// SessionResolver reads the username from a cookie session.
type SessionResolver struct {
	store       sessions.Store
	sessionName string
}

// NewSessionResolver builds a resolver over a cookie store keyed with
// secret. maxAge bounds cookie lifetime in seconds.
func NewSessionResolver(secret []byte, sessionName string, maxAge int) *SessionResolver {
	store := sessions.NewCookieStore(secret)
	store.MaxAge(maxAge)
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return &SessionResolver{store: store, sessionName: sessionName}
}

// Resolve returns the session's username or ErrNoIdentity.
func (s *SessionResolver) Resolve(r *http.Request) (string, error) {
	session, err := s.store.Get(r, s.sessionName)
	if err != nil {
		return "", ErrNoIdentity
	}
	username, ok := session.Values[sessionUserKey].(string)
	if !ok || username == "" {
		return "", ErrNoIdentity
	}
	return username, nil
}

// Grant writes username into the request's session. Exposed for login
// handlers living outside this subsystem and for tests.
func (s *SessionResolver) Grant(w http.ResponseWriter, r *http.Request, username string) error {
	session, _ := s.store.Get(r, s.sessionName)
	session.Values[sessionUserKey] = username
	return session.Save(r, w)
}
