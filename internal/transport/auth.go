package transport

import (
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// Authenticator puts a session token on an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, tok *oauth2.Token)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(*http.Request, *oauth2.Token)

// Apply calls f.
func (f AuthenticatorFunc) Apply(req *http.Request, tok *oauth2.Token) { f(req, tok) }

// SessionHeader is the header older Salesforce endpoints read a session id from.
const SessionHeader = "X-SFDC-Session"

var (
	// Anonymous sends requests as they are.
	Anonymous Authenticator = AuthenticatorFunc(func(*http.Request, *oauth2.Token) {})

	// BearerAuth sets "Authorization: Bearer <token>", which the Bulk API 2.0
	// endpoints expect. Tokens without an access token are not applied.
	BearerAuth Authenticator = AuthenticatorFunc(func(req *http.Request, tok *oauth2.Token) {
		if tok == nil || tok.AccessToken == "" {
			return
		}
		tok.SetAuthHeader(req)
	})

	// SessionAuth sets the session id in SessionHeader.
	SessionAuth Authenticator = AuthenticatorFunc(func(req *http.Request, tok *oauth2.Token) {
		if tok == nil || tok.AccessToken == "" {
			return
		}
		req.Header.Set(SessionHeader, tok.AccessToken)
	})
)

// Auth scheme names accepted by AuthenticatorFor.
const (
	SchemeBearer  = "bearer"
	SchemeSession = "session"
	SchemeNone    = "none"
)

// AuthenticatorFor returns the authenticator for a scheme name. An empty
// name selects bearer.
func AuthenticatorFor(scheme string) (Authenticator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeBearer:
		return BearerAuth, nil
	case SchemeSession:
		return SessionAuth, nil
	case SchemeNone:
		return Anonymous, nil
	default:
		return nil, &errors.ValidationError{
			Field:   "auth-scheme",
			Value:   scheme,
			Message: "must be one of: bearer, session, none",
		}
	}
}
