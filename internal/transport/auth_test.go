package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

func TestAuthenticators(t *testing.T) {
	session := &oauth2.Token{AccessToken: "00Dxx!session", TokenType: "bearer"}

	tests := []struct {
		name   string
		auth   Authenticator
		tok    *oauth2.Token
		header string
		want   string
	}{
		{"bearer", BearerAuth, session, "Authorization", "Bearer 00Dxx!session"},
		{"bearer without token", BearerAuth, &oauth2.Token{}, "Authorization", ""},
		{"bearer nil", BearerAuth, nil, "Authorization", ""},
		{"session header", SessionAuth, session, SessionHeader, "00Dxx!session"},
		{"anonymous", Anonymous, session, "Authorization", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{Header: make(http.Header)}
			tt.auth.Apply(req, tt.tok)
			assert.Equal(t, tt.want, req.Header.Get(tt.header))
		})
	}
}

func TestAuthenticatorFor(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "session-token"}
	tests := []struct {
		scheme string
		header string
		want   string
	}{
		{"", "Authorization", "Bearer session-token"},
		{"Bearer", "Authorization", "Bearer session-token"},
		{"session", SessionHeader, "session-token"},
		{"none", "Authorization", ""},
	}
	for _, tt := range tests {
		t.Run(tt.scheme, func(t *testing.T) {
			a, err := AuthenticatorFor(tt.scheme)
			require.NoError(t, err)
			req := &http.Request{Header: make(http.Header)}
			a.Apply(req, tok)
			assert.Equal(t, tt.want, req.Header.Get(tt.header))
		})
	}

	_, err := AuthenticatorFor("basic")
	assert.True(t, errors.IsInvalidInput(err))
}
