package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

const loginURL = "https://login.example.com"

func passwordCreds() Credentials {
	return Credentials{
		Username:      "ops@lastmile.example",
		Password:      "hunter2",
		SecurityToken: "SECTOKEN",
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		LoginURL:      loginURL,
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		state   State
		method  Method
		missing []string
	}{
		{"nothing set", Credentials{}, StateMissing, MethodNone, []string{EnvAccessToken}},
		{"static token", Credentials{AccessToken: "00D!abc", Username: "ignored"}, StateConfigured, MethodToken, nil},
		{"password complete", passwordCreds(), StateConfigured, MethodPassword, nil},
		{"password incomplete", Credentials{Username: "ops"}, StateInvalid, MethodPassword, []string{EnvPassword, EnvClientID, EnvClientSecret}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Check(tt.creds)
			assert.Equal(t, tt.state, st.State)
			assert.Equal(t, tt.method, st.Method)
			assert.Equal(t, tt.missing, st.Missing)
			assert.NotEmpty(t, st.Summary)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvAccessToken, "00D!abc")
	t.Setenv(EnvLoginURL, "")

	c := FromEnv()
	assert.Equal(t, "00D!abc", c.AccessToken)
	assert.Equal(t, "https://login.salesforce.com", c.LoginURL)
	assert.Equal(t, "https://login.salesforce.com/services/oauth2/token", c.TokenURL())
}

func TestTokenSourceStatic(t *testing.T) {
	src, err := Credentials{AccessToken: "00D!abc"}.TokenSource(context.Background())
	require.NoError(t, err)

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "00D!abc", tok.AccessToken)
}

func TestTokenSourceMissing(t *testing.T) {
	_, err := Credentials{}.TokenSource(context.Background())
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestTokenSourcePasswordGrant(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPost, loginURL+"/services/oauth2/token",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "password", req.PostForm.Get("grant_type"))
			assert.Equal(t, "ops@lastmile.example", req.PostForm.Get("username"))
			assert.Equal(t, "hunter2SECTOKEN", req.PostForm.Get("password"))
			assert.Equal(t, "client-id", req.PostForm.Get("client_id"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]string{
				"access_token": "00D!session",
				"instance_url": "https://org.my.salesforce.com",
				"token_type":   "Bearer",
			})
		})

	src, err := passwordCreds().TokenSource(context.Background())
	require.NoError(t, err)

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "00D!session", tok.AccessToken)
	assert.Equal(t, "https://org.my.salesforce.com", InstanceURL(tok))
	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "token is reused")
}

func TestTokenSourcePasswordRejected(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPost, loginURL+"/services/oauth2/token",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error":"invalid_grant","error_description":"authentication failure"}`))

	_, err := passwordCreds().TokenSource(context.Background())
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}
