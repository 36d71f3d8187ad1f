package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

const jobURL = "https://example.my.salesforce.com/services/data/v58.0/jobs/query/750xx"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "session-token"})
	return New(tokens, WithRateLimit(0), WithRetries(3, time.Millisecond))
}

func TestGetAppliesBearerToken(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, jobURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer session-token", req.Header.Get("Authorization"))
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		return httpmock.NewStringResponse(http.StatusOK, `{"state":"JobComplete"}`), nil
	})

	resp, err := c.Get(context.Background(), jobURL, "poll query job")
	require.NoError(t, err)

	var out struct{ State string }
	require.NoError(t, DecodeResponse(resp, "poll query job", &out))
	assert.Equal(t, "JobComplete", out.State)
}

func TestSessionHeaderAuthenticator(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "session-token"})
	c := New(tokens, WithRateLimit(0), WithAuthenticator(SessionAuth))

	httpmock.RegisterResponder(http.MethodGet, jobURL, func(req *http.Request) (*http.Response, error) {
		assert.Empty(t, req.Header.Get("Authorization"))
		assert.Equal(t, "session-token", req.Header.Get(SessionHeader))
		return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
	})

	resp, err := c.Get(context.Background(), jobURL, "poll query job")
	require.NoError(t, err)
	_, err = Expect(resp, "poll query job")
	require.NoError(t, err)
}

func TestGetRetriesServerErrors(t *testing.T) {
	c := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet, jobURL, func(*http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return httpmock.NewStringResponse(http.StatusServiceUnavailable, "busy"), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
	})

	resp, err := c.Get(context.Background(), jobURL, "poll query job")
	require.NoError(t, err)
	_, err = Expect(resp, "poll query job")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, jobURL,
		httpmock.NewStringResponder(http.StatusTooManyRequests, "REQUEST_LIMIT_EXCEEDED"))

	_, err := c.Get(context.Background(), jobURL, "poll query job")
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "REQUEST_LIMIT_EXCEEDED", apiErr.Body)
	assert.Equal(t, 4, httpmock.GetTotalCallCount())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, jobURL,
		httpmock.NewStringResponder(http.StatusUnauthorized, `[{"errorCode":"INVALID_SESSION_ID"}]`))

	resp, err := c.Get(context.Background(), jobURL, "poll query job")
	require.NoError(t, err)

	_, err = Expect(resp, "poll query job")
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
	assert.ErrorIs(t, err, errors.ErrRemote)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSendIsNotRetried(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, jobURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		return httpmock.NewStringResponse(http.StatusInternalServerError, "boom"), nil
	})

	resp, err := c.Send(context.Background(), http.MethodPost, jobURL, "application/json", []byte(`{}`))
	require.NoError(t, err)

	_, err = Expect(resp, "create query job", http.StatusOK)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "create query job", apiErr.Stage)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestGetCanceledContext(t *testing.T) {
	c := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, jobURL, httpmock.NewStringResponder(http.StatusOK, `{}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, jobURL, "poll query job")
	assert.True(t, errors.IsCanceled(err))
}

func TestJSON(t *testing.T) {
	body, err := JSON(map[string]string{"query": "SELECT Id FROM Account WHERE Name > 'A&B'"})
	require.NoError(t, err)
	assert.Equal(t, `{"query":"SELECT Id FROM Account WHERE Name > 'A&B'"}`, string(body))
}
