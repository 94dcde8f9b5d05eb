package google

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/coachcal/internal/logging"
)

// newExchangeServer serves the token endpoint for the authorization-code grant.
func newExchangeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "the-code" || r.PostForm.Get("code_verifier") == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func redirect(t *testing.T, authURL string, query func(state string) url.Values, paths ...string) {
	t.Helper()

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	params := u.Query()

	assert.Equal(t, "offline", params.Get("access_type"))
	assert.Equal(t, "S256", params.Get("code_challenge_method"))
	assert.NotEmpty(t, params.Get("code_challenge"))

	redirectURI := params.Get("redirect_uri")
	require.True(t, strings.HasPrefix(redirectURI, "http://127.0.0.1:"), redirectURI)

	client := &http.Client{Timeout: 5 * time.Second}
	for _, p := range paths {
		resp, err := client.Get(strings.TrimSuffix(redirectURI, "/") + p)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	resp, err := client.Get(redirectURI + "?" + query(params.Get("state")).Encode())
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestLocalServerFlow_Authorize(t *testing.T) {
	srv := newExchangeServer(t)
	conf := testConfig(srv.URL)

	var out bytes.Buffer
	flow := &LocalServerFlow{
		Out:    &out,
		Logger: logging.DiscardLogger(),
		OpenURL: func(authURL string) error {
			redirect(t, authURL, func(state string) url.Values {
				return url.Values{"code": {"the-code"}, "state": {state}}
			}, "/favicon.ico")
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, err := flow.Authorize(ctx, conf)
	require.NoError(t, err)
	assert.Equal(t, "at", token.AccessToken)
	assert.Equal(t, "rt", token.RefreshToken)
	assert.Contains(t, out.String(), "https://accounts.example.com/auth")
	assert.Empty(t, conf.RedirectURL, "caller's config must not be modified")
}

func TestLocalServerFlow_StateMismatch(t *testing.T) {
	srv := newExchangeServer(t)

	flow := &LocalServerFlow{
		Out:    &bytes.Buffer{},
		Logger: logging.DiscardLogger(),
		OpenURL: func(authURL string) error {
			redirect(t, authURL, func(string) url.Values {
				return url.Values{"code": {"the-code"}, "state": {"forged"}}
			})
			return nil
		},
	}

	_, err := flow.Authorize(context.Background(), testConfig(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestLocalServerFlow_Denied(t *testing.T) {
	srv := newExchangeServer(t)

	flow := &LocalServerFlow{
		Out:    &bytes.Buffer{},
		Logger: logging.DiscardLogger(),
		OpenURL: func(authURL string) error {
			redirect(t, authURL, func(state string) url.Values {
				return url.Values{"error": {"access_denied"}, "state": {state}}
			})
			return nil
		},
	}

	_, err := flow.Authorize(context.Background(), testConfig(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestLocalServerFlow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	flow := &LocalServerFlow{
		Out:    &bytes.Buffer{},
		Logger: logging.DiscardLogger(),
		OpenURL: func(string) error {
			cancel()
			return errors.New("no browser")
		},
	}

	_, err := flow.Authorize(ctx, testConfig("http://127.0.0.1:1/token"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalServerFlow_NilConfig(t *testing.T) {
	flow := &LocalServerFlow{Out: &bytes.Buffer{}}
	_, err := flow.Authorize(context.Background(), nil)
	assert.Error(t, err)
}

var _ AuthFlow = (*LocalServerFlow)(nil)
var _ oauth2.TokenSource = (*persistingTokenSource)(nil)
