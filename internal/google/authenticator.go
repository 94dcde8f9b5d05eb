package google

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/coachcal/internal/instrumentation"
	"github.com/teemow/coachcal/internal/logging"
)

// AuthFlow obtains a fresh token from the user.
type AuthFlow interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// Authenticator produces a token source from a persisted token, refreshing
// it or falling back to the interactive flow as needed.
type Authenticator struct {
	Config  *oauth2.Config
	Store   TokenStore
	Flow    AuthFlow
	Metrics *instrumentation.Metrics
	Logger  logging.Logger
}

func (a *Authenticator) logger() logging.Logger {
	if a.Logger == nil {
		return logging.DefaultLogger()
	}
	return a.Logger
}

// TokenSource returns a token source backed by the store.
//
// Without a persisted token, or with an expired one that cannot be refreshed,
// the interactive flow runs and its token is saved. An expired token is
// refreshed immediately so that a revoked grant fails here rather than on the
// first API call. Refreshed tokens are written back to the store.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if a.Config == nil || a.Store == nil {
		return nil, errors.New("authenticator requires an OAuth config and a token store")
	}

	token, err := a.Store.Load()
	switch {
	case errors.Is(err, ErrNoToken):
		a.logger().Info("no persisted token, starting authorization")
		token = nil
	case err != nil:
		return nil, err
	}

	if token != nil && !token.Valid() && token.RefreshToken == "" {
		a.logger().Info("persisted token expired and cannot be refreshed, starting authorization")
		token = nil
	}

	if token == nil {
		token, err = a.Authorize(ctx)
		if err != nil {
			return nil, err
		}
	}

	ts := &persistingTokenSource{
		ctx:     ctx,
		base:    a.Config.TokenSource(ctx, token),
		store:   a.Store,
		metrics: a.Metrics,
		logger:  a.logger(),
		last:    token.AccessToken,
	}

	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return ts, nil
}

// Authorize runs the interactive flow unconditionally and persists the result.
func (a *Authenticator) Authorize(ctx context.Context) (*oauth2.Token, error) {
	if a.Flow == nil {
		return nil, errors.New("no authorization flow configured")
	}

	token, err := a.Flow.Authorize(ctx, a.Config)
	if err != nil {
		a.Metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("failed to authorize: %w", err)
	}
	a.Metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	if err := a.Store.Save(token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	return token, nil
}

// persistingTokenSource saves every new access token handed out by base.
type persistingTokenSource struct {
	ctx     context.Context
	base    oauth2.TokenSource
	store   TokenStore
	metrics *instrumentation.Metrics
	logger  logging.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}

	if token.AccessToken == s.last {
		return token, nil
	}
	s.last = token.AccessToken
	s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultSuccess)

	if err := s.store.Save(token); err != nil {
		// The refreshed token is still usable for this run.
		s.logger.Warn("failed to persist refreshed token", logging.Err(err))
		return token, nil
	}
	s.logger.Debug("persisted refreshed token", "access_token", logging.SanitizeToken(token.AccessToken))
	return token, nil
}
