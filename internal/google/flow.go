package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/coachcal/internal/logging"
)

// DefaultListenAddr is the loopback address the redirect listener binds to.
// Port 0 lets the OS pick a free port.
const DefaultListenAddr = "127.0.0.1:0"

const callbackPage = `<html><body><p>%s</p><p>You can close this window.</p></body></html>`

// LocalServerFlow is the installed-app authorization flow: it prints the
// consent URL and receives the authorization code on a loopback redirect.
type LocalServerFlow struct {
	// ListenAddr defaults to DefaultListenAddr.
	ListenAddr string

	// Out receives the authorization URL (default os.Stderr).
	Out io.Writer

	// OpenURL, when set, is called with the authorization URL, e.g. to open a browser.
	OpenURL func(url string) error

	Logger logging.Logger
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the flow until the redirect arrives or ctx is done.
func (f *LocalServerFlow) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	if conf == nil {
		return nil, errors.New("oauth config is nil")
	}

	addr := f.ListenAddr
	if addr == "" {
		addr = DefaultListenAddr
	}
	out := f.Out
	if out == nil {
		out = os.Stderr
	}
	logger := f.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for oauth redirect: %w", err)
	}

	cfg := *conf
	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("oauth redirect listener stopped", logging.Err(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	_, _ = fmt.Fprintf(out, "Open the following URL in your browser to authorize coachcal:\n\n%s\n\n", authURL)
	if f.OpenURL != nil {
		if err := f.OpenURL(authURL); err != nil {
			logger.Warn("failed to open browser", logging.Err(err))
		}
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization aborted: %w", ctx.Err())
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	token, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// callbackHandler answers the redirect on "/" and delivers the first result.
// Other paths (favicon requests) get a 404 and do not end the flow.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("state") != state:
			res.err = errors.New("authorization state mismatch")
		case q.Get("code") == "":
			res.err = errors.New("authorization response has no code")
		default:
			res.code = q.Get("code")
		}

		status, msg := http.StatusOK, "Authorization complete."
		if res.err != nil {
			status, msg = http.StatusBadRequest, "Authorization failed."
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, callbackPage, msg)

		select {
		case results <- res:
		default:
		}
	})
}
