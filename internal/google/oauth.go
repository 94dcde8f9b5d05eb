package google

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// Scopes are the OAuth scopes coachcal requests: inserting calendar events
// and reading messages / removing the UNREAD label.
var Scopes = []string{
	calendar.CalendarScope,
	gmail.GmailModifyScope,
}

// LoadOAuthConfig reads a Google client registration ("installed" or "web"
// JSON as downloaded from the Cloud console) and returns the OAuth config.
// Scopes defaults to Scopes when none are given.
func LoadOAuthConfig(credentialsFile string, scopes ...string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read client credentials %s: %w", credentialsFile, err)
	}

	if len(scopes) == 0 {
		scopes = Scopes
	}

	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client credentials %s: %w", credentialsFile, err)
	}
	return conf, nil
}

// HTTPClient returns an HTTP client authorized by ts.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
func HTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.ForceAttemptHTTP2 = false
		transport.Base = base
	}

	return client
}
