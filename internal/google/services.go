package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/coachcal/internal/calendar"
	"github.com/teemow/coachcal/internal/gmail"
	"github.com/teemow/coachcal/internal/instrumentation"
)

// Services holds the two remote service handles a scan needs.
type Services struct {
	Gmail    *gmail.Client
	Calendar *calendar.Client
}

// NewServices builds the Gmail and Calendar clients on one authorized HTTP client.
func NewServices(ctx context.Context, ts oauth2.TokenSource, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Services, error) {
	httpClient := HTTPClient(ctx, ts)
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	gmailClient, err := gmail.NewClient(ctx, metrics, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client: %w", err)
	}

	calendarClient, err := calendar.NewClient(ctx, metrics, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar client: %w", err)
	}

	return &Services{Gmail: gmailClient, Calendar: calendarClient}, nil
}
