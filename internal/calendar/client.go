package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/coachcal/internal/instrumentation"
)

const dateLayout = "2006-01-02"

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	metrics *instrumentation.Metrics
}

// NewClient creates a Calendar client. Authentication and endpoint come from
// opts, typically option.WithHTTPClient with an OAuth client.
func NewClient(ctx context.Context, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, metrics: metrics}, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if input.Start.IsZero() {
		return nil, errors.New("event start is required")
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
	}

	// For all-day events, use Date instead of DateTime
	if input.AllDay {
		end := input.End
		if !end.After(input.Start) {
			end = input.Start.AddDate(0, 0, 1)
		}
		event.Start = &calendar.EventDateTime{Date: input.Start.Format(dateLayout)}
		event.End = &calendar.EventDateTime{Date: end.Format(dateLayout)}
	} else {
		tz := input.TimeZone
		if tz == "" {
			tz = input.Start.Location().String()
		}
		event.Start = &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: tz,
		}
		event.End = &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: tz,
		}
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, "insert")
	defer span.End()

	start := time.Now()
	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, "insert", instrumentation.StatusError, time.Since(start))
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	instrumentation.SetSpanSuccess(span)
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, "insert", instrumentation.StatusSuccess, time.Since(start))

	summary := toEventSummary(created)
	return &summary, nil
}
