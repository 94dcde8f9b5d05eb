package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type insertRecorder struct {
	path   string
	event  calendar.Event
	status int
}

func newTestClient(t *testing.T, rec *insertRecorder) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		if rec.status != 0 {
			http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, rec.status)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "POST expected", http.StatusMethodNotAllowed)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&rec.event); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created := rec.event
		created.Id = "evt123"
		created.Status = "confirmed"
		created.HtmlLink = "https://calendar.example.com/evt123"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&created)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), nil,
		option.WithEndpoint(srv.URL+"/calendar/v3/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func manila(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	return loc
}

func TestCreateEvent_Timed(t *testing.T) {
	rec := &insertRecorder{}
	client := newTestClient(t, rec)
	loc := manila(t)

	start := time.Date(2026, 2, 15, 22, 0, 0, 0, loc)
	got, err := client.CreateEvent(context.Background(), "primary", EventInput{
		Summary:  "Coaching: VA Coaching with Big Sis",
		Start:    start,
		End:      start.Add(time.Hour),
		TimeZone: "Asia/Manila",
	})
	require.NoError(t, err)

	assert.Equal(t, "/calendar/v3/calendars/primary/events", rec.path)
	assert.Equal(t, "Coaching: VA Coaching with Big Sis", rec.event.Summary)
	require.NotNil(t, rec.event.Start)
	assert.Equal(t, "2026-02-15T22:00:00+08:00", rec.event.Start.DateTime)
	assert.Equal(t, "Asia/Manila", rec.event.Start.TimeZone)
	assert.Equal(t, "2026-02-15T23:00:00+08:00", rec.event.End.DateTime)
	assert.Empty(t, rec.event.Start.Date)

	assert.Equal(t, "evt123", got.ID)
	assert.Equal(t, "confirmed", got.Status)
	assert.False(t, got.AllDay)
	assert.True(t, start.Equal(got.Start))
	assert.True(t, start.Add(time.Hour).Equal(got.End))
}

func TestCreateEvent_TimeZoneFromStart(t *testing.T) {
	rec := &insertRecorder{}
	client := newTestClient(t, rec)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, manila(t))

	_, err := client.CreateEvent(context.Background(), "primary", EventInput{Start: start, End: start.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Manila", rec.event.Start.TimeZone)
}

func TestCreateEvent_AllDay(t *testing.T) {
	rec := &insertRecorder{}
	client := newTestClient(t, rec)
	loc := manila(t)

	start := time.Date(2026, 2, 15, 0, 0, 0, 0, loc)
	got, err := client.CreateEvent(context.Background(), "coaching@group.calendar.google.com", EventInput{
		Summary: "Coaching day",
		Start:   start,
		End:     start,
		AllDay:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/calendar/v3/calendars/coaching@group.calendar.google.com/events", rec.path)
	assert.Equal(t, "2026-02-15", rec.event.Start.Date)
	assert.Equal(t, "2026-02-16", rec.event.End.Date, "end date is exclusive")
	assert.Empty(t, rec.event.Start.DateTime)
	assert.True(t, got.AllDay)
}

func TestCreateEvent_Errors(t *testing.T) {
	client := newTestClient(t, &insertRecorder{status: http.StatusForbidden})

	_, err := client.CreateEvent(context.Background(), "primary", EventInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start is required")

	start := time.Now()
	_, err = client.CreateEvent(context.Background(), "primary", EventInput{Start: start, End: start.Add(time.Hour)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create event")
}

func TestToEventSummary(t *testing.T) {
	summary := toEventSummary(nil)
	assert.Empty(t, summary.ID)

	summary = toEventSummary(&calendar.Event{
		Id:      "e1",
		Summary: "s",
		Start:   &calendar.EventDateTime{Date: "2026-02-15"},
		End:     &calendar.EventDateTime{Date: "2026-02-16"},
	})
	assert.Equal(t, "e1", summary.ID)
	assert.True(t, summary.AllDay)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), summary.Start)
	assert.Equal(t, time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), summary.End)
}
