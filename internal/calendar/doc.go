// Package calendar provides a client for inserting events into a Google Calendar.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, metrics, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//
//	event, err := client.CreateEvent(ctx, "primary", calendar.EventInput{
//	    Summary:  "Coaching: weekly check-in",
//	    Start:    start,
//	    End:      start.Add(time.Hour),
//	    TimeZone: "Asia/Manila",
//	})
package calendar
