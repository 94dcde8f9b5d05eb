// Package gmail provides a client for the parts of the Gmail API coachcal uses.
//
// The client lists messages matching a search query, fetches a message with
// its calendar invite (inline or as a separate attachment) and removes the
// UNREAD label once an event has been created.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, metrics, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//
//	ids, err := client.ListMessageIDs(ctx, `label:"VA Coaching with Big Sis" is:unread`)
//	if err != nil {
//	    return err
//	}
//
//	for _, id := range ids {
//	    msg, err := client.GetMessage(ctx, id)
//	    ...
//	}
package gmail
