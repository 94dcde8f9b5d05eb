package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/coachcal/internal/instrumentation"
	"github.com/teemow/coachcal/internal/logging"
)

const (
	// userID addresses the authenticated user's mailbox.
	userID = "me"

	// LabelUnread is the system label removed by MarkRead.
	LabelUnread = "UNREAD"

	// maxBatchModify is the Gmail limit of ids per batchModify call.
	maxBatchModify = 1000
)

// Client wraps the Gmail Users service.
type Client struct {
	svc     *gmail.UsersService
	metrics *instrumentation.Metrics
}

// NewClient creates a Gmail client. Authentication and endpoint come from
// opts, typically option.WithHTTPClient with an OAuth client.
func NewClient(ctx context.Context, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users, metrics: metrics}, nil
}

// ListMessageIDs returns the ids of all messages matching the query,
// following page tokens until the listing is exhausted.
func (c *Client) ListMessageIDs(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		req := c.svc.Messages.List(userID).Q(query).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		var res *gmail.ListMessagesResponse
		err := c.observe(ctx, "list", func(ctx context.Context) error {
			var err error
			res, err = req.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" {
			return ids, nil
		}
		pageToken = res.NextPageToken
	}
}

// GetMessage retrieves a full message and extracts the fields the scanner
// needs, fetching the calendar attachment body when it is not inline.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	var raw *gmail.Message
	err := c.observe(ctx, "get", func(ctx context.Context) error {
		var err error
		raw, err = c.svc.Messages.Get(userID, messageID).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	msg := newMessage(raw)

	part := findCalendarPart(raw.Payload)
	if part == nil || part.Body == nil {
		return msg, nil
	}

	switch {
	case part.Body.Data != "":
		// An unreadable invite leaves the message to the subject heuristics.
		data, err := decodeBase64URL(part.Body.Data)
		if err != nil {
			slog.Warn("ignoring undecodable calendar part", logging.MessageID(messageID), logging.Err(err))
			return msg, nil
		}
		msg.Calendar = data
	case part.Body.AttachmentId != "":
		data, err := c.GetAttachment(ctx, messageID, part.Body.AttachmentId)
		if err != nil {
			return nil, err
		}
		msg.Calendar = data
	}

	return msg, nil
}

// GetAttachment retrieves and decodes the content of an attachment.
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	var body *gmail.MessagePartBody
	err := c.observe(ctx, "attachment", func(ctx context.Context) error {
		var err error
		body, err = c.svc.Messages.Attachments.Get(userID, messageID, attachmentID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}

	if body.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", body.Size, MaxAttachmentSize)
	}

	data, err := decodeBase64URL(body.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment data: %w", err)
	}
	return data, nil
}

// MarkRead removes the UNREAD label from the given messages.
func (c *Client) MarkRead(ctx context.Context, messageIDs ...string) error {
	for start := 0; start < len(messageIDs); start += maxBatchModify {
		end := min(start+maxBatchModify, len(messageIDs))
		req := &gmail.BatchModifyMessagesRequest{
			Ids:            messageIDs[start:end],
			RemoveLabelIds: []string{LabelUnread},
		}

		err := c.observe(ctx, "batch_modify", func(ctx context.Context) error {
			return c.svc.Messages.BatchModify(userID, req).Context(ctx).Do()
		})
		if err != nil {
			return fmt.Errorf("failed to mark messages as read: %w", err)
		}
	}
	return nil
}

// observe wraps one API call in a span and records its metrics.
func (c *Client) observe(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, operation, status, time.Since(start))

	return err
}
