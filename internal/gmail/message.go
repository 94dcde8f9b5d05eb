package gmail

import (
	"encoding/base64"
	"html"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// MaxAttachmentSize defines the maximum attachment size in bytes (25MB)
const MaxAttachmentSize = 25 * 1024 * 1024

// Message is the part of a Gmail message the scanner works with.
type Message struct {
	ID       string
	ThreadID string
	Subject  string

	// Snippet has HTML entities unescaped.
	Snippet  string
	LabelIDs []string

	// Calendar holds the raw bytes of the first calendar part, nil if none.
	Calendar []byte
}

// HasCalendar reports whether the message carries a calendar invite.
func (m *Message) HasCalendar() bool {
	return len(m.Calendar) > 0
}

func newMessage(raw *gmail.Message) *Message {
	msg := &Message{
		ID:       raw.Id,
		ThreadID: raw.ThreadId,
		Snippet:  html.UnescapeString(raw.Snippet),
		LabelIDs: raw.LabelIds,
	}
	if raw.Payload != nil {
		msg.Subject = decodeHeader(header(raw.Payload.Headers, "Subject"))
	}
	return msg
}

// header returns the value of the first header named name, ignoring case.
func header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// decodeHeader decodes RFC 2047 encoded words; undecodable values are kept as-is.
func decodeHeader(v string) string {
	dec := new(mime.WordDecoder)
	if decoded, err := dec.DecodeHeader(v); err == nil {
		return decoded
	}
	return v
}

// findCalendarPart returns the first part, in depth-first order, that holds
// an iCalendar object.
func findCalendarPart(root *gmail.MessagePart) *gmail.MessagePart {
	var found *gmail.MessagePart
	walkParts(root, func(part *gmail.MessagePart) {
		if found == nil && isCalendarPart(part) {
			found = part
		}
	})
	return found
}

func isCalendarPart(part *gmail.MessagePart) bool {
	mimeType := strings.ToLower(part.MimeType)
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}
	switch mimeType {
	case "text/calendar", "application/ics":
		return true
	}
	return strings.HasSuffix(strings.ToLower(part.Filename), ".ics")
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// decodeBase64URL decodes Gmail body data. The API uses base64url, with or
// without padding; standard base64 is accepted as a fallback.
func decodeBase64URL(s string) ([]byte, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
