package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func TestDecodeBase64URL(t *testing.T) {
	// "??>" encodes to "Pz8+" in standard and "Pz8-" in URL alphabet.
	raw := "??>"

	tests := []struct {
		name  string
		input string
	}{
		{"url padded", base64.URLEncoding.EncodeToString([]byte(raw + "a"))},
		{"url raw", base64.RawURLEncoding.EncodeToString([]byte(raw + "a"))},
		{"std padded", base64.StdEncoding.EncodeToString([]byte(raw + "a"))},
		{"std raw", base64.RawStdEncoding.EncodeToString([]byte(raw + "a"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBase64URL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, raw+"a", string(got))
		})
	}

	_, err := decodeBase64URL("!!not base64!!")
	assert.Error(t, err)
}

func TestIsCalendarPart(t *testing.T) {
	tests := []struct {
		name string
		part *gmail.MessagePart
		want bool
	}{
		{"text/calendar", &gmail.MessagePart{MimeType: "text/calendar"}, true},
		{"with params", &gmail.MessagePart{MimeType: "text/calendar; method=REQUEST"}, true},
		{"upper case", &gmail.MessagePart{MimeType: "TEXT/CALENDAR"}, true},
		{"application/ics", &gmail.MessagePart{MimeType: "application/ics"}, true},
		{"ics filename", &gmail.MessagePart{MimeType: "application/octet-stream", Filename: "invite.ics"}, true},
		{"plain text", &gmail.MessagePart{MimeType: "text/plain"}, false},
		{"pdf", &gmail.MessagePart{MimeType: "application/pdf", Filename: "agenda.pdf"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCalendarPart(tt.part))
		})
	}
}

func TestFindCalendarPart_DepthFirst(t *testing.T) {
	nested := &gmail.MessagePart{PartId: "0.1", MimeType: "text/calendar"}
	root := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{PartId: "0", MimeType: "multipart/alternative", Parts: []*gmail.MessagePart{
				{PartId: "0.0", MimeType: "text/plain"},
				nested,
			}},
			{PartId: "1", MimeType: "application/ics", Filename: "invite.ics"},
		},
	}

	assert.Same(t, nested, findCalendarPart(root))
	assert.Nil(t, findCalendarPart(nil))
}

func TestHeader_CaseInsensitive(t *testing.T) {
	headers := []*gmail.MessagePartHeader{
		{Name: "SUBJECT", Value: "first"},
		{Name: "Subject", Value: "second"},
	}
	assert.Equal(t, "first", header(headers, "Subject"))
	assert.Equal(t, "", header(headers, "From"))
}
