package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateText(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		snippet string
		want    string
	}{
		{
			name:    "after at, before parenthesis",
			subject: "VA Coaching with Big Sis @ Sun Feb 15, 2026 10pm (Zoom)",
			want:    "Sun Feb 15, 2026 10pm",
		},
		{
			name:    "cut at dash",
			subject: "Session @ Mon Mar 2, 2026 9am - Manila time",
			want:    "Mon Mar 2, 2026 9am",
		},
		{
			name:    "only up to the second at",
			subject: "Session @ Mar 2, 2026 9am @ Zoom",
			want:    "Mar 2, 2026 9am",
		},
		{
			name:    "no at uses subject and snippet",
			subject: "Coaching reminder",
			snippet: "See you Feb 20, 2026 9am",
			want:    "Coaching reminder See you Feb 20, 2026 9am",
		},
		{
			name:    "nothing after at",
			subject: "Session @ (Zoom)",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateText(tt.subject, tt.snippet))
		})
	}
}

func TestParseDate(t *testing.T) {
	e := newTestExtractor(t)
	loc := manila(t)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"weekday and hour", "Sun Feb 15, 2026 10pm", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"upper case marker", "Sun Feb 15, 2026 10PM", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"minutes", "Feb 15, 2026 10:30pm", time.Date(2026, 2, 15, 22, 30, 0, 0, loc)},
		{"iso", "2026-02-15 22:00", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"extra whitespace", "  Sun  Feb 15,   2026 10pm ", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"inside a sentence", "Coaching reminder Our next session is on Feb 20, 2026 9am. See you!", time.Date(2026, 2, 20, 9, 0, 0, 0, loc)},
		{"in parentheses", "Reminder (Fri Feb 20, 2026 4pm)", time.Date(2026, 2, 20, 16, 0, 0, 0, loc)},
		{"year-less in the future", "Fri Feb 20 4pm", time.Date(2026, 2, 20, 16, 0, 0, 0, loc)},
		{"year-less already past rolls over", "Sat Jan 3 10am", time.Date(2027, 1, 3, 10, 0, 0, 0, loc)},
		{"space before marker", "Feb 15, 2026 10 PM", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"space before lower-case marker", "Sun Feb 15 10 pm", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"full month name", "February 15, 2026 10pm", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"full month name with minutes", "February 15, 2026 9:30am", time.Date(2026, 2, 15, 9, 30, 0, 0, loc)},
		{"month and day without weekday", "Feb 15 10pm", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"month and day with minutes", "Jan 20 9:30am", time.Date(2026, 1, 20, 9, 30, 0, 0, loc)},
		{"full month name without year", "March 3 7pm", time.Date(2026, 3, 3, 19, 0, 0, 0, loc)},
		{"month and day already past rolls over", "Jan 3 10am", time.Date(2027, 1, 3, 10, 0, 0, 0, loc)},
		{"dateparse fallback", "2026/02/15 22:00:00", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
		{"zoned time is converted", "2026-02-15T14:00:00Z", time.Date(2026, 2, 15, 22, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ParseDate(tt.text)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			assert.Same(t, loc, got.Location())
		})
	}
}

func TestParseDate_NoDate(t *testing.T) {
	e := newTestExtractor(t)

	for _, text := range []string{"", "   ", "Weekly newsletter Nothing scheduled", "Zoom"} {
		_, err := e.ParseDate(text)
		assert.ErrorIs(t, err, ErrNoDate, "text %q", text)
	}
}

func TestParseDate_CustomLayouts(t *testing.T) {
	loc := manila(t)
	e := New(Options{Location: loc, Layouts: []string{"02.01.2006 15:04"}})

	got, err := e.ParseDate("Termin am 15.02.2026 22:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 2, 15, 22, 0, 0, 0, loc).Equal(got))
}
