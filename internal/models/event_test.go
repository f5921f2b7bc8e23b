package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventDraftValidate(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		draft EventDraft
		want  error
	}{
		{"valid", EventDraft{Subject: "Sync", Start: start, End: start.Add(time.Minute)}, nil},
		{"blank subject", EventDraft{Subject: "  ", Start: start, End: start.Add(time.Hour)}, ErrMissingSubject},
		{"end equals start", EventDraft{Subject: "Sync", Start: start, End: start}, ErrInvalidRange},
		{"end before start", EventDraft{Subject: "Sync", Start: start, End: start.Add(-time.Hour)}, ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.draft.Validate(), tt.want)
		})
	}
}

func TestMailboxSettingsDateTimeFormat(t *testing.T) {
	assert.Equal(t, "M/d/yyyy h:mm tt", MailboxSettings{DateFormat: "M/d/yyyy", TimeFormat: "h:mm tt"}.DateTimeFormat())
	assert.Equal(t, " ", MailboxSettings{}.DateTimeFormat())
}
