package rsvp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSubmissionNormalize(t *testing.T) {
	tests := []struct {
		name     string
		sub      Submission
		expected int
		err      error
	}{
		{name: "pending rejected", sub: Submission{Response: Pending}, err: ErrInvalidResponse},
		{name: "pending with count rejected", sub: Submission{Response: Pending, AttendeeCount: intPtr(3)}, err: ErrInvalidResponse},
		{name: "empty rejected", sub: Submission{}, err: ErrInvalidResponse},
		{name: "declined clamps to zero", sub: Submission{Response: Declined, AttendeeCount: intPtr(7)}, expected: 0},
		{name: "declined without count", sub: Submission{Response: Declined}, expected: 0},
		{name: "attending default", sub: Submission{Response: Attending}, expected: 1},
		{name: "attending lower bound", sub: Submission{Response: Attending, AttendeeCount: intPtr(1)}, expected: 1},
		{name: "attending upper bound", sub: Submission{Response: Attending, AttendeeCount: intPtr(20)}, expected: 20},
		{name: "attending zero rejected", sub: Submission{Response: Attending, AttendeeCount: intPtr(0)}, err: ErrInvalidAttendeeCount},
		{name: "attending too many rejected", sub: Submission{Response: Attending, AttendeeCount: intPtr(21)}, err: ErrInvalidAttendeeCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sub.Normalize()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStatusUnmarshalJSON(t *testing.T) {
	var sub Submission
	require.NoError(t, json.Unmarshal([]byte(`{"response":"ATTENDING","attendee_count":4}`), &sub))
	assert.Equal(t, Attending, sub.Response)
	assert.Equal(t, 4, *sub.AttendeeCount)

	err := json.Unmarshal([]byte(`{"response":"attending"}`), &sub)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
