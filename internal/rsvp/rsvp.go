// Package rsvp holds the attendance statuses and the rules that turn a
// public submission into the canonical response stored for an invitation.
package rsvp

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Status string

const (
	Attending Status = "ATTENDING"
	Declined  Status = "DECLINED"
	Pending   Status = "PENDING"
)

const (
	MinAttendees = 1
	MaxAttendees = 20
)

var (
	ErrInvalidResponse      = errors.New("invalid response")
	ErrInvalidAttendeeCount = fmt.Errorf("attendee_count must be between %d and %d", MinAttendees, MaxAttendees)
)

// ParseStatus accepts any of the three statuses.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case Attending, Declined, Pending:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidResponse, s)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResponse, data)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Submission is what a recipient sends from the public invitation page.
type Submission struct {
	Response      Status `json:"response"`
	AttendeeCount *int   `json:"attendee_count"`
}

// Normalize validates the submission and returns the attendee count to store.
// PENDING is never a valid answer; a decline always stores zero attendees.
func (s Submission) Normalize() (int, error) {
	switch s.Response {
	case Declined:
		return 0, nil
	case Attending:
		if s.AttendeeCount == nil {
			return MinAttendees, nil
		}
		count := *s.AttendeeCount
		if count < MinAttendees || count > MaxAttendees {
			return 0, ErrInvalidAttendeeCount
		}
		return count, nil
	default:
		return 0, ErrInvalidResponse
	}
}
