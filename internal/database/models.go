package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlexTLDR/invitations/internal/rsvp"
)

type InvitationStatus string

const (
	StatusDraft     InvitationStatus = "draft"
	StatusPublished InvitationStatus = "published"
)

// ParseInvitationStatus maps an empty value to draft.
func ParseInvitationStatus(s string) (InvitationStatus, error) {
	switch st := InvitationStatus(s); st {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusPublished:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// ScheduleItem is one line of an event agenda.
type ScheduleItem struct {
	Time  string `json:"time" validate:"required"`
	Label string `json:"label" validate:"required"`
}

// Schedule is stored as a JSON text column.
type Schedule []ScheduleItem

func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Schedule) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported schedule type %T", src)
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(raw, s)
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

type Invitation struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	CompanyName         string           `json:"company_name"`
	RecipientSalutation *string          `json:"recipient_salutation"`
	RecipientName       string           `json:"recipient_name"`
	RecipientTitle      string           `json:"recipient_title"`
	Content             string           `json:"content"`
	EventTime           time.Time        `json:"event_time"`
	EventLocation       string           `json:"event_location"`
	GoogleMapURL        *string          `json:"google_map_url"`
	Schedule            Schedule         `json:"schedule"`
	Slug                *string          `json:"slug"`
	Status              InvitationStatus `json:"status"`
	RSVPStatus          rsvp.Status      `json:"rsvp_status"`
	AttendeeCount       int              `json:"attendee_count"`
	CreatedAt           time.Time        `json:"created_at"`
}

// InvitationSummary is an invitation with its aggregated response counts.
type InvitationSummary struct {
	Invitation
	Responses       int `json:"responses"`
	Attending       int `json:"attending"`
	AttendingPeople int `json:"attending_people"`
	Declined        int `json:"declined"`
}

type Response struct {
	ID            string      `json:"id"`
	InvitationID  string      `json:"invitation_id"`
	ResponderID   string      `json:"-"`
	Response      rsvp.Status `json:"response"`
	AttendeeCount int         `json:"attendee_count"`
	CreatedAt     time.Time   `json:"created_at"`
}

type Template struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	CompanyName   string     `json:"company_name"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	EventTime     *time.Time `json:"event_time"`
	EventLocation *string    `json:"event_location"`
	GoogleMapURL  *string    `json:"google_map_url"`
	Schedule      Schedule   `json:"schedule"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ReadyForImport reports whether the template carries the shared event
// fields every bulk-created invitation needs.
func (t *Template) ReadyForImport() bool {
	return t.EventTime != nil && t.EventLocation != nil && *t.EventLocation != ""
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
