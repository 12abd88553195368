package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/hlog"

	"github.com/AlexTLDR/invitations/internal/config"
	"github.com/AlexTLDR/invitations/internal/database"
	"github.com/AlexTLDR/invitations/internal/rsvp"
)

// maxJSONBody bounds request bodies of the JSON endpoints.
const maxJSONBody = 1 << 20

// Server interface defines the methods needed by handlers
type Server interface {
	GetDB() *database.DB
	GetConfig() *config.Config
	Sessions() sessions.Store
	Validator() *validator.Validate
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a {"detail": ...} error body
func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, errorResponse{Detail: detail})
}

func HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "Not Found")
}

func HandleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// writeErr maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 without leaking the cause.
func writeErr(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		WriteError(w, http.StatusNotFound, notFound)
	case errors.Is(err, database.ErrTemplateNameTaken):
		WriteError(w, http.StatusBadRequest, "Template name already exists")
	case errors.Is(err, database.ErrInvalidStatus):
		WriteError(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, database.ErrTemplateNotReady):
		WriteError(w, http.StatusBadRequest, "Template must have event_time and event_location")
	case errors.Is(err, database.ErrSlugTaken):
		WriteError(w, http.StatusConflict, "Slug already in use, please retry")
	case errors.Is(err, rsvp.ErrInvalidResponse):
		WriteError(w, http.StatusBadRequest, "Invalid response")
	case errors.Is(err, rsvp.ErrInvalidAttendeeCount):
		WriteError(w, http.StatusBadRequest, rsvp.ErrInvalidAttendeeCount.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into v and validates it. On failure it writes
// the 400 response and returns false.
func decodeJSON(s Server, w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			WriteError(w, http.StatusBadRequest, "Request body is empty")
		case errors.Is(err, rsvp.ErrInvalidResponse):
			WriteError(w, http.StatusBadRequest, "Invalid response")
		default:
			WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		}
		return false
	}

	if n, ok := v.(interface{ normalize() }); ok {
		n.normalize()
	}

	if err := s.Validator().Struct(v); err != nil {
		WriteError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns validator errors into one readable line
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

// NewValidator returns a validator that reports fields by their JSON names
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if o, ok := field.Interface().(optionalString); ok && o.Value != nil {
			return *o.Value
		}
		return nil
	}, optionalString{})
	return v
}

// eventTimeLayouts are accepted for event times; values without a zone are UTC.
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("event_time must be an ISO 8601 datetime")
}

// blankToNil trims s and drops it when nothing is left
func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
