package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlexTLDR/invitations/internal/database"
)

type templateRequest struct {
	Name          string            `json:"name" validate:"required,max=128"`
	CompanyName   string            `json:"company_name" validate:"required,max=255"`
	Title         string            `json:"title" validate:"required,max=255"`
	Content       string            `json:"content" validate:"required"`
	EventTime     *string           `json:"event_time"`
	EventLocation *string           `json:"event_location" validate:"omitempty,max=255"`
	GoogleMapURL  *string           `json:"google_map_url" validate:"omitempty,url,max=512"`
	Schedule      database.Schedule `json:"schedule" validate:"omitempty,dive"`
}

func (req *templateRequest) normalize() {
	req.EventTime = blankToNil(req.EventTime)
	req.EventLocation = blankToNil(req.EventLocation)
	req.GoogleMapURL = blankToNil(req.GoogleMapURL)
}

// optionalString tells an absent field apart from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if string(data) == "null" {
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// cleared reports an explicit null or blank value
func (o optionalString) cleared() bool {
	return o.Set && o.Value == nil
}

// templatePatchRequest leaves absent fields unchanged. The optional event
// fields are cleared by null or a blank string.
type templatePatchRequest struct {
	Name          *string            `json:"name" validate:"omitempty,min=1,max=128"`
	CompanyName   *string            `json:"company_name" validate:"omitempty,min=1,max=255"`
	Title         *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Content       *string            `json:"content" validate:"omitempty,min=1"`
	EventTime     optionalString     `json:"event_time"`
	EventLocation optionalString     `json:"event_location" validate:"omitempty,max=255"`
	GoogleMapURL  optionalString     `json:"google_map_url" validate:"omitempty,url,max=512"`
	Schedule      *database.Schedule `json:"schedule" validate:"omitempty,dive"`
}

func (req *templatePatchRequest) normalize() {
	req.EventTime.Value = blankToNil(req.EventTime.Value)
	req.EventLocation.Value = blankToNil(req.EventLocation.Value)
	req.GoogleMapURL.Value = blankToNil(req.GoogleMapURL.Value)
}

func optionalEventTime(w http.ResponseWriter, raw *string) (*time.Time, bool) {
	if raw == nil {
		return nil, true
	}
	t, err := parseEventTime(*raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &t, true
}

// HandleListTemplates lists templates, most recently updated first
func HandleListTemplates(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := s.GetDB().ListTemplates(r.Context())
		if err != nil {
			writeErr(w, r, err, "")
			return
		}
		WriteJSON(w, http.StatusOK, templates)
	}
}

func HandleGetTemplate(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.GetDB().GetTemplate(r.Context(), mux.Vars(r)["template_id"])
		if err != nil {
			writeErr(w, r, err, "Template not found")
			return
		}
		WriteJSON(w, http.StatusOK, t)
	}
}

func HandleCreateTemplate(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req templateRequest
		if !decodeJSON(s, w, r, &req) {
			return
		}

		eventTime, ok := optionalEventTime(w, req.EventTime)
		if !ok {
			return
		}

		t, err := s.GetDB().CreateTemplate(r.Context(), database.TemplateInput{
			Name:          req.Name,
			CompanyName:   req.CompanyName,
			Title:         req.Title,
			Content:       req.Content,
			EventTime:     eventTime,
			EventLocation: req.EventLocation,
			GoogleMapURL:  req.GoogleMapURL,
			Schedule:      req.Schedule,
		})
		if err != nil {
			writeErr(w, r, err, "")
			return
		}
		WriteJSON(w, http.StatusCreated, t)
	}
}

func HandleUpdateTemplate(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req templatePatchRequest
		if !decodeJSON(s, w, r, &req) {
			return
		}

		eventTime, ok := optionalEventTime(w, req.EventTime.Value)
		if !ok {
			return
		}

		t, err := s.GetDB().UpdateTemplate(r.Context(), mux.Vars(r)["template_id"], database.TemplatePatch{
			Name:               req.Name,
			CompanyName:        req.CompanyName,
			Title:              req.Title,
			Content:            req.Content,
			EventTime:          eventTime,
			EventLocation:      req.EventLocation.Value,
			GoogleMapURL:       req.GoogleMapURL.Value,
			Schedule:           req.Schedule,
			ClearEventTime:     req.EventTime.cleared(),
			ClearEventLocation: req.EventLocation.cleared(),
			ClearGoogleMapURL:  req.GoogleMapURL.cleared(),
		})
		if err != nil {
			writeErr(w, r, err, "Template not found")
			return
		}
		WriteJSON(w, http.StatusOK, t)
	}
}

func HandleDeleteTemplate(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.GetDB().DeleteTemplate(r.Context(), mux.Vars(r)["template_id"]); err != nil {
			writeErr(w, r, err, "Template not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
