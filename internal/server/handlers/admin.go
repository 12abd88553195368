package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AlexTLDR/invitations/internal/database"
	"github.com/AlexTLDR/invitations/internal/i18n"
)

// invitationRequest is the body of invitation create and update requests
type invitationRequest struct {
	Title               string            `json:"title" validate:"required,max=255"`
	CompanyName         string            `json:"company_name" validate:"required,max=255"`
	RecipientSalutation *string           `json:"recipient_salutation" validate:"omitempty,max=32"`
	RecipientName       string            `json:"recipient_name" validate:"required,max=255"`
	RecipientTitle      string            `json:"recipient_title" validate:"required,max=255"`
	Content             string            `json:"content" validate:"required"`
	EventTime           string            `json:"event_time" validate:"required"`
	EventLocation       string            `json:"event_location" validate:"required,max=255"`
	GoogleMapURL        *string           `json:"google_map_url" validate:"omitempty,url,max=512"`
	Schedule            database.Schedule `json:"schedule" validate:"omitempty,dive"`
	Status              string            `json:"status" validate:"omitempty,oneof=draft published"`
}

func (req *invitationRequest) normalize() {
	req.RecipientSalutation = blankToNil(req.RecipientSalutation)
	req.GoogleMapURL = blankToNil(req.GoogleMapURL)
}

// toInput converts the request, writing a 400 and returning false when a
// field cannot be parsed. An absent status stays empty so that updates keep
// the stored one. A missing salutation gets the request language's default.
func (req *invitationRequest) toInput(s Server, w http.ResponseWriter, r *http.Request) (database.InvitationInput, bool) {
	eventTime, err := parseEventTime(req.EventTime)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return database.InvitationInput{}, false
	}

	var status database.InvitationStatus
	if req.Status != "" {
		status, err = database.ParseInvitationStatus(req.Status)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid status")
			return database.InvitationInput{}, false
		}
	}

	salutation := req.RecipientSalutation
	if salutation == nil {
		def := i18n.DefaultSalutation(i18n.GetLanguageFromRequest(r, defaultLanguage(s)))
		salutation = &def
	}

	return database.InvitationInput{
		Title:               req.Title,
		CompanyName:         req.CompanyName,
		RecipientSalutation: salutation,
		RecipientName:       req.RecipientName,
		RecipientTitle:      req.RecipientTitle,
		Content:             req.Content,
		EventTime:           eventTime,
		EventLocation:       req.EventLocation,
		GoogleMapURL:        req.GoogleMapURL,
		Schedule:            req.Schedule,
		Status:              status,
	}, true
}

// HandleListInvitations lists all invitations with their response counts
func HandleListInvitations(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := s.GetDB().ListInvitationSummaries(r.Context())
		if err != nil {
			writeErr(w, r, err, "")
			return
		}
		WriteJSON(w, http.StatusOK, summaries)
	}
}

// HandleCreateInvitation creates an invitation, assigning a slug when it is published
func HandleCreateInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req invitationRequest
		if !decodeJSON(s, w, r, &req) {
			return
		}

		in, ok := req.toInput(s, w, r)
		if !ok {
			return
		}

		inv, err := s.GetDB().CreateInvitation(r.Context(), in)
		if err != nil {
			writeErr(w, r, err, "")
			return
		}
		WriteJSON(w, http.StatusCreated, inv)
	}
}

// HandleUpdateInvitation replaces an invitation's fields. Without a status
// the invitation keeps its current one.
func HandleUpdateInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req invitationRequest
		if !decodeJSON(s, w, r, &req) {
			return
		}

		in, ok := req.toInput(s, w, r)
		if !ok {
			return
		}

		inv, err := s.GetDB().UpdateInvitation(r.Context(), mux.Vars(r)["invitation_id"], in)
		if err != nil {
			writeErr(w, r, err, "Invitation not found")
			return
		}
		WriteJSON(w, http.StatusOK, inv)
	}
}

// HandleDeleteInvitation deletes an invitation and its responses
func HandleDeleteInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.GetDB().DeleteInvitation(r.Context(), mux.Vars(r)["invitation_id"]); err != nil {
			writeErr(w, r, err, "Invitation not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func defaultLanguage(s Server) i18n.Language {
	return i18n.Parse(s.GetConfig().DefaultLanguage, i18n.Vietnamese)
}
