package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"github.com/AlexTLDR/invitations/internal/rsvp"
)

// CookieMaxAge is the lifetime of the RSVP cookies.
const CookieMaxAge = 365 * 24 * time.Hour

const (
	choiceCookiePrefix    = "invite_choice_"
	responderCookiePrefix = "invite_responder_"
	responderIDKey        = "responder_id"
)

// HandleSubmitResponse records the recipient's RSVP. The stored response is
// overwritten by every later submission for the same invitation.
func HandleSubmitResponse(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub rsvp.Submission
		if !decodeJSON(s, w, r, &sub) {
			return
		}

		// Validate before the lookup so PENDING is rejected for any slug
		attendeeCount, err := sub.Normalize()
		if err != nil {
			writeErr(w, r, err, "")
			return
		}

		slug := mux.Vars(r)["slug"]
		inv, err := s.GetDB().GetPublishedInvitationBySlug(r.Context(), slug)
		if err != nil {
			writeErr(w, r, err, "Invitation not found")
			return
		}

		// The responder id only identifies the browser for auditing
		session, err := s.Sessions().Get(r, responderCookiePrefix+inv.ID)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("discarding unreadable responder cookie")
		}
		responderID, _ := session.Values[responderIDKey].(string)
		if responderID == "" {
			responderID = uuid.NewString()
			session.Values[responderIDKey] = responderID
		}

		resp, err := s.GetDB().SubmitResponse(r.Context(), slug, responderID, sub.Response, attendeeCount)
		if err != nil {
			writeErr(w, r, err, "Invitation not found")
			return
		}

		if err := session.Save(r, w); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("failed to save responder cookie")
		}
		http.SetCookie(w, &http.Cookie{
			Name:     choiceCookiePrefix + inv.ID,
			Value:    string(resp.Response),
			Path:     "/",
			MaxAge:   int(CookieMaxAge / time.Second),
			Expires:  time.Now().Add(CookieMaxAge),
			Secure:   s.GetConfig().CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		hlog.FromRequest(r).Info().
			Str("invitation_id", inv.ID).
			Str("response", string(resp.Response)).
			Int("attendee_count", resp.AttendeeCount).
			Msg("rsvp recorded")

		WriteJSON(w, http.StatusOK, resp)
	}
}
