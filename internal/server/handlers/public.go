package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetInvitation serves a published invitation by slug. Drafts are 404.
func HandleGetInvitation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := s.GetDB().GetPublishedInvitationBySlug(r.Context(), mux.Vars(r)["slug"])
		if err != nil {
			writeErr(w, r, err, "Invitation not found")
			return
		}
		WriteJSON(w, http.StatusOK, inv)
	}
}
