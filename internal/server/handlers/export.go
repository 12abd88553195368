package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/AlexTLDR/invitations/internal/database"
	"github.com/AlexTLDR/invitations/internal/i18n"
	"github.com/AlexTLDR/invitations/internal/spreadsheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportTimeLayout is how times appear in the export sheet
const exportTimeLayout = "2006-01-02 15:04"

// exportRow converts one invitation to the cells of the export sheet, in
// the order of i18n.ExportHeaders
func exportRow(inv *database.InvitationSummary, baseURL string) []any {
	var salutation, slug, link string
	if inv.RecipientSalutation != nil {
		salutation = *inv.RecipientSalutation
	}
	if inv.Slug != nil {
		slug = *inv.Slug
		link = fmt.Sprintf("%s/invite/%s", baseURL, slug)
	}

	return []any{
		inv.Title,
		inv.CompanyName,
		salutation,
		inv.RecipientName,
		inv.RecipientTitle,
		inv.EventTime.Format(exportTimeLayout),
		inv.EventLocation,
		string(inv.Status),
		slug,
		link,
		string(inv.RSVPStatus),
		inv.AttendeeCount,
		inv.Responses,
		inv.Attending,
		inv.Declined,
		inv.CreatedAt.Format(exportTimeLayout),
	}
}

// HandleExportInvitations downloads every invitation as an .xlsx workbook
func HandleExportInvitations(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := s.GetDB().ListInvitationSummaries(r.Context())
		if err != nil {
			writeErr(w, r, err, "")
			return
		}

		baseURL := s.GetConfig().BaseURL
		rows := make([][]any, 0, len(summaries))
		for _, inv := range summaries {
			rows = append(rows, exportRow(inv, baseURL))
		}

		lang := i18n.GetLanguageFromRequest(r, defaultLanguage(s))

		// Render to a buffer first so a failure can still produce a JSON error
		var buf bytes.Buffer
		if err := spreadsheet.WriteWorkbook(&buf, "Invitations", i18n.ExportHeaders(lang), rows); err != nil {
			writeErr(w, r, err, "")
			return
		}

		filename := fmt.Sprintf("invitations-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
