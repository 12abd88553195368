package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/AlexTLDR/invitations/internal/database"
	"github.com/AlexTLDR/invitations/internal/i18n"
	"github.com/AlexTLDR/invitations/internal/spreadsheet"
)

// maxUploadSize bounds the multipart body of an import.
const maxUploadSize = 10 << 20

type importItem struct {
	Row  int     `json:"row"`
	ID   string  `json:"id"`
	Slug *string `json:"slug"`
}

type importRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// importResult reports a partial import: rows are created, skipped or rejected independently
type importResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Items   []importItem     `json:"items"`
	Errors  []importRowError `json:"errors"`
}

// HandleImportInvitations creates one invitation per spreadsheet row from a template
func HandleImportInvitations(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		templateID := strings.TrimSpace(r.FormValue("template_id"))
		if templateID == "" {
			WriteError(w, http.StatusBadRequest, "template_id is required")
			return
		}

		rawStatus := r.FormValue("status_value")
		if rawStatus == "" {
			rawStatus = r.FormValue("status")
		}
		status, err := database.ParseInvitationStatus(strings.TrimSpace(rawStatus))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		if err := spreadsheet.CheckUpload(header.Filename, data); err != nil {
			WriteError(w, http.StatusBadRequest, spreadsheetErrorMessage(err))
			return
		}

		tmpl, err := s.GetDB().GetTemplate(r.Context(), templateID)
		if err != nil {
			writeErr(w, r, err, "Template not found")
			return
		}
		if !tmpl.ReadyForImport() {
			writeErr(w, r, database.ErrTemplateNotReady, "")
			return
		}

		recipients, err := spreadsheet.ReadRecipients(data)
		if err != nil {
			WriteError(w, http.StatusBadRequest, spreadsheetErrorMessage(err))
			return
		}

		defaultSalutation := i18n.DefaultSalutation(i18n.GetLanguageFromRequest(r, defaultLanguage(s)))
		result := importResult{Items: []importItem{}, Errors: []importRowError{}}

		var inputs []database.InvitationInput
		var rows []int
		for _, rec := range recipients {
			if rec.Blank() {
				result.Skipped++
				continue
			}
			if missing := rec.Missing(); len(missing) > 0 {
				result.Errors = append(result.Errors, importRowError{
					Row:     rec.Number,
					Message: fmt.Sprintf("Missing %s", strings.Join(missing, ", ")),
				})
				continue
			}

			salutation := rec.Salutation
			if salutation == "" {
				salutation = defaultSalutation
			}
			inputs = append(inputs, invitationFromTemplate(tmpl, rec, salutation, status))
			rows = append(rows, rec.Number)
		}

		if len(inputs) > 0 {
			created, err := s.GetDB().CreateInvitations(r.Context(), inputs)
			if err != nil {
				writeErr(w, r, err, "")
				return
			}
			for i, inv := range created {
				result.Items = append(result.Items, importItem{Row: rows[i], ID: inv.ID, Slug: inv.Slug})
			}
			result.Created = len(created)
		}

		hlog.FromRequest(r).Info().
			Str("template_id", tmpl.ID).
			Int("created", result.Created).
			Int("skipped", result.Skipped).
			Int("errors", len(result.Errors)).
			Msg("invitations imported")

		WriteJSON(w, http.StatusOK, result)
	}
}

// invitationFromTemplate combines the template's shared event fields with one recipient row
func invitationFromTemplate(t *database.Template, rec spreadsheet.Recipient, salutation string, status database.InvitationStatus) database.InvitationInput {
	return database.InvitationInput{
		Title:               t.Title,
		CompanyName:         t.CompanyName,
		RecipientSalutation: &salutation,
		RecipientName:       rec.Name,
		RecipientTitle:      rec.Title,
		Content:             t.Content,
		EventTime:           *t.EventTime,
		EventLocation:       *t.EventLocation,
		GoogleMapURL:        t.GoogleMapURL,
		Schedule:            t.Schedule,
		Status:              status,
	}
}

func spreadsheetErrorMessage(err error) string {
	switch {
	case errors.Is(err, spreadsheet.ErrUnsupportedExtension),
		errors.Is(err, spreadsheet.ErrEmptyFile),
		errors.Is(err, spreadsheet.ErrEmptySheet),
		errors.Is(err, spreadsheet.ErrMissingColumns):
		return err.Error()
	default:
		return spreadsheet.ErrInvalidWorkbook.Error()
	}
}
