package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

type Language string

const (
	Vietnamese Language = "vi"
	English    Language = "en"
)

var matcher = language.NewMatcher([]language.Tag{language.Vietnamese, language.English})

// Parse returns the supported language for code, or fallback when unknown.
func Parse(code string, fallback Language) Language {
	switch Language(code) {
	case Vietnamese, English:
		return Language(code)
	}
	return fallback
}

// GetLanguageFromRequest extracts language from request (query param, cookie, then Accept-Language)
func GetLanguageFromRequest(r *http.Request, fallback Language) Language {
	// Check query parameter first
	if lang := r.URL.Query().Get("lang"); lang != "" {
		if l := Parse(lang, ""); l != "" {
			return l
		}
	}

	// Check cookie
	if cookie, err := r.Cookie("lang"); err == nil {
		if l := Parse(cookie.Value, ""); l != "" {
			return l
		}
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			_, idx, confidence := matcher.Match(tags...)
			if confidence != language.No {
				if idx == 0 {
					return Vietnamese
				}
				return English
			}
		}
	}

	return fallback
}

// DefaultSalutation is used when an invitation is created without one.
func DefaultSalutation(lang Language) string {
	if lang == English {
		return "Mr."
	}
	return "Ông"
}

// ExportHeaders returns the column labels of the invitation export sheet.
func ExportHeaders(lang Language) []string {
	if lang == English {
		return []string{
			"Title", "Company", "Salutation", "Recipient", "Recipient title",
			"Event time", "Location", "Status", "Slug", "Link",
			"RSVP", "Attendees", "Responses", "Attending", "Declined", "Created at",
		}
	}
	return []string{
		"Tiêu đề", "Công ty", "Danh xưng", "Người nhận", "Chức vụ",
		"Thời gian", "Địa điểm", "Trạng thái", "Slug", "Liên kết",
		"Phản hồi", "Số người tham dự", "Số phản hồi", "Tham dự", "Từ chối", "Ngày tạo",
	}
}
