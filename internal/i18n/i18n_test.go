package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLanguageFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		cookie   string
		accept   string
		expected Language
	}{
		{name: "query wins", target: "/?lang=en", cookie: "vi", accept: "vi", expected: English},
		{name: "unknown query falls through to cookie", target: "/?lang=fr", cookie: "en", expected: English},
		{name: "cookie", target: "/", cookie: "vi", accept: "en-US", expected: Vietnamese},
		{name: "accept language english", target: "/", accept: "en-GB,en;q=0.8", expected: English},
		{name: "accept language vietnamese", target: "/", accept: "vi-VN,vi;q=0.9", expected: Vietnamese},
		{name: "accept language unsupported", target: "/", accept: "ja", expected: Vietnamese},
		{name: "nothing set", target: "/", expected: Vietnamese},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "lang", Value: tt.cookie})
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}

			assert.Equal(t, tt.expected, GetLanguageFromRequest(r, Vietnamese))
		})
	}
}

func TestDefaultSalutation(t *testing.T) {
	assert.Equal(t, "Ông", DefaultSalutation(Vietnamese))
	assert.Equal(t, "Mr.", DefaultSalutation(English))
}

func TestExportHeadersSameWidth(t *testing.T) {
	assert.Len(t, ExportHeaders(English), len(ExportHeaders(Vietnamese)))
}
