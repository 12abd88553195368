package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain ascii",
			input:    "Year End Party",
			expected: "year-end-party",
		},
		{
			name:     "vietnamese diacritics",
			input:    "Lễ tổng kết cuối năm",
			expected: "le-tong-ket-cuoi-nam",
		},
		{
			name:     "d with stroke",
			input:    "Đặng Văn Đức",
			expected: "dang-van-duc",
		},
		{
			name:     "punctuation collapses",
			input:    "  Gala -- 2026!!  ",
			expected: "gala-2026",
		},
		{
			name:     "only symbols",
			input:    "***",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestInvitationSlugBase(t *testing.T) {
	assert.Equal(t, "year-end-nguyen-van-a", InvitationSlugBase("Year End", "Nguyen Van A"))
	assert.Equal(t, "invitation", InvitationSlugBase("!!", "??"))
}

func TestInvitationSlugBase_AvoidsRouteNames(t *testing.T) {
	assert.Equal(t, "invitation-export", InvitationSlugBase("!!!", "Export"))
	assert.Equal(t, "invitation-import", InvitationSlugBase("", "import"))
	assert.Equal(t, "export-an", InvitationSlugBase("Export", "An"))
}

func TestSlugAllocator_SuffixesPersistedSlugs(t *testing.T) {
	persisted := map[string]bool{"party-an": true, "party-an-2": true}
	alloc := NewSlugAllocator(func(slug string) (bool, error) {
		return persisted[slug], nil
	})

	slug, err := alloc.Allocate("party-an")
	require.NoError(t, err)
	assert.Equal(t, "party-an-3", slug)
}

func TestSlugAllocator_TracksBatchAllocations(t *testing.T) {
	alloc := NewSlugAllocator(func(string) (bool, error) { return false, nil })

	var got []string
	for i := 0; i < 3; i++ {
		slug, err := alloc.Allocate("gala-binh")
		require.NoError(t, err)
		got = append(got, slug)
	}

	assert.Equal(t, []string{"gala-binh", "gala-binh-2", "gala-binh-3"}, got)
}

func TestSlugAllocator_PropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")
	alloc := NewSlugAllocator(func(string) (bool, error) { return false, boom })

	_, err := alloc.Allocate("x")
	assert.ErrorIs(t, err, boom)
}
