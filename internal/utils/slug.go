package utils

import (
	"fmt"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// fallbackSlug is used when the source text has no transliterable characters.
const fallbackSlug = "invitation"

// Slugify transliterates s to ASCII, lowercases it and joins alphanumeric runs with hyphens
func Slugify(s string) string {
	ascii := strings.ToLower(unidecode.Unidecode(s))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// reservedSlugs collide with fixed /api/invitations/ routes.
var reservedSlugs = map[string]struct{}{
	"export": {},
	"import": {},
}

// InvitationSlugBase derives the slug base for an invitation from its title and recipient name
func InvitationSlugBase(title, recipientName string) string {
	base := Slugify(title + "-" + recipientName)
	if base == "" {
		return fallbackSlug
	}
	if _, reserved := reservedSlugs[base]; reserved {
		return fallbackSlug + "-" + base
	}
	return base
}

// SlugExistsFunc reports whether a slug is already persisted.
type SlugExistsFunc func(slug string) (bool, error)

// SlugAllocator hands out unique slugs, remembering everything it allocated so
// that several invitations created in one batch never collide with each other.
type SlugAllocator struct {
	exists SlugExistsFunc
	used   map[string]struct{}
}

func NewSlugAllocator(exists SlugExistsFunc) *SlugAllocator {
	return &SlugAllocator{
		exists: exists,
		used:   make(map[string]struct{}),
	}
}

// Allocate tries base, base-2, base-3, ... and returns the first candidate
// that is neither persisted nor allocated earlier by this allocator
func (a *SlugAllocator) Allocate(base string) (string, error) {
	candidate := base
	for suffix := 2; ; suffix++ {
		if _, taken := a.used[candidate]; !taken {
			exists, err := a.exists(candidate)
			if err != nil {
				return "", fmt.Errorf("failed to check slug uniqueness: %w", err)
			}
			if !exists {
				a.used[candidate] = struct{}{}
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}
