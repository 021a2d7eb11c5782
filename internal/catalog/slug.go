package catalog

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// MaxSlugBase is the longest base slug. The narrowest slug column holds 120
// characters, which leaves room for any "-N" suffix.
const MaxSlugBase = 100

// SlugBase derives the URL-safe base slug from a caller supplied slug, or
// from the name when none was given. fallback is used when both reduce to
// nothing (e.g. a name made only of punctuation).
func SlugBase(supplied, name, fallback string) string {
	if s := makeSlug(supplied); s != "" {
		return s
	}
	if s := makeSlug(name); s != "" {
		return s
	}
	return fallback
}

func makeSlug(s string) string {
	out := slug.Make(s)
	if len(out) > MaxSlugBase {
		out = strings.TrimRight(out[:MaxSlugBase], "-")
	}
	return out
}

// SlugCandidate returns the n-th disambiguation candidate: base, base-1, base-2, ...
func SlugCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
