package utils

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes       = regexp.MustCompile(`-+`)
)

// NormalizeSlug turns caller input into the canonical slug form:
// "Xin chào, Thế giới!" -> "xin-chao-the-gioi".
// An input with no usable characters normalizes to "".
func NormalizeSlug(input string) string {
	// transliterate to ASCII first so accented letters survive
	s := strings.ToLower(unidecode.Unidecode(strings.TrimSpace(input)))

	s = strings.Join(strings.Fields(s), "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
