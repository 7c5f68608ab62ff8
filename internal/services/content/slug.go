package content

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxSlugBase = 60

// Slugify keeps ASCII letters and digits and joins runs of them with dashes.
// Titles with no ASCII content fall back to "post".
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			if b.Len() >= maxSlugBase {
				break
			}
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "post"
	}
	return b.String()
}

func uniqueSlug(title string) string {
	return Slugify(title) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
