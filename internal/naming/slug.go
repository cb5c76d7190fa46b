package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// maxSlugLen caps the title-derived portion of a filename.
	maxSlugLen = 48
	// slugSuffixLen is the length of the id-derived disambiguating suffix.
	slugSuffixLen = 8
)

// SlugResolver names documents <title-slug>-<id-suffix>.md. The suffix
// keeps two identically titled petitions apart; a title change changes the
// base name, which the reconciler carries out as a rename.
type SlugResolver struct {
	dir string
	idx Index
}

// NewSlugResolver creates a SlugResolver writing into dir.
func NewSlugResolver(dir string, idx Index) *SlugResolver {
	return &SlugResolver{dir: dir, idx: idx}
}

// Resolve returns the path that should hold the given response.
func (r *SlugResolver) Resolve(title, responseID, currentPath string) string {
	base := Slugify(title) + "-" + idSuffix(responseID)
	return resolve(r.idx, r.dir, base, responseID, currentPath)
}

// Slugify lowercases a title and collapses every run of non-alphanumeric
// characters to a single hyphen. An empty result falls back to "petition".
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		switch {
		case alnum:
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "petition"
	}
	return slug
}

// idSuffix derives a short stable hex suffix from the response id.
func idSuffix(responseID string) string {
	sum := sha256.Sum256([]byte(responseID))
	return hex.EncodeToString(sum[:])[:slugSuffixLen]
}
