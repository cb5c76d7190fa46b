package naming

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// tokenBytes is how much of the HMAC digest goes into the filename. 15
// bytes encode to 20 URL-safe characters with no padding.
const tokenBytes = 15

// TokenResolver names documents petition-<token>.md where the token is a
// keyed one-way function of the response id. Because the id is immutable,
// a response's name never changes once assigned.
type TokenResolver struct {
	dir string
	key []byte
	idx Index
}

// NewTokenResolver creates a TokenResolver writing into dir, keyed with
// the configured encryption key.
func NewTokenResolver(dir, key string, idx Index) *TokenResolver {
	return &TokenResolver{dir: dir, key: []byte(key), idx: idx}
}

// Resolve returns the path that should hold the given response.
func (r *TokenResolver) Resolve(_, responseID, currentPath string) string {
	base := "petition-" + Token(responseID, r.key)
	return resolve(r.idx, r.dir, base, responseID, currentPath)
}

// Token derives the opaque filename token for a response id:
// urlsafe-base64 of the first 15 bytes of HMAC-SHA256(key, id), unpadded.
func Token(responseID string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(responseID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:tokenBytes])
}
