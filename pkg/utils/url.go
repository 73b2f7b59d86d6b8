package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// HashKey creates a SHA256 hash of a string.
// Session identifiers are hashed before they become Redis keys.
func HashKey(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// ResolveImage returns ref unchanged when it is absolute or base is nil,
// otherwise resolves it against base. Unparseable refs are returned as-is.
func ResolveImage(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	abs, err := ToAbsoluteURL(base, ref)
	if err != nil {
		return ref
	}
	return abs
}

// JoinPath appends path segments to a base URL, escaping each segment.
func JoinPath(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(strings.Trim(s, "/")))
	}
	return "/" + strings.Join(escaped, "/")
}
