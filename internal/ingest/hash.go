package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashSeparator joins the identity fields; it is not expected inside them.
const hashSeparator = "|"

// DedupeHash returns the content identity of a posting: the hex SHA-256 of
// the lowercased, trimmed employer, title and city joined by "|".
func DedupeHash(employer, title, city string) string {
	raw := normalizeKey(employer) + hashSeparator + normalizeKey(title) + hashSeparator + normalizeKey(city)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
