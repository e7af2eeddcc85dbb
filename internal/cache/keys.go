package cache

import "strings"

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "quizgen"

// Key joins the non-empty parts under KeyPrefix with ':'.
func Key(parts ...string) string {
	out := make([]string, 0, len(parts)+1)
	out = append(out, KeyPrefix)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}

// ExtractionKey addresses the extracted text of one upload, identified by
// the content hash and the kind it was routed to.
func ExtractionKey(kind, contentHash string) string {
	return Key("extract", kind, contentHash)
}
