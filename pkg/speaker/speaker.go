// Package speaker defines the speaker record model and the comparison
// policies used by enrollment and verification: cosine similarity over
// embeddings and the loose display-name collision rule.
package speaker

import (
	"math"
	"strings"
	"time"
)

// Record is one enrolled speaker. Records are owned by the store;
// callers receive copies.
type Record struct {
	// ID uniquely identifies the speaker.
	ID string `msgpack:"id"`

	// DisplayName is the human-readable name given at enrollment.
	DisplayName string `msgpack:"name"`

	// Embedding is the fixed-length voice embedding produced by the
	// model. Opaque: compared only via cosine similarity.
	Embedding []float32 `msgpack:"emb"`

	// EnrolledAt is when the speaker was enrolled. Eviction removes the
	// record with the minimum EnrolledAt, regardless of recent use.
	EnrolledAt time.Time `msgpack:"enrolled_at"`

	// LastVerifiedAt is updated on each successful verification.
	LastVerifiedAt time.Time `msgpack:"last_verified_at"`
}

// CosineSimilarity computes the cosine similarity between two embedding
// vectors, in [-1, 1]. Mismatched dimensions or a zero-norm vector yield
// 0 (no similarity), never an error.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp floating point drift.
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim
}

// NamesCollide reports whether two display names are considered the same
// identity for enrollment purposes. The rule is deliberately loose:
// case-insensitive substring containment in either direction, so "Alice"
// collides with "alice", "Alice Smith", and "lice". This blocks
// near-duplicate identities at the cost of some false positives.
func NamesCollide(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
