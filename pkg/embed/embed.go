// Package embed provides the voice embedding boundary: converting a
// canonical audio clip into a fixed-length float32 vector that
// summarizes the speaker's voice.
//
// The engine treats embeddings as opaque; they are only ever compared
// via cosine similarity. Implementations:
//
//   - [HTTP] — posts audio to a pretrained model sidecar (ECAPA-TDNN or
//     similar) over JSON.
//   - [Spectral] — a deterministic local long-term-spectrum embedder for
//     tests and offline operation. Far weaker than a neural model, but
//     self-contained.
package embed

import (
	"context"
	"errors"

	"github.com/voicegate/voicegate/pkg/audio"
)

// ErrEmbedding is returned when a clip cannot be embedded. The caller
// must treat it as a hard stop for the request, never as an empty
// vector.
var ErrEmbedding = errors.New("embed: embedding failed")

// Embedder maps a canonical clip (mono PCM16) to a fixed-length voice
// embedding. Implementations must be deterministic for identical input
// and safe for concurrent use.
type Embedder interface {
	// Embed computes the embedding vector for the clip.
	// Fails with an error wrapping ErrEmbedding on malformed audio.
	Embed(ctx context.Context, clip *audio.Clip) ([]float32, error)

	// Dimension returns the length of vectors produced by Embed.
	Dimension() int
}
