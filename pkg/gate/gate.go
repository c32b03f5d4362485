// Package gate implements the speaker verification decision engine.
//
// A verification attempt moves through a fixed pipeline:
//
//	raw audio -> normalized clip -> watermark check -> embedding
//	          -> similarity search -> [authenticated | reconciliation]
//	          -> [authenticated | denied]
//
// The watermark check runs first and short-circuits: a clip carrying the
// enrollment watermark is a replayed recording, and is rejected no
// matter how well its voice matches. The reconciliation step runs only
// when the similarity search misses; it re-derives store entries from
// enrollment artifacts that are not currently indexed (self-healing
// after store/artifact divergence).
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicegate/voicegate/pkg/audio"
	"github.com/voicegate/voicegate/pkg/audio/normalize"
	"github.com/voicegate/voicegate/pkg/audio/wav"
	"github.com/voicegate/voicegate/pkg/embed"
	"github.com/voicegate/voicegate/pkg/speaker"
	"github.com/voicegate/voicegate/pkg/speaker/store"
	"github.com/voicegate/voicegate/pkg/storage"
	"github.com/voicegate/voicegate/pkg/watermark"
)

// DefaultThreshold is the minimum cosine similarity for authentication.
// Matching is strict greater-than: a score exactly at the threshold is
// a failure.
const DefaultThreshold = 0.35

const (
	artifactPrefix = "enrolled_user_"
	artifactSuffix = ".wav"
)

// Options configures an Engine. Store, Embedder, Normalizer, Watermark,
// and Artifacts are required.
type Options struct {
	Store      *store.Store
	Embedder   embed.Embedder
	Normalizer *normalize.Normalizer
	Watermark  *watermark.Codec
	Artifacts  storage.FileStore

	// Threshold is the similarity threshold; zero means DefaultThreshold.
	Threshold float64

	// Logger receives pipeline diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Engine orchestrates enrollment and verification against a single
// shared speaker store. Safe for concurrent use; the store serializes
// all mutations internally.
type Engine struct {
	store     *store.Store
	embedder  embed.Embedder
	norm      *normalize.Normalizer
	codec     *watermark.Codec
	artifacts storage.FileStore
	threshold float64
	log       *slog.Logger
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Store == nil:
		return nil, errors.New("gate: Options.Store is required")
	case opts.Embedder == nil:
		return nil, errors.New("gate: Options.Embedder is required")
	case opts.Normalizer == nil:
		return nil, errors.New("gate: Options.Normalizer is required")
	case opts.Watermark == nil:
		return nil, errors.New("gate: Options.Watermark is required")
	case opts.Artifacts == nil:
		return nil, errors.New("gate: Options.Artifacts is required")
	}
	e := &Engine{
		store:     opts.Store,
		embedder:  opts.Embedder,
		norm:      opts.Normalizer,
		codec:     opts.Watermark,
		artifacts: opts.Artifacts,
		threshold: opts.Threshold,
		log:       opts.Logger,
	}
	if e.threshold == 0 {
		e.threshold = DefaultThreshold
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e, nil
}

// VerifyResult is the outcome of one verification attempt.
type VerifyResult struct {
	// Authenticated is true when a stored speaker matched and no replay
	// watermark was found.
	Authenticated bool `json:"authenticated"`

	// SpeakerID and DisplayName identify the matched speaker when
	// Authenticated is true.
	SpeakerID   string `json:"speaker_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	// Score is the cosine similarity of the winning match, or 0 when
	// denied.
	Score float64 `json:"score"`

	// WatermarkDetected reports the replay check separately from the
	// match outcome, so callers can distinguish "no matching voice"
	// from "replay attack suspected".
	WatermarkDetected bool `json:"watermark_detected"`
}

// EnrollResult describes a successful enrollment.
type EnrollResult struct {
	SpeakerID   string    `json:"speaker_id"`
	DisplayName string    `json:"display_name"`
	EnrolledAt  time.Time `json:"enrolled_at"`

	// EvictedID names the record removed by the post-enrollment size
	// check, if any.
	EvictedID string `json:"evicted_id,omitempty"`
}

// Verify authenticates raw audio against the enrolled speakers.
//
// Decode and embedding failures return errors (wrapping
// normalize.ErrDecode / embed.ErrEmbedding). A detected watermark or an
// unmatched voice is not an error: the outcome is in the result.
func (e *Engine) Verify(ctx context.Context, audioBytes []byte) (VerifyResult, error) {
	clip, err := e.norm.Normalize(audioBytes)
	if err != nil {
		return VerifyResult{}, err
	}

	if e.codec.Detect(clip) {
		e.log.Warn("watermark detected, rejecting as replay",
			"ratio", e.codec.Ratio(clip))
		return VerifyResult{WatermarkDetected: true}, nil
	}

	emb, err := e.embedder.Embed(ctx, clip)
	if err != nil {
		return VerifyResult{}, err
	}

	if m, ok := e.store.FindBySimilarity(emb, e.threshold); ok {
		if err := e.store.Touch(m.ID, time.Now()); err != nil {
			return VerifyResult{}, fmt.Errorf("gate: record match: %w", err)
		}
		e.log.Info("verification succeeded", "speaker", m.ID, "score", m.Score)
		return VerifyResult{
			Authenticated: true,
			SpeakerID:     m.ID,
			DisplayName:   m.DisplayName,
			Score:         m.Score,
		}, nil
	}

	// No indexed match; try to recover entries from enrollment
	// artifacts that never made it into (or fell out of) the store.
	if m, ok := e.reconcile(ctx, emb); ok {
		return VerifyResult{
			Authenticated: true,
			SpeakerID:     m.ID,
			DisplayName:   m.DisplayName,
			Score:         m.Score,
		}, nil
	}

	e.log.Info("verification denied, no matching speaker")
	return VerifyResult{}, nil
}

// Enroll registers a new speaker from raw audio.
//
// The display name must be non-empty and must not collide (loose
// case-insensitive substring rule) with an enrolled name. The canonical
// recording is kept as a WAV artifact so the store can be rebuilt from
// it later.
func (e *Engine) Enroll(ctx context.Context, name string, audioBytes []byte) (EnrollResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return EnrollResult{}, errors.New("gate: display name is required")
	}

	clip, err := e.norm.Normalize(audioBytes)
	if err != nil {
		return EnrollResult{}, err
	}

	// Cheap name check before paying for the embedding; Insert enforces
	// the same policy again under the write lock.
	for _, rec := range e.store.Records() {
		if speaker.NamesCollide(rec.DisplayName, name) {
			return EnrollResult{}, fmt.Errorf("%w: %q collides with %q",
				store.ErrDuplicateName, name, rec.DisplayName)
		}
	}

	emb, err := e.embedder.Embed(ctx, clip)
	if err != nil {
		return EnrollResult{}, err
	}

	now := time.Now()
	rec := speaker.Record{
		ID:          uuid.NewString(),
		DisplayName: name,
		Embedding:   emb,
		EnrolledAt:  now,
	}
	if err := e.store.Insert(rec); err != nil {
		return EnrollResult{}, err
	}

	// Artifact write is best-effort: the store entry is authoritative,
	// the artifact only enables reconciliation later.
	if err := e.writeArtifact(ctx, rec.ID, clip); err != nil {
		e.log.Warn("enrollment artifact write failed", "id", rec.ID, "error", err)
	}

	evicted, err := e.store.MaybeEvict()
	if err != nil {
		e.log.Warn("post-enrollment eviction failed", "error", err)
	}

	e.log.Info("speaker enrolled", "id", rec.ID, "name", name)
	return EnrollResult{
		SpeakerID:   rec.ID,
		DisplayName: name,
		EnrolledAt:  now,
		EvictedID:   evicted,
	}, nil
}

// writeArtifact stores the canonical clip as a WAV file named after the
// speaker id.
func (e *Engine) writeArtifact(ctx context.Context, id string, clip *audio.Clip) error {
	data, err := wav.Marshal(clip)
	if err != nil {
		return err
	}
	return storage.WriteAll(ctx, e.artifacts, artifactName(id), data)
}

// artifactName derives the artifact path for a speaker id.
func artifactName(id string) string {
	return artifactPrefix + id + artifactSuffix
}

// artifactID extracts the speaker id from an artifact path, or "" if
// the path does not follow the artifact naming scheme. Matching is
// exact on prefix and suffix; there is no fuzzy containment.
func artifactID(path string) string {
	if !strings.HasPrefix(path, artifactPrefix) || !strings.HasSuffix(path, artifactSuffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(path, artifactPrefix), artifactSuffix)
}
