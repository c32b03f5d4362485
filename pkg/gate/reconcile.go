package gate

import (
	"context"
	"time"

	"github.com/voicegate/voicegate/pkg/speaker"
	"github.com/voicegate/voicegate/pkg/speaker/store"
	"github.com/voicegate/voicegate/pkg/storage"
)

// reconcile scans enrollment artifacts that are not indexed in the
// store, embeds each one, and tests it against the query embedding. On
// the first artifact whose similarity strictly exceeds the threshold,
// the speaker is re-inserted into the store and the match is returned.
//
// This is the recovery path for store/artifact divergence: the database
// blob was lost or a record was evicted, but the raw enrollment
// recording survived. Per-artifact failures (unreadable file, decode or
// embedding error) are logged and skipped; they never abort the scan.
func (e *Engine) reconcile(ctx context.Context, query []float32) (store.Match, bool) {
	paths, err := e.artifacts.List(ctx, artifactPrefix)
	if err != nil {
		e.log.Warn("artifact scan failed", "error", err)
		return store.Match{}, false
	}

	for _, path := range paths {
		id := artifactID(path)
		if id == "" {
			continue
		}
		if _, err := e.store.Get(id); err == nil {
			continue // already indexed
		}

		emb, err := e.embedArtifact(ctx, path)
		if err != nil {
			e.log.Warn("skipping artifact", "path", path, "error", err)
			continue
		}

		score := speaker.CosineSimilarity(emb, query)
		if score <= e.threshold {
			continue
		}

		rec := speaker.Record{
			ID:          id,
			DisplayName: id,
			Embedding:   emb,
			EnrolledAt:  time.Now(),
		}
		if err := e.store.Insert(rec); err != nil {
			e.log.Warn("reconciliation insert failed", "id", id, "error", err)
			continue
		}
		if _, err := e.store.MaybeEvict(); err != nil {
			e.log.Warn("post-reconciliation eviction failed", "error", err)
		}

		e.log.Info("reconciled speaker from artifact", "id", id, "score", score)
		return store.Match{ID: id, DisplayName: id, Score: score}, true
	}
	return store.Match{}, false
}

// embedArtifact reads, normalizes, and embeds one enrollment artifact.
func (e *Engine) embedArtifact(ctx context.Context, path string) ([]float32, error) {
	data, err := storage.ReadAll(ctx, e.artifacts, path)
	if err != nil {
		return nil, err
	}
	clip, err := e.norm.Normalize(data)
	if err != nil {
		return nil, err
	}
	return e.embedder.Embed(ctx, clip)
}
