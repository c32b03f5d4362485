package gate

import (
	"context"
	"time"
)

// UserSource distinguishes where a listed user record lives.
type UserSource string

const (
	// SourceStore means the speaker is indexed in the database blob.
	SourceStore UserSource = "store"

	// SourceArtifact means only the enrollment recording survives; the
	// speaker will be re-indexed by reconciliation on a matching
	// verification.
	SourceArtifact UserSource = "artifact"
)

// UserSummary is one row of the user listing.
type UserSummary struct {
	ID             string     `json:"id"`
	DisplayName    string     `json:"display_name"`
	Source         UserSource `json:"source"`
	EnrolledAt     time.Time  `json:"enrolled_at,omitempty"`
	LastVerifiedAt time.Time  `json:"last_verified_at,omitempty"`

	// HasArtifact reports whether the enrollment recording exists for
	// this speaker.
	HasArtifact bool `json:"has_artifact"`
}

// ListUsers returns all known speakers: indexed records first (insertion
// order), then artifact-only speakers whose recordings exist but are not
// in the store. Artifact scan errors are logged and degrade the listing
// to store records only.
func (e *Engine) ListUsers(ctx context.Context) []UserSummary {
	var out []UserSummary

	indexed := make(map[string]int) // id -> index in out
	for _, rec := range e.store.Records() {
		indexed[rec.ID] = len(out)
		out = append(out, UserSummary{
			ID:             rec.ID,
			DisplayName:    rec.DisplayName,
			Source:         SourceStore,
			EnrolledAt:     rec.EnrolledAt,
			LastVerifiedAt: rec.LastVerifiedAt,
		})
	}

	paths, err := e.artifacts.List(ctx, artifactPrefix)
	if err != nil {
		e.log.Warn("artifact scan failed during listing", "error", err)
		return out
	}
	for _, path := range paths {
		id := artifactID(path)
		if id == "" {
			continue
		}
		if i, ok := indexed[id]; ok {
			out[i].HasArtifact = true
			continue
		}
		out = append(out, UserSummary{
			ID:          id,
			DisplayName: id,
			Source:      SourceArtifact,
			HasArtifact: true,
		})
	}
	return out
}

// DeleteResult reports what DeleteUser removed.
type DeleteResult struct {
	RecordRemoved   bool `json:"record_removed"`
	ArtifactRemoved bool `json:"artifact_removed"`
}

// DeleteUser removes the speaker's store record and enrollment artifact.
// Neither removal is an error when the target is already absent; the
// result reports what actually existed.
func (e *Engine) DeleteUser(ctx context.Context, id string) (DeleteResult, error) {
	var res DeleteResult

	if _, err := e.store.Get(id); err == nil {
		if err := e.store.Delete(id); err != nil {
			return res, err
		}
		res.RecordRemoved = true
	}

	path := artifactName(id)
	exists, err := e.artifacts.Exists(ctx, path)
	if err != nil {
		return res, err
	}
	if exists {
		if err := e.artifacts.Delete(ctx, path); err != nil {
			return res, err
		}
		res.ArtifactRemoved = true
	}

	if res.RecordRemoved || res.ArtifactRemoved {
		e.log.Info("deleted speaker", "id", id,
			"record", res.RecordRemoved, "artifact", res.ArtifactRemoved)
	}
	return res, nil
}
