// Package store persists enrolled speaker records as a single msgpack
// blob on disk.
//
// The whole mapping is loaded once at startup and rewritten atomically
// (temp file + rename) on every mutation; there is no write-ahead log.
// A crash can therefore lose at most the in-flight mutation, and a
// partially written blob is handled at load time by falling back to an
// empty store with a surfaced error.
//
// When the persisted blob grows past a configured byte cap, the store
// evicts exactly one record per mutation: the one with the oldest
// enrollment time. Note this is keyed on enrollment time, not last use,
// so a frequently verified speaker can be evicted while stale entries
// survive. The policy is deliberate; see MaybeEvict.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/voicegate/voicegate/pkg/speaker"
)

// Sentinel errors.
var (
	// ErrCorrupt is returned by Open when the persisted blob cannot be
	// decoded. The store still opens, empty.
	ErrCorrupt = errors.New("store: corrupt speaker database")

	// ErrDuplicateName is returned by Insert when the display name
	// collides with an already enrolled speaker.
	ErrDuplicateName = errors.New("store: display name already enrolled")

	// ErrPersist is returned when the blob cannot be written to disk.
	// The in-memory state is rolled back to before the mutation.
	ErrPersist = errors.New("store: persist failed")

	// ErrNotFound is returned when a speaker ID does not exist.
	ErrNotFound = errors.New("store: speaker not found")
)

// blobVersion is the current serialization schema version.
const blobVersion = 1

// DefaultMaxBytes is the default persisted-size cap that triggers
// eviction. Inherited from the system this store replaces; almost
// certainly too small for real deployments (a single embedding exceeds
// it), so production configs should raise it. Kept as the default until
// the intended capacity unit is decided.
const DefaultMaxBytes = 4000

// envelope is the on-disk representation.
type envelope struct {
	Version int              `msgpack:"v"`
	Records []speaker.Record `msgpack:"records"`
}

// Options configures a Store.
type Options struct {
	// Path is the blob file location. Required.
	Path string

	// MaxBytes caps the persisted blob size before eviction kicks in.
	// Zero means DefaultMaxBytes.
	MaxBytes int64

	// Logger receives load warnings and eviction notices.
	// Nil means slog.Default().
	Logger *slog.Logger
}

// Store is the persistent speaker database. Safe for concurrent use:
// reads run under a shared lock, mutations are serialized and persist
// synchronously before returning.
type Store struct {
	path     string
	maxBytes int64
	log      *slog.Logger

	mu      sync.RWMutex
	records map[string]speaker.Record
	order   []string // insertion order of IDs
	size    int64    // byte size of the last persisted blob

	// writeFile is swappable in tests to simulate disk failures.
	writeFile func(path string, data []byte) error
}

// Match is the result of a similarity search.
type Match struct {
	ID          string
	DisplayName string
	Score       float64
}

// Open loads (or creates) the store at opts.Path.
//
// If the blob exists but cannot be decoded, Open returns a usable empty
// store together with an error wrapping [ErrCorrupt]. Callers should log
// the error and continue; the data loss is surfaced, not hidden.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("store: Options.Path is required")
	}
	s := &Store{
		path:      opts.Path,
		maxBytes:  opts.MaxBytes,
		log:       opts.Logger,
		records:   make(map[string]speaker.Record),
		writeFile: atomicWriteFile,
	}
	if s.maxBytes <= 0 {
		s.maxBytes = DefaultMaxBytes
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	data, err := os.ReadFile(opts.Path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", opts.Path, err)
	}

	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		s.log.Warn("speaker database corrupt, starting empty",
			"path", opts.Path, "error", err)
		return s, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.Version > blobVersion {
		s.log.Warn("speaker database from a newer schema, starting empty",
			"path", opts.Path, "version", env.Version)
		return s, fmt.Errorf("%w: unknown schema version %d", ErrCorrupt, env.Version)
	}

	for _, rec := range env.Records {
		s.records[rec.ID] = rec
		s.order = append(s.order, rec.ID)
	}
	s.size = int64(len(data))
	return s, nil
}

// Insert adds a new speaker record and persists the store.
//
// It fails with [ErrDuplicateName] if the record's display name
// case-insensitively contains, or is contained by, any enrolled name
// (see speaker.NamesCollide). On persist failure the record is not kept.
func (s *Store) Insert(rec speaker.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("store: id %q already exists", rec.ID)
	}
	for _, id := range s.order {
		if speaker.NamesCollide(s.records[id].DisplayName, rec.DisplayName) {
			return fmt.Errorf("%w: %q collides with %q",
				ErrDuplicateName, rec.DisplayName, s.records[id].DisplayName)
		}
	}

	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	if err := s.persistLocked(); err != nil {
		delete(s.records, rec.ID)
		s.order = s.order[:len(s.order)-1]
		return err
	}
	return nil
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (speaker.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return speaker.Record{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return rec, nil
}

// FindBySimilarity scans records in insertion order and returns the
// FIRST record whose cosine similarity with the query strictly exceeds
// threshold. Equality with the threshold is not a match.
//
// The first-above-threshold rule (rather than best-match) is preserved
// from the original decision procedure; with a well-separated embedding
// space at most one enrolled speaker clears the threshold anyway.
func (s *Store) FindBySimilarity(embedding []float32, threshold float64) (Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		rec := s.records[id]
		score := speaker.CosineSimilarity(rec.Embedding, embedding)
		if score > threshold {
			return Match{ID: id, DisplayName: rec.DisplayName, Score: score}, true
		}
	}
	return Match{}, false
}

// Touch updates the record's LastVerifiedAt and persists. Fails with
// [ErrNotFound] if the id does not exist; the previous timestamp is
// restored on persist failure.
func (s *Store) Touch(id string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	prev := rec.LastVerifiedAt
	rec.LastVerifiedAt = t
	s.records[id] = rec
	if err := s.persistLocked(); err != nil {
		rec.LastVerifiedAt = prev
		s.records[id] = rec
		return err
	}
	return nil
}

// Delete removes the record if present and persists. Deleting an absent
// id is a no-op, not an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	idx := slices.Index(s.order, id)
	delete(s.records, id)
	s.order = slices.Delete(s.order, idx, idx+1)
	if err := s.persistLocked(); err != nil {
		s.records[id] = rec
		s.order = slices.Insert(s.order, idx, id)
		return err
	}
	return nil
}

// MaybeEvict checks the persisted blob size against the configured cap
// and, if exceeded, removes exactly one record: the one with the minimum
// EnrolledAt. A single call never removes more than one record, so an
// oversized store shrinks incrementally across mutations rather than in
// one pass. Returns the evicted id, or "" if nothing was evicted.
func (s *Store) MaybeEvict() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.size <= s.maxBytes || len(s.order) == 0 {
		return "", nil
	}

	oldest := s.order[0]
	for _, id := range s.order[1:] {
		if s.records[id].EnrolledAt.Before(s.records[oldest].EnrolledAt) {
			oldest = id
		}
	}

	rec := s.records[oldest]
	idx := slices.Index(s.order, oldest)
	delete(s.records, oldest)
	s.order = slices.Delete(s.order, idx, idx+1)
	if err := s.persistLocked(); err != nil {
		s.records[oldest] = rec
		s.order = slices.Insert(s.order, idx, oldest)
		return "", err
	}
	s.log.Info("evicted oldest speaker",
		"id", oldest, "enrolled_at", rec.EnrolledAt, "blob_bytes", s.size)
	return oldest, nil
}

// Len returns the number of enrolled speakers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Records returns copies of all records in insertion order.
func (s *Store) Records() []speaker.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]speaker.Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// PersistedSize returns the byte size of the last written blob.
func (s *Store) PersistedSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// persistLocked serializes the full store and writes it to disk.
// Callers must hold the write lock.
func (s *Store) persistLocked() error {
	env := envelope{Version: blobVersion}
	env.Records = make([]speaker.Record, 0, len(s.order))
	for _, id := range s.order {
		env.Records = append(env.Records, s.records[id])
	}
	data, err := msgpack.Marshal(env)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := s.writeFile(s.path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.size = int64(len(data))
	return nil
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it into place, so readers never observe a partial blob.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
