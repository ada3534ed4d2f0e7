// Package db holds the persistence collaborators: a shared Store
// interface plus a pgx/v5 raw-SQL implementation and a gorm
// implementation, so the CLI can run against either Postgres or a local
// SQLite file without core ever knowing a database exists.
package db

import (
	"context"
	"errors"

	"soundmark/core"
	"soundmark/models"
)

// ErrSongNotFound is returned by Store lookups when no row matches.
var ErrSongNotFound = errors.New("db: song not found")

// Store is the persistence boundary core never crosses: it turns
// landmarks into durable rows and turns hash lookups back into
// core.Posting slices the matcher can vote over.
type Store interface {
	Close() error

	// RegisterSong creates a catalog entry for a reference recording and
	// returns its assigned id, or an error wrapping a unique-constraint
	// violation if its (title, artist) key already exists.
	RegisterSong(ctx context.Context, title, artist, ytID string, duration float64) (uint32, error)

	// StoreFingerprints persists landmarks for songID. It is idempotent:
	// storing the same song twice must not duplicate rows.
	StoreFingerprints(ctx context.Context, songID uint32, landmarks []core.Landmark) error

	// Lookup returns every posting recorded against hash, across every
	// indexed song, the raw material core.Query needs.
	Lookup(ctx context.Context, hash core.Hash) ([]core.Posting, error)

	// LookupMany batches Lookup for a probe's full hash set in one
	// round trip.
	LookupMany(ctx context.Context, hashes []core.Hash) (map[core.Hash][]core.Posting, error)

	// FingerprintsForSong returns every landmark stored for songID, the
	// reverse of StoreFingerprints, used to rebuild an in-memory
	// core.Index.
	FingerprintsForSong(ctx context.Context, songID uint32) ([]core.Landmark, error)

	GetSong(ctx context.Context, songID uint32) (models.Song, error)
	GetSongByKey(ctx context.Context, key string) (models.Song, error)
	ListSongs(ctx context.Context) ([]models.Song, error)
	DeleteSong(ctx context.Context, songID uint32) error
	TotalSongs(ctx context.Context) (int, error)

	// RecordQuerySession persists one match attempt's summary, and
	// RecordQueryResults persists the full ranked candidate list behind
	// it, for later inspection.
	RecordQuerySession(ctx context.Context, session models.QuerySession) error
	RecordQueryResults(ctx context.Context, results []models.QueryResult) error
}

// LoadIndex rebuilds an in-memory core.Index from every fingerprint a
// Store holds, the bridge between durable storage and core's matcher.
// Callers that only ever query through Store.Lookup don't need this; it
// exists for workloads (the interactive query loop, benchmarking) that
// want the whole catalog resident in memory.
func LoadIndex(ctx context.Context, store Store) (*core.Index, error) {
	songs, err := store.ListSongs(ctx)
	if err != nil {
		return nil, err
	}

	idx := core.NewIndex()
	for _, song := range songs {
		landmarks, err := store.FingerprintsForSong(ctx, song.ID)
		if err != nil {
			return nil, err
		}
		idx.Add(song.ReferenceID(), landmarks)
	}
	return idx, nil
}
