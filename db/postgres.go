package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"soundmark/core"
	"soundmark/models"
	"soundmark/utils"
)

// PostgresStore is a Store backed by a pgx/v5 connection pool, talking
// raw SQL rather than an ORM so the fingerprint hot path (lookups keyed
// on a BIGINT hash column) stays a single indexed query.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn, verifies the connection, and creates
// the songs/fingerprints/query_sessions/query_results tables if they
// don't already exist.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: opening postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: connecting to postgres: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.createTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: creating tables: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS songs (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			yt_id TEXT,
			key TEXT NOT NULL UNIQUE,
			duration DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS fingerprints (
			hash BIGINT NOT NULL,
			anchor_time_ms INTEGER NOT NULL,
			song_id BIGINT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			PRIMARY KEY (hash, anchor_time_ms, song_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fingerprints_hash ON fingerprints (hash)`,
		`CREATE TABLE IF NOT EXISTS query_sessions (
			id VARCHAR(64) PRIMARY KEY,
			query_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_peaks INTEGER NOT NULL DEFAULT 0,
			total_hashes INTEGER NOT NULL DEFAULT 0,
			match_found BOOLEAN NOT NULL DEFAULT false,
			best_match_song_id BIGINT,
			match_score INTEGER NOT NULL DEFAULT 0,
			query_time TIMESTAMPTZ NOT NULL DEFAULT now(),
			process_time_ms DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS query_results (
			id BIGSERIAL PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL REFERENCES query_sessions(id) ON DELETE CASCADE,
			song_id BIGINT NOT NULL,
			matching_hashes INTEGER NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_query_results_session ON query_results (session_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) RegisterSong(ctx context.Context, title, artist, ytID string, duration float64) (uint32, error) {
	songID := utils.GenerateUniqueID()
	key := utils.GenerateSongKey(title, artist)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO songs (id, title, artist, yt_id, key, duration) VALUES ($1, $2, $3, $4, $5, $6)`,
		int64(songID), title, artist, ytID, key, duration,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return 0, fmt.Errorf("db: song %q already registered: %w", key, err)
	}
	if err != nil {
		return 0, fmt.Errorf("db: registering song: %w", err)
	}
	return songID, nil
}

func (s *PostgresStore) StoreFingerprints(ctx context.Context, songID uint32, landmarks []core.Landmark) error {
	if len(landmarks) == 0 {
		return nil
	}

	const batchSize = 20000
	for start := 0; start < len(landmarks); start += batchSize {
		end := min(start+batchSize, len(landmarks))
		batch := &pgx.Batch{}
		for _, lm := range landmarks[start:end] {
			batch.Queue(
				`INSERT INTO fingerprints (hash, anchor_time_ms, song_id) VALUES ($1, $2, $3)
				 ON CONFLICT (hash, anchor_time_ms, song_id) DO NOTHING`,
				int64(lm.Hash), int32(lm.AnchorTimeMs), int64(songID),
			)
		}
		results := s.pool.SendBatch(ctx, batch)
		for range batch.Len() {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("db: storing fingerprint batch: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Lookup(ctx context.Context, hash core.Hash) ([]core.Posting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT song_id, anchor_time_ms FROM fingerprints WHERE hash = $1`, int64(hash))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []core.Posting
	for rows.Next() {
		var songID int64
		var anchorTimeMs int32
		if err := rows.Scan(&songID, &anchorTimeMs); err != nil {
			return nil, err
		}
		postings = append(postings, core.Posting{
			ReferenceID:  models.FormatSongID(uint32(songID)),
			AnchorTimeMs: uint32(anchorTimeMs),
		})
	}
	return postings, rows.Err()
}

func (s *PostgresStore) LookupMany(ctx context.Context, hashes []core.Hash) (map[core.Hash][]core.Posting, error) {
	out := make(map[core.Hash][]core.Posting, len(hashes))
	if len(hashes) == 0 {
		return out, nil
	}

	raw := make([]int64, len(hashes))
	for i, h := range hashes {
		raw[i] = int64(h)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT hash, song_id, anchor_time_ms FROM fingerprints WHERE hash = ANY($1)`, raw)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var hash int64
		var songID int64
		var anchorTimeMs int32
		if err := rows.Scan(&hash, &songID, &anchorTimeMs); err != nil {
			return nil, err
		}
		h := core.Hash(hash)
		out[h] = append(out[h], core.Posting{
			ReferenceID:  models.FormatSongID(uint32(songID)),
			AnchorTimeMs: uint32(anchorTimeMs),
		})
	}
	return out, rows.Err()
}

func (s *PostgresStore) FingerprintsForSong(ctx context.Context, songID uint32) ([]core.Landmark, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT hash, anchor_time_ms FROM fingerprints WHERE song_id = $1`, int64(songID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var landmarks []core.Landmark
	for rows.Next() {
		var hash int64
		var anchorTimeMs int32
		if err := rows.Scan(&hash, &anchorTimeMs); err != nil {
			return nil, err
		}
		landmarks = append(landmarks, core.Landmark{Hash: core.Hash(hash), AnchorTimeMs: uint32(anchorTimeMs)})
	}
	return landmarks, rows.Err()
}

func (s *PostgresStore) scanSong(row pgx.Row) (models.Song, error) {
	var song models.Song
	var id int64
	err := row.Scan(&id, &song.Title, &song.Artist, &song.YtID, &song.Key, &song.Duration, &song.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Song{}, ErrSongNotFound
	}
	if err != nil {
		return models.Song{}, err
	}
	song.ID = uint32(id)
	return song, nil
}

func (s *PostgresStore) GetSong(ctx context.Context, songID uint32) (models.Song, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, title, artist, yt_id, key, duration, created_at FROM songs WHERE id = $1`, int64(songID))
	return s.scanSong(row)
}

func (s *PostgresStore) GetSongByKey(ctx context.Context, key string) (models.Song, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, title, artist, yt_id, key, duration, created_at FROM songs WHERE key = $1`, key)
	return s.scanSong(row)
}

func (s *PostgresStore) ListSongs(ctx context.Context) ([]models.Song, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, artist, yt_id, key, duration, created_at FROM songs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		song, err := s.scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

func (s *PostgresStore) DeleteSong(ctx context.Context, songID uint32) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM songs WHERE id = $1`, int64(songID))
	return err
}

func (s *PostgresStore) TotalSongs(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}

func (s *PostgresStore) RecordQuerySession(ctx context.Context, session models.QuerySession) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO query_sessions
			(id, query_duration, total_peaks, total_hashes, match_found, best_match_song_id, match_score, process_time_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.QueryDuration, session.TotalPeaks, session.TotalHashes,
		session.MatchFound, session.BestMatchID, session.MatchScore, session.ProcessTimeMs,
	)
	return err
}

func (s *PostgresStore) RecordQueryResults(ctx context.Context, results []models.QueryResult) error {
	if len(results) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range results {
		batch.Queue(
			`INSERT INTO query_results (session_id, song_id, matching_hashes, confidence_score) VALUES ($1, $2, $3, $4)`,
			r.SessionID, int64(r.SongID), r.MatchingHashes, r.Confidence,
		)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
