package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"soundmark/core"
	"soundmark/models"
	"soundmark/utils"
)

// GormStore is a Store backed by gorm, usable over either a local SQLite
// file (the zero-setup default) or Postgres, picked by which constructor
// the caller reaches for.
type GormStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite database at path via
// github.com/glebarez/sqlite, gorm's pure-Go driver — no cgo toolchain
// required to index a song on a laptop with nothing else installed.
func NewSQLiteStore(path string) (*GormStore, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("db: opening sqlite store: %w", err)
	}
	return newGormStore(gdb)
}

// NewGormPostgresStore opens a Postgres database via gorm.io/driver/postgres
// instead of db.NewPostgresStore's raw pgx/v5 path, for callers that want
// gorm's migrations and associations over Postgres's durability.
func NewGormPostgresStore(dsn string) (*GormStore, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("db: opening postgres store via gorm: %w", err)
	}
	return newGormStore(gdb)
}

func newGormStore(gdb *gorm.DB) (*GormStore, error) {
	if err := gdb.AutoMigrate(&models.Song{}, &models.Fingerprint{}, &models.QuerySession{}, &models.QueryResult{}); err != nil {
		return nil, fmt.Errorf("db: migrating schema: %w", err)
	}
	return &GormStore{db: gdb}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) RegisterSong(ctx context.Context, title, artist, ytID string, duration float64) (uint32, error) {
	song := models.Song{
		ID:       utils.GenerateUniqueID(),
		Title:    title,
		Artist:   artist,
		YtID:     ytID,
		Key:      utils.GenerateSongKey(title, artist),
		Duration: duration,
	}
	if err := s.db.WithContext(ctx).Create(&song).Error; err != nil {
		return 0, fmt.Errorf("db: registering song %q: %w", song.Key, err)
	}
	return song.ID, nil
}

func (s *GormStore) StoreFingerprints(ctx context.Context, songID uint32, landmarks []core.Landmark) error {
	rows := models.FingerprintsFromLandmarks(songID, landmarks)
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, 5000).Error
}

func (s *GormStore) Lookup(ctx context.Context, hash core.Hash) ([]core.Posting, error) {
	var rows []models.Fingerprint
	if err := s.db.WithContext(ctx).Where("hash = ?", int64(hash)).Find(&rows).Error; err != nil {
		return nil, err
	}
	postings := make([]core.Posting, len(rows))
	for i, r := range rows {
		postings[i] = r.ToPosting()
	}
	return postings, nil
}

func (s *GormStore) LookupMany(ctx context.Context, hashes []core.Hash) (map[core.Hash][]core.Posting, error) {
	out := make(map[core.Hash][]core.Posting, len(hashes))
	if len(hashes) == 0 {
		return out, nil
	}

	raw := make([]int64, len(hashes))
	for i, h := range hashes {
		raw[i] = int64(h)
	}

	var rows []models.Fingerprint
	if err := s.db.WithContext(ctx).Where("hash IN ?", raw).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[core.Hash(r.Hash)] = append(out[core.Hash(r.Hash)], r.ToPosting())
	}
	return out, nil
}

func (s *GormStore) FingerprintsForSong(ctx context.Context, songID uint32) ([]core.Landmark, error) {
	var rows []models.Fingerprint
	if err := s.db.WithContext(ctx).Where("song_id = ?", songID).Find(&rows).Error; err != nil {
		return nil, err
	}
	landmarks := make([]core.Landmark, len(rows))
	for i, r := range rows {
		landmarks[i] = r.ToLandmark()
	}
	return landmarks, nil
}

func (s *GormStore) GetSong(ctx context.Context, songID uint32) (models.Song, error) {
	var song models.Song
	err := s.db.WithContext(ctx).First(&song, "id = ?", songID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Song{}, ErrSongNotFound
	}
	return song, err
}

func (s *GormStore) GetSongByKey(ctx context.Context, key string) (models.Song, error) {
	var song models.Song
	err := s.db.WithContext(ctx).First(&song, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Song{}, ErrSongNotFound
	}
	return song, err
}

func (s *GormStore) ListSongs(ctx context.Context) ([]models.Song, error) {
	var songs []models.Song
	err := s.db.WithContext(ctx).Order("id").Find(&songs).Error
	return songs, err
}

func (s *GormStore) DeleteSong(ctx context.Context, songID uint32) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("song_id = ?", songID).Delete(&models.Fingerprint{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Song{ID: songID}).Error
	})
}

func (s *GormStore) TotalSongs(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Song{}).Count(&count).Error
	return int(count), err
}

func (s *GormStore) RecordQuerySession(ctx context.Context, session models.QuerySession) error {
	return s.db.WithContext(ctx).Create(&session).Error
}

func (s *GormStore) RecordQueryResults(ctx context.Context, results []models.QueryResult) error {
	if len(results) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(results, 5000).Error
}
