// Package models holds the persistence row types shared by the db
// collaborators, and their conversions to and from core's in-memory
// types.
package models

import (
	"strconv"
	"time"

	"soundmark/core"
)

// Song is a reference recording's catalog entry.
type Song struct {
	ID        uint32    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title     string    `gorm:"size:255;not null;index" json:"title"`
	Artist    string    `gorm:"size:255;not null;index" json:"artist"`
	YtID      string    `gorm:"size:255;index" json:"yt_id"`
	Key       string    `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ReferenceID renders a Song's numeric id the way core.Posting expects to
// see it: as a string, so the core package never has to know about
// database identifiers.
func (s Song) ReferenceID() string {
	return FormatSongID(s.ID)
}

// Fingerprint is a single landmark hash row, keyed by (Hash, AnchorTimeMs,
// SongID) so storing the same song twice is idempotent.
type Fingerprint struct {
	Hash         int64  `gorm:"primaryKey;autoIncrement:false;index:idx_hash" json:"hash"`
	AnchorTimeMs uint32 `gorm:"primaryKey;autoIncrement:false" json:"anchor_time_ms"`
	SongID       uint32 `gorm:"primaryKey;autoIncrement:false;index:idx_song_id" json:"song_id"`
}

// ToLandmark converts a stored fingerprint row back to a core.Landmark.
func (f Fingerprint) ToLandmark() core.Landmark {
	return core.Landmark{Hash: core.Hash(f.Hash), AnchorTimeMs: f.AnchorTimeMs}
}

// ToPosting converts a stored fingerprint row to a core.Posting against
// its own song.
func (f Fingerprint) ToPosting() core.Posting {
	return core.Posting{ReferenceID: FormatSongID(f.SongID), AnchorTimeMs: f.AnchorTimeMs}
}

// FingerprintsFromLandmarks converts a batch of freshly computed
// landmarks into rows ready for storage under songID.
func FingerprintsFromLandmarks(songID uint32, landmarks []core.Landmark) []Fingerprint {
	rows := make([]Fingerprint, len(landmarks))
	for i, lm := range landmarks {
		rows[i] = Fingerprint{
			Hash:         int64(lm.Hash),
			AnchorTimeMs: lm.AnchorTimeMs,
			SongID:       songID,
		}
	}
	return rows
}

// QuerySession records one match attempt for later inspection, mirroring
// what the interactive CLI and the live microphone loop both report to a
// caller.
type QuerySession struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	QueryDuration float64   `json:"query_duration"`
	TotalPeaks    int       `json:"total_peaks"`
	TotalHashes   int       `json:"total_hashes"`
	MatchFound    bool      `gorm:"default:false" json:"match_found"`
	BestMatchID   *uint32   `json:"best_match_song_id,omitempty"`
	MatchScore    int       `json:"match_score"`
	QueryTime     time.Time `gorm:"autoCreateTime" json:"query_time"`
	ProcessTimeMs float64   `json:"process_time_ms"`
}

// QueryResult is one reference's ranked score within a QuerySession,
// retained for every candidate (not just the winner) so a caller can
// inspect how decisively the match was won.
type QueryResult struct {
	ID             uint32  `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID      string  `gorm:"index:idx_session_id;not null" json:"session_id"`
	SongID         uint32  `gorm:"index:idx_query_results_song_id;not null" json:"song_id"`
	MatchingHashes int     `gorm:"not null" json:"matching_hashes"`
	Confidence     float64 `json:"confidence_score"`
}

// RecordData is a raw audio payload handed to fileformat.ProcessRecording:
// base64-encoded PCM plus the parameters needed to parse it, the shape a
// browser mic capture or an uploaded clip arrives in.
type RecordData struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	SampleSize int    `json:"sample_size"`
}

// FormatSongID renders a numeric song id as the string core.Posting
// expects for ReferenceID.
func FormatSongID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseSongID is the inverse of FormatSongID.
func ParseSongID(referenceID string) (uint32, error) {
	id, err := strconv.ParseUint(referenceID, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}
