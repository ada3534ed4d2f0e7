package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmark/core"
	"soundmark/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// testLandmarks fingerprints a synthetic ascending peak ramp, enough
// peaks that the fan-out produces a meaningful landmark set.
func testLandmarks(n int) []core.Landmark {
	peaks := make([]core.Peak, n)
	for i := range peaks {
		peaks[i] = core.Peak{
			TimeSeconds: float64(i) * 0.0465,
			FrequencyHz: uint16(200 + (i*37)%4000),
		}
	}
	return core.Fingerprint(peaks)
}

func TestRegisterAndGetSong(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.RegisterSong(ctx, "Bohemian Rhapsody", "Queen", "yt123", 354.2)
	require.NoError(t, err)

	song, err := store.GetSong(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bohemian Rhapsody", song.Title)
	assert.Equal(t, "Queen", song.Artist)
	assert.InDelta(t, 354.2, song.Duration, 1e-9)

	byKey, err := store.GetSongByKey(ctx, song.Key)
	require.NoError(t, err)
	assert.Equal(t, song.ID, byKey.ID)

	_, err = store.GetSong(ctx, id+1)
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestRegisterSongRejectsDuplicateKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterSong(ctx, "Same Song", "Same Artist", "a", 10)
	require.NoError(t, err)
	_, err = store.RegisterSong(ctx, "Same Song", "Same Artist", "b", 10)
	assert.Error(t, err)
}

func TestStoreAndLookupFingerprints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.RegisterSong(ctx, "Tone", "Test", "", 30)
	require.NoError(t, err)

	landmarks := testLandmarks(100)
	require.NotEmpty(t, landmarks)
	require.NoError(t, store.StoreFingerprints(ctx, id, landmarks))

	postings, err := store.Lookup(ctx, landmarks[0].Hash)
	require.NoError(t, err)
	require.NotEmpty(t, postings)
	assert.Equal(t, models.FormatSongID(id), postings[0].ReferenceID)

	roundTripped, err := store.FingerprintsForSong(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, roundTripped)

	// storing the same landmarks again must not duplicate rows
	require.NoError(t, store.StoreFingerprints(ctx, id, landmarks))
	again, err := store.FingerprintsForSong(ctx, id)
	require.NoError(t, err)
	assert.Len(t, again, len(roundTripped))
}

func TestQueryStoreSelfMatchRanksFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	target, err := store.RegisterSong(ctx, "Target", "A", "", 30)
	require.NoError(t, err)
	require.NoError(t, store.StoreFingerprints(ctx, target, testLandmarks(100)))

	decoyPeaks := make([]core.Peak, 80)
	for i := range decoyPeaks {
		decoyPeaks[i] = core.Peak{
			TimeSeconds: float64(i) * 0.0465,
			FrequencyHz: uint16(300 + (i*53)%3500),
		}
	}
	decoy, err := store.RegisterSong(ctx, "Decoy", "B", "", 30)
	require.NoError(t, err)
	require.NoError(t, store.StoreFingerprints(ctx, decoy, core.Fingerprint(decoyPeaks)))

	matches, err := QueryStore(ctx, store, testLandmarks(100))
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, models.FormatSongID(target), matches[0].ReferenceID)
}

func TestQueryStoreUnindexedProbeFindsNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	matches, err := QueryStore(ctx, store, testLandmarks(50))
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.True(t, core.IsNoMatch(core.Best(matches)))
}

func TestLoadIndexRebuildsCatalog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.RegisterSong(ctx, "Tone", "Test", "", 30)
	require.NoError(t, err)
	landmarks := testLandmarks(60)
	require.NoError(t, store.StoreFingerprints(ctx, id, landmarks))

	idx, err := LoadIndex(ctx, store)
	require.NoError(t, err)

	matches := core.Query(idx, landmarks)
	require.NotEmpty(t, matches)
	assert.Equal(t, models.FormatSongID(id), matches[0].ReferenceID)
}

func TestRecordQuerySessionAndResults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.RegisterSong(ctx, "Tone", "Test", "", 30)
	require.NoError(t, err)

	session := models.QuerySession{
		ID:            "session-test-1",
		QueryDuration: 10,
		TotalPeaks:    123,
		TotalHashes:   456,
		MatchFound:    true,
		BestMatchID:   &id,
		MatchScore:    87,
	}
	require.NoError(t, store.RecordQuerySession(ctx, session))
	require.NoError(t, store.RecordQueryResults(ctx, []models.QueryResult{
		{SessionID: session.ID, SongID: id, MatchingHashes: 87, Confidence: 0.58},
	}))
}

func TestDeleteSongRemovesFingerprints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.RegisterSong(ctx, "Tone", "Test", "", 30)
	require.NoError(t, err)
	landmarks := testLandmarks(40)
	require.NoError(t, store.StoreFingerprints(ctx, id, landmarks))

	require.NoError(t, store.DeleteSong(ctx, id))

	_, err = store.GetSong(ctx, id)
	assert.ErrorIs(t, err, ErrSongNotFound)

	remaining, err := store.FingerprintsForSong(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	total, err := store.TotalSongs(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}
