// Command soundmark indexes reference recordings into a fingerprint
// database and identifies query snippets against them, from files, from
// YouTube, or live from a microphone.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"soundmark/config"
	"soundmark/core"
	"soundmark/db"
	"soundmark/fileformat"
	"soundmark/ingest"
	"soundmark/logging"
	"soundmark/mic"
	"soundmark/models"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  soundmark index <file> [title] [artist]  - Fingerprint and store a recording")
	fmt.Println("  soundmark query <file>                   - Identify a snippet from a file")
	fmt.Println("  soundmark record                         - Record from the microphone and identify")
	fmt.Println("  soundmark ingest <url>                   - Download and index a YouTube video/playlist")
	fmt.Println("  soundmark peaks <file> <out.png>         - Render a constellation diagnostic")
	fmt.Println("  soundmark list                           - List indexed recordings")
	fmt.Println("  soundmark stats                          - Show database statistics")
	fmt.Println("  soundmark clean                          - Remove all recordings and fingerprints")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.Load("config.yaml", ".env")
	if err != nil {
		fmt.Printf("❌ Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// peaks needs no database; skip opening one so the diagnostic works
	// before any store exists.
	if os.Args[1] == "peaks" {
		if err := cmdPeaks(os.Args[2:]); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		return
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch os.Args[1] {
	case "index":
		if len(os.Args) < 3 {
			fmt.Println("Usage: soundmark index <file> [title] [artist]")
			return
		}
		path := os.Args[2]
		title, artist := ingest.TitleFromFilename(path)
		if len(os.Args) > 3 {
			title = os.Args[3]
		}
		if len(os.Args) > 4 {
			artist = os.Args[4]
		}
		if err := indexFile(ctx, store, path, title, artist, ""); err != nil {
			fmt.Printf("❌ Error indexing song: %v\n", err)
			os.Exit(1)
		}

	case "query":
		if len(os.Args) < 3 {
			fmt.Println("Usage: soundmark query <file>")
			return
		}
		samples, err := fileformat.DecodeFile(os.Args[2])
		if err != nil {
			fmt.Printf("❌ Error decoding file: %v\n", err)
			os.Exit(1)
		}
		if err := runQuery(ctx, store, samples); err != nil {
			fmt.Printf("❌ Query error: %v\n", err)
			os.Exit(1)
		}

	case "record":
		recorder, err := mic.NewRecorder(cfg.Microphone.DeviceName)
		if err != nil {
			fmt.Printf("❌ Microphone error: %v\n", err)
			os.Exit(1)
		}
		defer recorder.Close()

		fmt.Printf("🔴 Recording for %s...\n", mic.DefaultQueryWindow)
		capture, err := recorder.Record(ctx, mic.DefaultQueryWindow)
		if err != nil {
			fmt.Printf("❌ Recording error: %v\n", err)
			os.Exit(1)
		}
		for _, warning := range capture.Warnings() {
			fmt.Printf("⚠️  %s\n", warning)
		}
		fmt.Printf("📊 Captured %.2fs at %d Hz\n", capture.Duration(), capture.SampleRate)

		samples, err := capture.CanonicalSamples()
		if err != nil {
			fmt.Printf("❌ Resampling error: %v\n", err)
			os.Exit(1)
		}
		if err := runQuery(ctx, store, samples); err != nil {
			fmt.Printf("❌ Query error: %v\n", err)
			os.Exit(1)
		}

	case "ingest":
		if len(os.Args) < 3 {
			fmt.Println("Usage: soundmark ingest <url>")
			return
		}
		if err := cmdIngest(ctx, store, cfg, os.Args[2]); err != nil {
			fmt.Printf("❌ Ingest error: %v\n", err)
			os.Exit(1)
		}

	case "list":
		if err := cmdList(ctx, store); err != nil {
			fmt.Printf("❌ Error fetching songs: %v\n", err)
			os.Exit(1)
		}

	case "stats":
		total, err := store.TotalSongs(ctx)
		if err != nil {
			fmt.Printf("❌ Error fetching stats: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n📊 Database Statistics:\n")
		fmt.Printf("═══════════════════════════\n")
		fmt.Printf("🎵 Total songs: %d\n", total)

	case "clean":
		if err := cmdClean(ctx, store); err != nil {
			fmt.Printf("❌ Clean error: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Printf("❓ Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	switch cfg.Database.Driver {
	case "", "sqlite":
		return db.NewSQLiteStore(cfg.Database.Path)
	case "postgres":
		return db.NewPostgresStore(ctx, cfg.Database.DSN)
	case "gorm-postgres":
		return db.NewGormPostgresStore(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// analyze runs the full fingerprinting pipeline over decoded samples.
func analyze(samples []float64) (peaks []core.Peak, landmarks []core.Landmark) {
	spectrogram := core.Spectrogram(samples)
	peaks = core.ExtractPeaks(spectrogram)
	return peaks, core.Fingerprint(peaks)
}

func indexFile(ctx context.Context, store db.Store, path, title, artist, ytID string) error {
	fmt.Printf("💿 Processing: %s by %s from %s\n", title, artist, path)

	samples, err := fileformat.DecodeFile(path)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	duration := float64(len(samples)) / float64(core.SampleRate)
	peaks, landmarks := analyze(samples)
	if len(landmarks) == 0 {
		return fmt.Errorf("no landmarks extracted from %s (silent or too short)", path)
	}

	songID, err := store.RegisterSong(ctx, title, artist, ytID, duration)
	if err != nil {
		return err
	}
	if err := store.StoreFingerprints(ctx, songID, landmarks); err != nil {
		return err
	}

	logging.Get().InfoContext(ctx, "indexed song",
		slog.String("title", title),
		slog.String("artist", artist),
		slog.Int("peaks", len(peaks)),
		slog.Int("landmarks", len(landmarks)),
	)
	fmt.Printf("✅ Indexed: %.2fs, %d peaks, %d fingerprints (song id %d)\n",
		duration, len(peaks), len(landmarks), songID)
	return nil
}

func runQuery(ctx context.Context, store db.Store, samples []float64) error {
	started := time.Now()
	peaks, landmarks := analyze(samples)
	duration := float64(len(samples)) / float64(core.SampleRate)

	matches, err := db.QueryStore(ctx, store, landmarks)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	session := models.QuerySession{
		ID:            uuid.NewString(),
		QueryDuration: duration,
		TotalPeaks:    len(peaks),
		TotalHashes:   len(landmarks),
		MatchFound:    len(matches) > 0,
		ProcessTimeMs: float64(elapsed.Microseconds()) / 1000,
	}

	fmt.Printf("\n📊 Processing Stats:\n")
	fmt.Printf("   Peaks extracted: %d\n", len(peaks))
	fmt.Printf("   Hashes generated: %d\n", len(landmarks))
	fmt.Printf("   Candidates evaluated: %d\n", len(matches))
	fmt.Printf("   Processing time: %v\n", elapsed)

	best := core.Best(matches)
	if core.IsNoMatch(best) {
		fmt.Println("\n🔇 No match found!")
		return store.RecordQuerySession(ctx, session)
	}

	songID, err := models.ParseSongID(best.ReferenceID)
	if err != nil {
		return err
	}
	song, err := store.GetSong(ctx, songID)
	if err != nil {
		return err
	}

	session.BestMatchID = &songID
	session.MatchScore = best.Score
	if err := store.RecordQuerySession(ctx, session); err != nil {
		return err
	}

	results := make([]models.QueryResult, 0, len(matches))
	for _, m := range matches {
		id, err := models.ParseSongID(m.ReferenceID)
		if err != nil {
			continue
		}
		results = append(results, models.QueryResult{
			SessionID:      session.ID,
			SongID:         id,
			MatchingHashes: m.Score,
			Confidence:     confidence(m.Score),
		})
	}
	if err := store.RecordQueryResults(ctx, results); err != nil {
		return err
	}

	fmt.Println("\n🎉 === MATCH FOUND ===")
	fmt.Printf("🎵 Song: %s\n", song.Title)
	fmt.Printf("🎤 Artist: %s\n", song.Artist)
	fmt.Printf("🔢 Score: %d\n", best.Score)
	renderConfidence(best.Score)

	if len(matches) > 1 {
		fmt.Println("\nOther candidates:")
		for _, m := range matches[1:] {
			if id, err := models.ParseSongID(m.ReferenceID); err == nil {
				if s, err := store.GetSong(ctx, id); err == nil {
					fmt.Printf("   %s by %s (score %d)\n", s.Title, s.Artist, m.Score)
					continue
				}
			}
			fmt.Printf("   %s (score %d)\n", m.ReferenceID, m.Score)
		}
	}
	return nil
}

func cmdIngest(ctx context.Context, store db.Store, cfg config.Config, url string) error {
	fmt.Printf("⬇️  Downloading from %s...\n", url)
	files, err := ingest.DownloadAudio(ctx, url, cfg.Ingest.DownloadDir)
	if err != nil {
		return err
	}
	fmt.Printf("📁 %d file(s) in %s\n", len(files), cfg.Ingest.DownloadDir)

	for _, path := range files {
		title, artist := ingest.TitleFromFilename(path)
		if err := indexFile(ctx, store, path, title, artist, ""); err != nil {
			// An already-indexed file is expected on playlist re-runs;
			// report and keep going rather than abort the batch.
			fmt.Printf("⚠️  Skipping %s: %v\n", filepath.Base(path), err)
		}
	}
	return nil
}

func cmdPeaks(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: soundmark peaks <file> <out.png>")
	}
	samples, err := fileformat.DecodeFile(args[0])
	if err != nil {
		return err
	}
	peaks := core.ExtractPeaks(core.Spectrogram(samples))
	if err := core.ConstellationImage(peaks, 1200, 600, args[1]); err != nil {
		return err
	}
	fmt.Printf("🌌 Wrote constellation of %d peaks to %s\n", len(peaks), args[1])
	return nil
}

func cmdList(ctx context.Context, store db.Store) error {
	songs, err := store.ListSongs(ctx)
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		fmt.Println("📭 No songs in database")
		return nil
	}

	fmt.Printf("\n🎵 Songs in Database (%d total):\n", len(songs))
	fmt.Println("═══════════════════════════════════════════════════════════════")
	for i, song := range songs {
		fmt.Printf("[%d] %s by %s\n", i+1, song.Title, song.Artist)
		fmt.Printf("    ⏱️  Duration: %.1fs\n", song.Duration)
		fmt.Printf("    📅 Added: %s\n", song.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func cmdClean(ctx context.Context, store db.Store) error {
	fmt.Println("⚠️  This will delete ALL songs and fingerprints from the database!")
	fmt.Print("Are you sure? (yes/no): ")

	var response string
	fmt.Scanln(&response)
	if !strings.EqualFold(response, "yes") {
		fmt.Println("🚫 Operation cancelled")
		return nil
	}

	songs, err := store.ListSongs(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("🧹 Cleaning %d songs...\n", len(songs))
	for i, song := range songs {
		if err := store.DeleteSong(ctx, song.ID); err != nil {
			fmt.Printf("❌ Error deleting song %d: %v\n", song.ID, err)
			continue
		}
		fmt.Printf("🗑️  Deleted [%d/%d]: %s by %s\n", i+1, len(songs), song.Title, song.Artist)
	}
	fmt.Println("✅ Database cleaned successfully!")
	return nil
}
