// Package ingest pulls reference audio from remote sources (YouTube
// videos and playlists) and normalizes it to the canonical format during
// download, so indexing never has to resample.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"soundmark/core"
	"soundmark/utils"
)

// DownloadAudio fetches a YouTube video or playlist URL into dir as mono
// WAV files at core.SampleRate, downsampling during extraction rather
// than after. It returns the paths of every WAV file in dir afterwards,
// including ones from earlier downloads, mirroring how the playlist
// indexer treats the download directory as its working set.
func DownloadAudio(ctx context.Context, url, dir string) ([]string, error) {
	if err := utils.CreateFolder(dir); err != nil {
		return nil, fmt.Errorf("ingest: creating download dir: %w", err)
	}

	if _, err := ytdlp.Install(ctx, &ytdlp.InstallOptions{}); err != nil {
		return nil, fmt.Errorf("ingest: installing yt-dlp: %w", err)
	}

	dl := ytdlp.New().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("wav").
		PostProcessorArgs(fmt.Sprintf("ffmpeg:-ar %d -ac 1", core.SampleRate)).
		Output(filepath.Join(dir, "%(title)s.%(ext)s"))

	if _, err := dl.Run(ctx, url); err != nil {
		return nil, fmt.Errorf("ingest: downloading %s: %w", url, err)
	}

	return listWAVFiles(dir)
}

func listWAVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: listing %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// TitleFromFilename derives a song title and artist from a downloaded
// file's name: "Artist - Title.wav" splits on the first dash, anything
// else becomes the title with an unknown artist.
func TitleFromFilename(path string) (title, artist string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.SplitN(name, "-", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
	}
	return strings.TrimSpace(name), "Unknown Artist"
}
