// Package utils holds the small environment, identifier, and filesystem
// helpers shared by the CLI and the collaborator packages.
package utils

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"strings"
	"time"
)

// GetEnv returns the value of the named environment variable, or fallback
// if it is unset or empty.
func GetEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GenerateUniqueID produces a reference id candidate for a newly indexed
// song: the current Unix timestamp XORed with 4 random bytes, so
// concurrent ingests started in the same second still diverge.
func GenerateUniqueID() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("utils: failed to read random bytes: " + err.Error())
	}
	timestamp := uint32(time.Now().Unix())
	random := binary.LittleEndian.Uint32(b[:])
	return timestamp ^ random
}

// GenerateSongKey normalizes a title and artist into a stable, URL-safe
// lookup key, used as the database's unique constraint so the same song
// can't be indexed twice under two different ids.
func GenerateSongKey(title, artist string) string {
	key := strings.ToLower(strings.TrimSpace(title + "-" + artist))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "'", "")
	key = strings.ReplaceAll(key, "\"", "")
	key = strings.ReplaceAll(key, "&", "and")
	return key
}

// CreateFolder creates dir and any missing parents if it doesn't already
// exist.
func CreateFolder(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// DeleteFile removes path, treating a missing file as success since the
// caller is cleaning up a temporary artifact it may have already removed.
func DeleteFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
