package ingest

import (
	"os"
	"path/filepath"
	"sync"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindAlbumArt looks for album art in the same directory as the track.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// coverCache remembers the album art lookup per directory, since every
// track of an album shares it.
type coverCache struct {
	mu   sync.Mutex
	dirs map[string]string
}

func newCoverCache() *coverCache {
	return &coverCache{dirs: make(map[string]string)}
}

func (c *coverCache) find(trackPath string) string {
	dir := filepath.Dir(trackPath)

	c.mu.Lock()
	cover, ok := c.dirs[dir]
	c.mu.Unlock()
	if ok {
		return cover
	}

	cover = FindAlbumArt(trackPath)
	c.mu.Lock()
	c.dirs[dir] = cover
	c.mu.Unlock()
	return cover
}
