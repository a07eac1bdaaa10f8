package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Supported file extensions.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

// IsMusicFile reports whether path has a supported audio extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtM4A, ExtMP4:
		return true
	}
	return false
}

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path   string
	source string // source path this file belongs to
}

// discoverFiles walks the given source directories and returns all music
// files found. Unreadable entries are logged and skipped.
func discoverFiles(ctx context.Context, sources []string, log *zap.Logger) ([]fileInfo, error) {
	var files []fileInfo
	for _, src := range sources {
		err := filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				log.Warn("skipping unreadable path", zap.String("path", path), zap.Error(walkErr))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !IsMusicFile(path) {
				return nil
			}
			files = append(files, fileInfo{path: path, source: src})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
