package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileSource reads records stored as JSON files matched by glob patterns,
// such as "records/**/*.json".
type FileSource struct {
	patterns []string
}

// NewFileSource creates a FileSource for the given patterns.
func NewFileSource(patterns []string) *FileSource {
	return &FileSource{patterns: patterns}
}

// Patterns returns the glob patterns.
func (s *FileSource) Patterns() []string {
	return s.patterns
}

// Paths returns all files matching any pattern, sorted and without
// duplicates.
func (s *FileSource) Paths() ([]string, error) {
	var paths []string
	for _, pattern := range s.patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// Matches reports whether path matches one of the patterns.
func (s *FileSource) Matches(path string) bool {
	for _, pattern := range s.patterns {
		if ok, _ := doublestar.PathMatch(filepath.Clean(pattern), filepath.Clean(path)); ok {
			return true
		}
	}
	return false
}

// Dirs returns the static base directory of each pattern.
func (s *FileSource) Dirs() []string {
	var dirs []string
	for _, pattern := range s.patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		dirs = append(dirs, filepath.FromSlash(base))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// FetchRecord finds the record with the given id. Files named {id}.json are
// tried first, then every matching file is read.
func (s *FileSource) FetchRecord(ctx context.Context, id string) (*Record, error) {
	paths, err := s.Paths()
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)

	for _, path := range paths {
		if strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) == id {
			return ReadRecordFile(path)
		}
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := ReadRecordFile(path)
		if err != nil {
			continue
		}
		if rec.ID.String() == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
}

// ReadRecordFile reads a record from a JSON file.
func ReadRecordFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rec, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}
