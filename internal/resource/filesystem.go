package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"jasypt-go/internal/jasypt"
)

// FileSystemLoader loads plain paths, "file:" locations and "classpath:"
// locations. Classpath locations are looked up in each search dir in order.
type FileSystemLoader struct {
	classpathDirs []string
}

var _ jasypt.ResourceLoader = (*FileSystemLoader)(nil)

// NewFileSystemLoader creates a loader with the given classpath search dirs.
func NewFileSystemLoader(classpathDirs []string) *FileSystemLoader {
	return &FileSystemLoader{classpathDirs: append([]string(nil), classpathDirs...)}
}

// Load reads the file named by location.
func (l *FileSystemLoader) Load(_ context.Context, location string) ([]byte, error) {
	scheme, path := splitScheme(location)
	switch scheme {
	case "", schemeFile:
		return readFile(path)
	case schemeClasspath:
		return l.loadClasspath(path)
	default:
		return nil, fmt.Errorf("filesystem loader cannot load %q", location)
	}
}

func (l *FileSystemLoader) loadClasspath(name string) ([]byte, error) {
	name = strings.TrimLeft(name, "/")
	for _, dir := range l.classpathDirs {
		data, err := readFile(filepath.Join(dir, name))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return data, err
	}
	return nil, fmt.Errorf("%w: classpath:%s (searched %d dirs)", ErrNotFound, name, len(l.classpathDirs))
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read resource: %w", err)
	}
	return data, nil
}
