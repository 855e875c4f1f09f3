package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tendant/ngo-content/pkg/ngocontent"
	"github.com/tendant/ngo-content/pkg/ngocontent/storage"
)

// Backend is a filesystem implementation of the ngocontent.BlobStore interface
type Backend struct {
	baseDir  string
	locators storage.Locators
}

// Name identifies the backend in storage errors
func (b *Backend) Name() string { return "fs" }

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
	BaseURL string // Public URL the base directory is served under
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("base url is required")
	}

	locators, err := storage.NewLocators(config.BaseURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:  filepath.Clean(config.BaseDir),
		locators: locators,
	}, nil
}

var _ ngocontent.BlobStore = (*Backend)(nil)

// Save writes the content to a file named after name. The file is written
// to a temporary path first so a failed copy never leaves a partial image.
func (b *Backend) Save(ctx context.Context, name string, reader io.Reader, contentType string) (string, error) {
	if name == "" {
		return "", errors.New("object name is required")
	}
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(name))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return "", fmt.Errorf("failed to move file: %w", err)
	}

	return b.locators.Locator(name), nil
}

// Delete deletes the file behind locator. A missing file reports false.
func (b *Backend) Delete(ctx context.Context, locator string) (bool, error) {
	key, err := b.locators.Key(locator)
	if err != nil {
		return false, err
	}
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(key))

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return true, nil
}

// Handler serves stored images. Mount it under the path of the base url.
// Directories and dot files, in-flight uploads included, are not served.
func (b *Backend) Handler() http.Handler {
	files := http.FileServer(http.Dir(b.baseDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !b.servable(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func (b *Backend) servable(urlPath string) bool {
	if urlPath == "" || strings.HasSuffix(urlPath, "/") {
		return false
	}
	hidden := func(segment string) bool { return strings.HasPrefix(segment, ".") }
	if slices.ContainsFunc(strings.Split(urlPath, "/"), hidden) {
		return false
	}
	info, err := os.Stat(filepath.Join(b.baseDir, filepath.FromSlash(path.Clean("/"+urlPath))))
	return err == nil && info.Mode().IsRegular()
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
