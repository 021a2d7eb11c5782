// Package media stores uploaded images and hands back their public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the route the stored files are served under.
const URLPrefix = "/media"

var ErrUnsupportedType = errors.New("media: unsupported file type")

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Storage saves a blob and returns the URL it can be fetched from. Delete
// removes a blob by the URL Save returned.
type Storage interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// LocalStorage writes files below Dir and serves them from BaseURL/media.
type LocalStorage struct {
	Dir     string
	BaseURL string
}

// Save stores r under folder with a fresh uuid name that keeps the original
// extension. Only image extensions are accepted.
func (s LocalStorage) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	folder = strings.Trim(filepath.Clean("/"+folder), "/")

	// 1. Make sure the folder exists
	dir := filepath.Join(s.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: create folder: %w", err)
	}

	// 2. Write under a unique name
	name := uuid.New().String() + ext
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("media: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("media: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("media: close file: %w", err)
	}

	// 3. Public URL
	path := URLPrefix + "/" + name
	if folder != "" {
		path = URLPrefix + "/" + filepath.ToSlash(folder) + "/" + name
	}
	return strings.TrimRight(s.BaseURL, "/") + path, nil
}

// Delete removes the file behind url. A file that is already gone is not an
// error; a URL outside this storage is.
func (s LocalStorage) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := strings.TrimPrefix(url, strings.TrimRight(s.BaseURL, "/"))
	rel, ok := strings.CutPrefix(path, URLPrefix+"/")
	if !ok || rel == "" {
		return fmt.Errorf("media: %q is not a stored file", url)
	}
	rel = strings.Trim(filepath.Clean("/"+filepath.FromSlash(rel)), string(filepath.Separator))
	if rel == "" {
		return fmt.Errorf("media: %q is not a stored file", url)
	}

	err := os.Remove(filepath.Join(s.Dir, rel))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("media: remove file: %w", err)
	}
	return nil
}
