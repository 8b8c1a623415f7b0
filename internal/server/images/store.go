// Package images serves the origin's static content with strong ETags.
package images

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/dmitrijs2005/dogwalk/internal/common"
)

type Image struct {
	Path        string
	ContentType string
	ETag        string
	Data        []byte
}

// Store keeps images in memory. Put replaces an image and so changes its
// ETag when the bytes change.
type Store struct {
	mu     sync.RWMutex
	images map[string]Image
}

func NewStore() *Store {
	return &Store{images: map[string]Image{}}
}

// ETag returns the quoted strong validator for data.
func ETag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func clean(p string) (string, bool) {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return "", false
	}
	return p, true
}

func (s *Store) Put(p string, contentType string, data []byte) (Image, error) {
	key, ok := clean(p)
	if !ok {
		return Image{}, fmt.Errorf("invalid image path %q", p)
	}
	img := Image{Path: key, ContentType: contentType, ETag: ETag(data), Data: append([]byte(nil), data...)}
	s.mu.Lock()
	s.images[key] = img
	s.mu.Unlock()
	return img, nil
}

// Get returns common.ErrorNotFound for unknown paths.
func (s *Store) Get(_ context.Context, p string) (Image, error) {
	key, ok := clean(p)
	if !ok {
		return Image{}, common.ErrorNotFound
	}
	s.mu.RLock()
	img, found := s.images[key]
	s.mu.RUnlock()
	if !found {
		return Image{}, common.ErrorNotFound
	}
	return img, nil
}

func (s *Store) Delete(p string) {
	if key, ok := clean(p); ok {
		s.mu.Lock()
		delete(s.images, key)
		s.mu.Unlock()
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// LoadDir adds every regular file under dir, keyed by its slash-separated
// path relative to dir. Hidden files are skipped.
func (s *Store) LoadDir(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if _, err := s.Put(filepath.ToSlash(rel), contentType(rel), data); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("failed to load images from %s: %w", dir, err)
	}
	return n, nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
