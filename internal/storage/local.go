package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage implements Storage on the local filesystem. Metadata is
// kept next to each file with a .meta suffix.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Put writes content and, when given, its metadata. Checksum and size are
// filled in from content.
func (s *LocalStorage) Put(ctx context.Context, key string, content []byte, metadata *Metadata) error {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", key, err)
	}

	if metadata == nil {
		return nil
	}
	meta := *metadata
	meta.Checksum = ComputeChecksum(content)
	meta.Size = int64(len(content))
	if meta.UploadedAt.IsZero() {
		meta.UploadedAt = time.Now().UTC()
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(fullPath+".meta", metaBytes, 0644); err != nil {
		return fmt.Errorf("failed to write metadata for %s: %w", key, err)
	}
	return nil
}

// Get reads the content stored at key
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", key, err)
	}
	return content, nil
}

// Stat returns the metadata for key. Files stored without metadata get one
// built from the filesystem.
func (s *LocalStorage) Stat(ctx context.Context, key string) (*Metadata, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", key, err)
	}

	if metaBytes, err := os.ReadFile(fullPath + ".meta"); err == nil {
		var meta Metadata
		if err := json.Unmarshal(metaBytes, &meta); err == nil {
			return &meta, nil
		}
	}
	return &Metadata{
		OriginalName: path.Base(key),
		Size:         info.Size(),
		UploadedAt:   info.ModTime().UTC(),
	}, nil
}

// Delete removes the file and its metadata. Missing files are not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}
	_ = os.Remove(fullPath + ".meta")
	return nil
}

// keyToPath maps a key under the base path and rejects keys that would
// escape it
func (s *LocalStorage) keyToPath(key string) (string, error) {
	cleanKey := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	if cleanKey == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(strings.TrimPrefix(cleanKey, "/"))), nil
}

// ComputeChecksum computes SHA256 checksum for content
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// UploadKey builds the key an import's upload is stored under
func UploadKey(supplierID, importID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "catalog"
	}
	return fmt.Sprintf("uploads/%s/%s/%s", supplierID, importID, name)
}
