package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

// FileStore persists objects onto the local filesystem and issues
// HMAC-signed expiring download links served back through the API. It
// stands in for an object storage service in development and test
// environments.
type FileStore struct {
	basePath string
	baseURL  string
	secret   []byte
}

// NewFileStore initializes a FileStore rooted at basePath. baseURL is
// the public prefix under which signed links are served; secret signs
// them.
func NewFileStore(basePath, baseURL string, secret []byte) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if len(secret) == 0 {
		return nil, errors.New("storage: signing secret is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   secret,
	}, nil
}

// Upload persists the provided bytes at the given key. Keys are cleaned
// to prevent directory traversal.
func (s *FileStore) Upload(ctx context.Context, data []byte, key, contentType string, metadata map[string]string) (UploadInfo, error) {
	if err := ctx.Err(); err != nil {
		return UploadInfo{}, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return UploadInfo{}, err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return UploadInfo{}, fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return UploadInfo{}, fmt.Errorf("storage: write object: %w", err)
	}
	return UploadInfo{
		Key:  cleanKey,
		URL:  s.baseURL + "/" + cleanKey,
		Size: int64(len(data)),
	}, nil
}

// SignedURL returns a time-bounded download link for key. The signature
// covers the key and expiry so the link cannot be rewritten.
func (s *FileStore) SignedURL(key string, ttl time.Duration) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(ttl).Unix()
	sig := s.sign(cleanKey, expires)
	return fmt.Sprintf("%s/%s?expires=%d&signature=%s", s.baseURL, cleanKey, expires, url.QueryEscape(sig)), nil
}

// VerifySignature checks a signed link's key, expiry and signature.
func (s *FileStore) VerifySignature(key string, expires int64, signature string) bool {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return false
	}
	if time.Now().Unix() > expires {
		return false
	}
	expected := s.sign(cleanKey, expires)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Delete removes the object. Returns false without error when the
// object does not exist.
func (s *FileStore) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return false, err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: delete object: %w", err)
	}
	return true, nil
}

// List walks the objects under prefix, returning forward-slash keys.
func (s *FileStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanPrefix, err := sanitizeKey(prefix)
	if err != nil {
		return nil, err
	}
	root := filepath.Join(s.basePath, filepath.FromSlash(cleanPrefix))
	var entries []Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Key:  filepath.ToSlash(rel),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list prefix: %w", err)
	}
	return entries, nil
}

// Read returns the object's bytes.
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(cleanKey)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: object %s", domain.ErrNotFound, cleanKey)
		}
		return nil, fmt.Errorf("storage: read object: %w", err)
	}
	return data, nil
}

func (s *FileStore) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(key))
	mac.Write([]byte{'|'})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

var _ ObjectStore = (*FileStore)(nil)
