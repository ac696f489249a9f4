// Package local implements the local filesystem storage adapter.
// Objects are written under a base directory mirroring the key hierarchy.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/munify/doc_vault/pkg/storage/errs"
)

// DefaultBasePath is used when no base path is configured.
const DefaultBasePath = "storage"

// SignedPath is the API route serving locally signed downloads.
const SignedPath = "/api/v1/files/signed"

var ErrInvalidToken = errors.New("invalid or expired download token")

// Config holds local storage configuration.
type Config struct {
	BasePath   string
	SignSecret string
	PublicURL  string
}

// Storage implements the storage.Storage interface using local filesystem.
type Storage struct {
	basePath   string
	signSecret []byte
	publicURL  string
}

// New creates a new local storage adapter.
func New(cfg Config) (*Storage, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Storage{
		basePath:  abs,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}
	if cfg.SignSecret != "" {
		s.signSecret = []byte(cfg.SignSecret)
	}
	return s, nil
}

// PutObject writes a file to the local filesystem, replacing any existing file.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Write to a temp file first so a failed copy never leaves a truncated object.
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// GetObject reads a file from the local filesystem.
func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, key)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// DeleteObject removes a file from the local filesystem.
func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", errs.ErrNotFound, key)
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// ObjectExists checks if a file exists in the local filesystem.
func (s *Storage) ObjectExists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat file: %w", err)
	}
	return !info.IsDir(), nil
}

type downloadClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// PresignURL returns a locally signed download URL when a signing secret is
// configured. Without one, local storage cannot presign.
func (s *Storage) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if len(s.signSecret) == 0 {
		return "", errs.ErrPresignUnsupported
	}
	if _, err := s.keyToPath(key); err != nil {
		return "", err
	}

	now := time.Now()
	claims := downloadClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("expires", fmt.Sprintf("%d", int64(expiry.Seconds())))
	return s.publicURL + SignedPath + "?" + q.Encode(), nil
}

// VerifyToken validates a token produced by PresignURL and returns the object key.
func (s *Storage) VerifyToken(token string) (string, error) {
	if len(s.signSecret) == 0 {
		return "", errs.ErrPresignUnsupported
	}
	var claims downloadClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.signSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Key == "" {
		return "", ErrInvalidToken
	}
	return claims.Key, nil
}

// Type returns "local" as the storage type identifier.
func (s *Storage) Type() string {
	return "local"
}

// BasePath returns the base path of the storage.
func (s *Storage) BasePath() string {
	return s.basePath
}

// keyToPath converts an object key to a full filesystem path, refusing keys
// that would resolve outside the base directory.
func (s *Storage) keyToPath(key string) (string, error) {
	cleaned := strings.TrimPrefix(key, "/")
	if cleaned == "" {
		return "", fmt.Errorf("empty object key")
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(s.basePath, fullPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object key escapes storage root: %s", key)
	}
	return fullPath, nil
}
