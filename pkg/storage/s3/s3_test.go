package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/munify/doc_vault/pkg/storage/errs"
)

// fakeS3 is a minimal path-style S3 endpoint keeping objects in memory.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := "/" + f.bucket + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, prefix)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.objects[key] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	fake := &fakeS3{bucket: "docs", objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := New(Config{
		Endpoint:  srv.URL,
		Region:    "ap-south-1",
		Bucket:    "docs",
		AccessKey: "test-access",
		SecretKey: "test-secret",
		PathStyle: true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewRequiresBucketAndCredentials(t *testing.T) {
	if _, err := New(Config{AccessKey: "a", SecretKey: "b"}); err == nil {
		t.Fatal("expected error without bucket")
	}
	if _, err := New(Config{Bucket: "docs"}); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	key := "org-1/Project/PROJ-1/Project Image/a.png"
	payload := []byte("\x89PNG fake image bytes")

	if err := s.PutObject(ctx, key, bytes.NewReader(payload), "image/png", int64(len(payload))); err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	rc, err := s.GetObject(ctx, key)
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: %q", got)
	}

	// Overwrite is allowed and replaces content.
	next := []byte("second version")
	if err := s.PutObject(ctx, key, bytes.NewReader(next), "image/png", int64(len(next))); err != nil {
		t.Fatalf("PutObject overwrite: %v", err)
	}
	rc2, err := s.GetObject(ctx, key)
	if err != nil {
		t.Fatalf("GetObject after overwrite: %v", err)
	}
	defer rc2.Close()
	got, _ = io.ReadAll(rc2)
	if !bytes.Equal(got, next) {
		t.Fatalf("expected overwritten content, got %q", got)
	}
}

func TestMissingObject(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.GetObject(ctx, "missing/key.pdf"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from GetObject, got %v", err)
	}
	if err := s.DeleteObject(ctx, "missing/key.pdf"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from DeleteObject, got %v", err)
	}
	exists, err := s.ObjectExists(ctx, "missing/key.pdf")
	if err != nil || exists {
		t.Fatalf("expected missing object, got exists=%v err=%v", exists, err)
	}
}

func TestDeleteObject(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	key := "org-1/KYC/PAN/pan.pdf"
	if err := s.PutObject(ctx, key, bytes.NewReader([]byte("%PDF")), "application/pdf", 4); err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if err := s.DeleteObject(ctx, key); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if exists, _ := s.ObjectExists(ctx, key); exists {
		t.Fatal("object still exists after delete")
	}
}

func TestPresignURL(t *testing.T) {
	s := newTestStorage(t)
	raw, err := s.PresignURL(context.Background(), "org-1/Project/PROJ-1/DPR/dpr.pdf", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "900" {
		t.Fatalf("expected X-Amz-Expires=900, got %q (%s)", got, raw)
	}
	if u.Query().Get("X-Amz-Signature") == "" {
		t.Fatalf("expected signature in %s", raw)
	}

	if _, err := s.PresignURL(context.Background(), "k", 8*24*time.Hour); err == nil {
		t.Fatal("expected error for expiry over 7 days")
	}
}
