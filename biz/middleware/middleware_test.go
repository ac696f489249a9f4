package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/munify/doc_vault/pkg/common"
	"github.com/munify/doc_vault/pkg/config"
)

type recordingLocker struct {
	acquired []string
	released []string
	fail     bool
}

func (l *recordingLocker) Acquire(_ context.Context, resource string) (string, error) {
	if l.fail {
		return "", errors.New("busy")
	}
	l.acquired = append(l.acquired, resource)
	return "token-" + resource, nil
}

func (l *recordingLocker) Release(_ context.Context, resource, token string) error {
	l.released = append(l.released, resource+"/"+token)
	return nil
}

func TestAuthPropagatesIdentity(t *testing.T) {
	h := server.New()
	h.Use(Auth())
	var gotUser, gotOrg string
	h.GET("/whoami", func(ctx context.Context, c *app.RequestContext) {
		gotUser, _ = common.GetUserID(ctx)
		gotOrg = common.GetOrganizationID(ctx)
		c.Status(200)
	})

	ut.PerformRequest(h.Engine, "GET", "/whoami", nil,
		ut.Header{Key: HeaderUserID, Value: " user-1 "},
		ut.Header{Key: HeaderOrganizationID, Value: "org-1"})
	if gotUser != "user-1" || gotOrg != "org-1" {
		t.Fatalf("unexpected identity %q %q", gotUser, gotOrg)
	}
}

func TestRequireAuth(t *testing.T) {
	h := server.New()
	h.GET("/secure", RequireAuth(), func(ctx context.Context, c *app.RequestContext) {
		c.Status(200)
	})

	if got := ut.PerformRequest(h.Engine, "GET", "/secure", nil).Result().StatusCode(); got != 401 {
		t.Fatalf("expected 401 without header, got %d", got)
	}
	w := ut.PerformRequest(h.Engine, "GET", "/secure", nil, ut.Header{Key: HeaderUserID, Value: "user-1"})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("expected 200 with header, got %d", got)
	}
}

func TestFileWriteLock(t *testing.T) {
	t.Cleanup(func() { InitFileLock(nil) })

	InitFileLock(nil)
	if mw := FileWriteLockMw(); mw != nil {
		t.Fatal("expected no middleware when locking is disabled")
	}

	locker := &recordingLocker{}
	InitFileLock(locker)
	h := server.New()
	h.DELETE("/files/:id", append(FileWriteLockMw(), func(ctx context.Context, c *app.RequestContext) {
		c.Status(200)
	})...)

	if got := ut.PerformRequest(h.Engine, "DELETE", "/files/abc", nil).Result().StatusCode(); got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
	if len(locker.acquired) != 1 || locker.acquired[0] != "abc" || len(locker.released) != 1 || locker.released[0] != "abc/token-abc" {
		t.Fatalf("unexpected lock calls acquired=%v released=%v", locker.acquired, locker.released)
	}

	locker.fail = true
	if got := ut.PerformRequest(h.Engine, "DELETE", "/files/abc", nil).Result().StatusCode(); got != 503 {
		t.Fatalf("expected 503 when lock is busy, got %d", got)
	}
}

func TestRecoveryHidesPanic(t *testing.T) {
	h := server.New()
	h.Use(Recovery())
	h.GET("/boom", func(ctx context.Context, c *app.RequestContext) {
		panic("secret detail")
	})
	w := ut.PerformRequest(h.Engine, "GET", "/boom", nil)
	if w.Result().StatusCode() != 500 {
		t.Fatalf("expected 500, got %d", w.Result().StatusCode())
	}
	if body := string(w.Result().Body()); body == "" || strings.Contains(body, "secret detail") {
		t.Fatalf("panic detail leaked: %s", body)
	}
}

func TestCORSExposesDownloadHeaders(t *testing.T) {
	h := server.New()
	h.Use(CORS(&config.CORSConfig{AllowOrigin: "https://portal.example", MaxAge: 600}))
	ok := func(ctx context.Context, c *app.RequestContext) { c.String(200, "ok") }
	h.GET("/files", ok)
	h.OPTIONS("/files", ok)

	w := ut.PerformRequest(h.Engine, "GET", "/files", nil)
	resp := w.Result()
	if resp.StatusCode() != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode())
	}
	if got := string(resp.Header.Peek("Access-Control-Allow-Origin")); got != "https://portal.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	expose := string(resp.Header.Peek("Access-Control-Expose-Headers"))
	if !strings.Contains(expose, "Content-Disposition") || !strings.Contains(expose, "X-Checksum-Sha256") {
		t.Fatalf("download headers not exposed: %q", expose)
	}
	if got := string(resp.Header.Peek("Access-Control-Max-Age")); got != "" {
		t.Fatalf("max age belongs on preflight only, got %q", got)
	}

	w = ut.PerformRequest(h.Engine, "OPTIONS", "/files", nil)
	resp = w.Result()
	if resp.StatusCode() != 204 {
		t.Fatalf("preflight: expected 204, got %d", resp.StatusCode())
	}
	if got := string(resp.Header.Peek("Access-Control-Max-Age")); got != "600" {
		t.Fatalf("expected max age 600, got %q", got)
	}
	if got := string(resp.Header.Peek("Access-Control-Allow-Headers")); !strings.Contains(got, HeaderUserID) {
		t.Fatalf("preflight should allow %s, got %q", HeaderUserID, got)
	}
}
