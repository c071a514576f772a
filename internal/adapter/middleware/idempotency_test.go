package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const testReqID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// countingHandler answers 200 with a fixed JSON body and counts calls.
func countingHandler(calls *int) echo.HandlerFunc {
	return func(c echo.Context) error {
		*calls++
		return c.JSON(http.StatusOK, map[string]string{"result": "ok", "n": strconv.Itoa(*calls)})
	}
}

func doIdempotent(t *testing.T, e *echo.Echo, mw echo.MiddlewareFunc, h echo.HandlerFunc, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Ax-Request-Id", testReqID)
	req.Header.Set("Ax-Request-At", strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set("Ax-User-Handle", "alice")
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/loans")
	if err := mw(h)(c); err != nil {
		t.Fatalf("middleware returned unhandled error: %v", err)
	}
	return rec
}

func TestIdempotency_ReplaysFinishedResponse(t *testing.T) {
	e := echo.New()
	rdb := newTestRedis(t)
	mw := Idempotency(rdb, 5*time.Minute)

	calls := 0
	h := countingHandler(&calls)

	first := doIdempotent(t, e, mw, h, `{"x":1}`, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, body = %s", first.Code, first.Body.String())
	}
	second := doIdempotent(t, e, mw, h, `{"x":1}`, nil)
	if second.Code != http.StatusOK {
		t.Fatalf("replay status = %d, body = %s", second.Code, second.Body.String())
	}

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotency_BodyMismatchConflicts(t *testing.T) {
	e := echo.New()
	rdb := newTestRedis(t)
	mw := Idempotency(rdb, 5*time.Minute)

	calls := 0
	h := countingHandler(&calls)

	if rec := doIdempotent(t, e, mw, h, `{"x":1}`, nil); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := doIdempotent(t, e, mw, h, `{"x":2}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	e := echo.New()
	rdb := newTestRedis(t)
	mw := Idempotency(rdb, 5*time.Minute)

	// seed a provisional lock as if a first request were still running
	entry := idempEntry{InProgress: true, BodySHA256: bodyHash([]byte(`{"x":1}`)), RequestID: testReqID, CreatedAt: nowUTC()}
	key := buildKey("POST", "/loans", "alice", testReqID)
	ok, err := provisionalSet(context.Background(), rdb, key, entry)
	if err != nil || !ok {
		t.Fatalf("seed lock: %v / %v", ok, err)
	}

	calls := 0
	rec := doIdempotent(t, e, mw, countingHandler(&calls), `{"x":1}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}
	if calls != 0 {
		t.Fatalf("handler ran %d times, want 0", calls)
	}
}

func TestIdempotency_HeaderValidation(t *testing.T) {
	e := echo.New()
	rdb := newTestRedis(t)
	mw := Idempotency(rdb, 5*time.Minute)

	calls := 0
	h := countingHandler(&calls)

	cases := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{"missing request id", func(r *http.Request) { r.Header.Del("Ax-Request-Id") }},
		{"malformed request id", func(r *http.Request) { r.Header.Set("Ax-Request-Id", "not-an-id") }},
		{"missing request at", func(r *http.Request) { r.Header.Del("Ax-Request-At") }},
		{"skewed request at", func(r *http.Request) {
			r.Header.Set("Ax-Request-At", strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10))
		}},
		{"naive timestamp", func(r *http.Request) { r.Header.Set("Ax-Request-At", "2025-01-06 12:00:00") }},
		{"missing user handle", func(r *http.Request) { r.Header.Del("Ax-User-Handle") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doIdempotent(t, e, mw, h, `{"x":1}`, tc.mutate)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}
		})
	}
	if calls != 0 {
		t.Fatalf("handler ran %d times, want 0", calls)
	}
}

func TestIdempotency_GetPassesThrough(t *testing.T) {
	e := echo.New()
	rdb := newTestRedis(t)
	mw := Idempotency(rdb, 5*time.Minute)

	calls := 0
	req := httptest.NewRequest(http.MethodGet, "/loans", nil) // no idempotency headers at all
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(countingHandler(&calls))(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("status = %d, calls = %d", rec.Code, calls)
	}
}
