package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubLimiter struct {
	allowed bool
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) {
	return s.allowed, s.err
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed request passes", func(t *testing.T) {
		r := guardedRouter(RateLimit(stubLimiter{allowed: true}))
		req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("throttled request gets 429", func(t *testing.T) {
		r := guardedRouter(RateLimit(stubLimiter{allowed: false}))
		req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", w.Code)
		}
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		r := guardedRouter(RateLimit(stubLimiter{err: errors.New("redis down")}))
		req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestSlidingWindowLimiter(t *testing.T) {
	t.Run("enforces the per-key limit", func(t *testing.T) {
		l := NewSlidingWindowLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			ok, err := l.Allow(context.Background(), "1.2.3.4")
			if err != nil || !ok {
				t.Fatalf("request %d should be allowed, ok=%v err=%v", i, ok, err)
			}
		}
		ok, _ := l.Allow(context.Background(), "1.2.3.4")
		if ok {
			t.Fatal("fourth request inside the window should be blocked")
		}

		ok, _ = l.Allow(context.Background(), "5.6.7.8")
		if !ok {
			t.Fatal("a different key must not share the budget")
		}
	})

	t.Run("window expiry frees the budget", func(t *testing.T) {
		l := NewSlidingWindowLimiter(1, 10*time.Millisecond)
		if ok, _ := l.Allow(context.Background(), "k"); !ok {
			t.Fatal("first request should pass")
		}
		if ok, _ := l.Allow(context.Background(), "k"); ok {
			t.Fatal("second request inside the window should be blocked")
		}
		time.Sleep(20 * time.Millisecond)
		if ok, _ := l.Allow(context.Background(), "k"); !ok {
			t.Fatal("request after the window should pass")
		}
	})
}
