package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func testLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    2,
		AuthRate:        1,
		AuthBurst:       1,
		CleanupInterval: time.Minute,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestAs(login string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/infectados/listar", nil)
	return req.WithContext(ContextWithLogin(req.Context(), login))
}

func TestGeneralMiddleware_AllowsWithinBurstThen429(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestAs("ana"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("ana"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if ra, err := strconv.Atoi(w.Header().Get("Retry-After")); err != nil || ra < 1 {
		t.Errorf("Retry-After = %q, want positive integer", w.Header().Get("Retry-After"))
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "RATE_LIMIT_EXCEEDED" || len(body.Errors) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestGeneralMiddleware_IndependentPerLogin(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestAs("ana"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("bia"))
	if w.Code != http.StatusOK {
		t.Errorf("other login status = %d, want 200", w.Code)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestGeneralMiddleware_WithoutLogin_Returns401(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()

	w := httptest.NewRecorder()
	rl.GeneralMiddleware()(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_LimitsPerClientIP(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()
	handler := rl.AuthMiddleware()(okHandler())

	newReq := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/usuario/autenticar", nil)
		req.RemoteAddr = addr
		return req
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("10.0.0.1:5000"))
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w.Code)
	}

	// 同一IPの別ポートは同じクライアントとして扱う
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("10.0.0.1:5001"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("same IP status = %d, want 429", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("10.0.0.2:5000"))
	if w.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", w.Code)
	}
	if rl.AuthLimiterCount() != 2 {
		t.Errorf("AuthLimiterCount = %d, want 2", rl.AuthLimiterCount())
	}
}

func TestRateLimiter_CleanupEvictsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()

	rl.GeneralMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), requestAs("ana"))
	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("GeneralLimiterCount = %d, want 1", rl.GeneralLimiterCount())
	}

	rl.cleanup(time.Now())
	if rl.GeneralLimiterCount() != 1 {
		t.Errorf("recent entry evicted too early")
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("GeneralLimiterCount = %d, want 0 after cleanup", rl.GeneralLimiterCount())
	}
}

func TestNewRateLimiterConfig(t *testing.T) {
	cfg := NewRateLimiterConfig(120, 10)

	if float64(cfg.GeneralRate) != 2 {
		t.Errorf("GeneralRate = %v, want 2", cfg.GeneralRate)
	}
	if cfg.GeneralBurst != 120 || cfg.AuthBurst != 10 {
		t.Errorf("bursts = %d/%d, want 120/10", cfg.GeneralBurst, cfg.AuthBurst)
	}

	zero := NewRateLimiterConfig(0, 0)
	if zero.GeneralBurst != 1 || zero.AuthBurst != 1 {
		t.Errorf("zero bursts = %d/%d, want 1/1", zero.GeneralBurst, zero.AuthBurst)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	rl.Stop()
	rl.Stop()
}
