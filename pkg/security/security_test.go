package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	r := newRouter(RateLimiter(3, time.Minute))

	for i := 0; i < 3; i++ {
		if w := get(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, w.Code)
		}
	}
	if w := get(r, nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("4th request status = %d, want 429", w.Code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newRouter(RateLimiter(0, time.Minute))
	for i := 0; i < 20; i++ {
		if w := get(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, w.Code)
		}
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowLocalhost bool
		origin         string
		wantStatus     int
		wantAllowed    bool
	}{
		{"whitelisted", false, "https://app.example.com", http.StatusOK, true},
		{"unknown origin", false, "https://evil.example.com", http.StatusForbidden, false},
		{"localhost in debug", true, "http://localhost:3000", http.StatusOK, true},
		{"localhost in release", false, "http://localhost:3000", http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(CORS([]string{"https://app.example.com/"}, tt.allowLocalhost))
			w := get(r, map[string]string{"Origin": tt.origin})
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			got := w.Header().Get("Access-Control-Allow-Origin") == tt.origin
			if got != tt.wantAllowed {
				t.Errorf("allow origin header = %q", w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestSecureHeaders(t *testing.T) {
	w := get(newRouter(Secure()), nil)
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must only be sent over TLS")
	}
}
