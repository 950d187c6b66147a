package middlewares_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"eventsapi/middlewares"
)

func TestRateLimiter_BurstThenReject(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     1,
		Burst:   2,
		IdleTTL: time.Minute,
	})

	s := gin.New()
	s.Use(rl.Middleware(func(c *gin.Context) string { return "fixed" }))
	s.GET("/ping", func(c *gin.Context) { c.Status(200) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != 200 || codes[1] != 200 {
		t.Fatalf("burst requests rejected: %v", codes)
	}
	if codes[2] != 429 {
		t.Fatalf("third request got %d, want 429", codes[2])
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     1,
		Burst:   1,
		IdleTTL: time.Minute,
	})

	s := gin.New()
	s.Use(rl.Middleware(func(c *gin.Context) string { return c.Query("k") }))
	s.GET("/ping", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/ping?k=a", nil))
	if w.Code != 200 {
		t.Fatalf("first key got %d", w.Code)
	}

	// a's bucket is drained, b's is untouched
	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/ping?k=a", nil))
	if w.Code != 429 {
		t.Fatalf("drained key got %d", w.Code)
	}
	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/ping?k=b", nil))
	if w.Code != 200 {
		t.Fatalf("fresh key got %d", w.Code)
	}
}
