package middlewares_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventsapi/middlewares"
	"eventsapi/utils"
)

func cacheServer(t *testing.T) (*gin.Engine, *redis.Client, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hits := 0
	s := gin.New()
	s.Use(middlewares.ResponseCache(rdb, 30*time.Second))
	s.GET("/public-events/get-all-events", func(c *gin.Context) {
		hits++
		c.JSON(200, gin.H{"events": []string{}})
	})
	s.GET("/events/get-event-by-id/:id", func(c *gin.Context) {
		c.JSON(200, gin.H{"id": c.Param("id")})
	})
	return s, rdb, &hits
}

func TestResponseCache_MissThenHit(t *testing.T) {
	s, _, hits := cacheServer(t)

	w1 := httptest.NewRecorder()
	s.ServeHTTP(w1, httptest.NewRequest("GET", "/public-events/get-all-events", nil))
	if w1.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("want MISS, got %q", w1.Header().Get("X-Cache"))
	}

	w2 := httptest.NewRecorder()
	s.ServeHTTP(w2, httptest.NewRequest("GET", "/public-events/get-all-events", nil))
	if w2.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("want HIT, got %q", w2.Header().Get("X-Cache"))
	}
	if *hits != 1 {
		t.Fatalf("handler ran %d times, want 1", *hits)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("cached body differs")
	}
}

func TestResponseCache_OnlyPublicEventsCached(t *testing.T) {
	s, _, _ := cacheServer(t)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/events/get-event-by-id/e1", nil))
	if got := w.Header().Get("X-Cache"); got != "" {
		t.Fatalf("authenticated route cached: %q", got)
	}
}

func TestResponseCache_InvalidatorPurges(t *testing.T) {
	s, rdb, hits := cacheServer(t)
	inv := utils.NewCacheInvalidator(rdb)

	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/public-events/get-all-events", nil))
	inv.PurgeEvents(t.Context())
	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/public-events/get-all-events", nil))

	if *hits != 2 {
		t.Fatalf("handler ran %d times after purge, want 2", *hits)
	}
}
