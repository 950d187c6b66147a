package middlewares_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"eventsapi/middlewares"
	"eventsapi/mocks"
)

func authServer(sessions *mocks.MockSessionRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := gin.New()
	s.Use(middlewares.Authenticate(sessions))
	s.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"username": c.GetString("username")})
	})
	return s
}

func TestAuthenticate_MissingHeaders(t *testing.T) {
	s := authServer(&mocks.MockSessionRepo{Sessions: map[string]string{}})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	if w.Code != 401 {
		t.Fatalf("no headers got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(middlewares.HeaderAuthUser, "alice")
	s.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("missing token got %d", w.Code)
	}
}

func TestAuthenticate_NoSessionOrWrongToken(t *testing.T) {
	sessions := &mocks.MockSessionRepo{Sessions: map[string]string{"alice": "good"}}
	s := authServer(sessions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(middlewares.HeaderAuthUser, "bob")
	req.Header.Set(middlewares.HeaderAuthToken, "good")
	s.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("no session got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(middlewares.HeaderAuthUser, "alice")
	req.Header.Set(middlewares.HeaderAuthToken, "bad")
	s.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("wrong token got %d", w.Code)
	}
}

func TestAuthenticate_OKSetsUsername(t *testing.T) {
	sessions := &mocks.MockSessionRepo{Sessions: map[string]string{"alice": "good"}}
	s := authServer(sessions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(middlewares.HeaderAuthUser, "alice")
	req.Header.Set(middlewares.HeaderAuthToken, "good")
	s.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("valid session got %d", w.Code)
	}
	if want := `"username":"alice"`; !strings.Contains(w.Body.String(), want) {
		t.Fatalf("context username missing: %s", w.Body.String())
	}
}
