package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eventsapi/config"
	"eventsapi/middlewares"
	"eventsapi/mocks"
	"eventsapi/models"
	"eventsapi/routes"
	"eventsapi/utils"
)

/* ---------- helpers ---------- */

type serverDeps struct {
	s  *gin.Engine
	ur *mocks.MockUserRepo
	sr *mocks.MockSessionRepo
	er *mocks.MockEventRepo
	mr *mocks.MockMembershipRepo
	ir *mocks.MockImageStore
}

func setupServer(t *testing.T) serverDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	red := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: red.Addr()})
	inv := utils.NewCacheInvalidator(rdb)

	ur := &mocks.MockUserRepo{Users: map[string]models.User{}}
	sr := &mocks.MockSessionRepo{Sessions: map[string]string{}}
	er := &mocks.MockEventRepo{Items: map[string]models.Event{}}
	mr := &mocks.MockMembershipRepo{}
	ir := &mocks.MockImageStore{Objects: map[string]string{}}

	cfg := &config.Config{TokenSecret: "test-secret"}

	s := gin.New()
	routes.RegisterRoutes(s, cfg, ur, sr, er, mr, ir, rdb, inv, zerolog.Nop())
	return serverDeps{s: s, ur: ur, sr: sr, er: er, mr: mr, ir: ir}
}

func doReq(s *gin.Engine, method, path, body, username, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set(middlewares.HeaderAuthUser, username)
		req.Header.Set(middlewares.HeaderAuthToken, token)
	}
	s.ServeHTTP(w, req)
	return w
}

// seedSession bypasses login so protected routes can be exercised directly.
func seedSession(d serverDeps, username string) string {
	token := "tok-" + username
	d.sr.Sessions[username] = token
	return token
}

func seedUser(d serverDeps, username, password string) {
	d.ur.Users[username] = models.User{Username: username, Password: password, CreatedEvents: []string{}}
}

/* ---------- create-user ---------- */

func TestCreateUser_OKThenConflict(t *testing.T) {
	d := setupServer(t)

	w := doReq(d.s, http.MethodPost, "/users/create-user",
		`{"username":"alice","password":"p"}`, "", "")
	if w.Code != 200 {
		t.Fatalf("create got %d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["username"] != "alice" {
		t.Fatalf("want username alice, got %q", resp["username"])
	}

	original := d.ur.Users["alice"]

	w = doReq(d.s, http.MethodPost, "/users/create-user",
		`{"username":"alice","password":"other"}`, "", "")
	if w.Code != 409 {
		t.Fatalf("duplicate got %d", w.Code)
	}
	var errResp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if errResp["error"] != "User 'alice' already exists" {
		t.Fatalf("unexpected error message %q", errResp["error"])
	}
	if d.ur.Users["alice"].Password != original.Password {
		t.Fatalf("original record changed by failed create")
	}
}

func TestCreateUser_MissingFields(t *testing.T) {
	d := setupServer(t)

	w := doReq(d.s, http.MethodPost, "/users/create-user", `{"username":"alice"}`, "", "")
	if w.Code != 400 {
		t.Fatalf("missing password got %d", w.Code)
	}
}

func TestCreateUser_WithImage(t *testing.T) {
	d := setupServer(t)

	body := `{"username":"alice","password":"p","image":"data:image/png;base64,aGVsbG8="}`
	w := doReq(d.s, http.MethodPost, "/users/create-user", body, "", "")
	if w.Code != 200 {
		t.Fatalf("create got %d body=%s", w.Code, w.Body.String())
	}
	if _, ok := d.ir.Objects["alice"]; !ok {
		t.Fatalf("image not stored")
	}
}

/* ---------- login / logout / sessions ---------- */

func TestLogin_NeverExposesPassword(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")

	w := doReq(d.s, http.MethodPost, "/users/login", `{"username":"alice","password":"p"}`, "", "")
	if w.Code != 200 {
		t.Fatalf("login got %d body=%s", w.Code, w.Body.String())
	}
	var loginResp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	token := loginResp["token"]
	if token == "" {
		t.Fatalf("no token in login response")
	}

	w = doReq(d.s, http.MethodGet, "/users/get-user-by-username/alice", "", "alice", token)
	if w.Code != 200 {
		t.Fatalf("get-user got %d body=%s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), `"password"`) {
		t.Fatalf("password leaked: %s", w.Body.String())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")

	if w := doReq(d.s, http.MethodPost, "/users/login", `{"username":"alice","password":"wrong"}`, "", ""); w.Code != 401 {
		t.Fatalf("wrong password got %d", w.Code)
	}
	if w := doReq(d.s, http.MethodPost, "/users/login", `{"username":"nobody","password":"p"}`, "", ""); w.Code != 401 {
		t.Fatalf("unknown user got %d", w.Code)
	}
}

func TestLogin_SecondLoginRevokesFirstToken(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")

	login := func() string {
		w := doReq(d.s, http.MethodPost, "/users/login", `{"username":"alice","password":"p"}`, "", "")
		if w.Code != 200 {
			t.Fatalf("login got %d", w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return resp["token"]
	}

	first := login()
	second := login()
	if first == second {
		t.Fatalf("two logins produced the same token")
	}

	if w := doReq(d.s, http.MethodGet, "/users/get-user-by-username/alice", "", "alice", first); w.Code != 401 {
		t.Fatalf("stale token got %d, want 401", w.Code)
	}
	if w := doReq(d.s, http.MethodGet, "/users/get-user-by-username/alice", "", "alice", second); w.Code != 200 {
		t.Fatalf("fresh token got %d, want 200", w.Code)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")
	token := seedSession(d, "alice")

	// logging out a user with no session still returns 200
	if w := doReq(d.s, http.MethodPost, "/users/logout", `{"username":"bob"}`, "alice", token); w.Code != 200 {
		t.Fatalf("logout without session got %d", w.Code)
	}

	w := doReq(d.s, http.MethodPost, "/users/logout", `{"username":"alice"}`, "alice", token)
	if w.Code != 200 {
		t.Fatalf("logout got %d", w.Code)
	}

	// token is gone now, so a repeat logout cannot authenticate
	if w := doReq(d.s, http.MethodGet, "/users/get-user-by-username/alice", "", "alice", token); w.Code != 401 {
		t.Fatalf("after logout got %d, want 401", w.Code)
	}
}

/* ---------- get / update / delete ---------- */

func TestGetUser_NotFound(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")
	token := seedSession(d, "alice")

	w := doReq(d.s, http.MethodGet, "/users/get-user-by-username/bob", "", "alice", token)
	if w.Code != 404 {
		t.Fatalf("got %d, want 404", w.Code)
	}
}

func TestGetUser_IncludesMemberships(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")
	token := seedSession(d, "alice")
	d.er.Items["e1"] = models.Event{ID: "e1", Creator: "alice"}
	_ = d.mr.Add("alice", "e1")
	_ = d.ur.AddCreatedEvent("alice", "e1")

	w := doReq(d.s, http.MethodGet, "/users/get-user-by-username/alice", "", "alice", token)
	if w.Code != 200 {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}
	var u models.User
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(u.AttendingEvents) != 1 || u.AttendingEvents[0] != "e1" {
		t.Fatalf("attendingEvents = %v", u.AttendingEvents)
	}
	if len(u.CreatedEvents) != 1 || u.CreatedEvents[0] != "e1" {
		t.Fatalf("createdEvents = %v", u.CreatedEvents)
	}
}

func TestUpdatePasswordAndDelete_NotFound(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")
	token := seedSession(d, "alice")

	if w := doReq(d.s, http.MethodPut, "/users/update-user-password",
		`{"username":"bob","password":"x"}`, "alice", token); w.Code != 404 {
		t.Fatalf("update unknown got %d", w.Code)
	}
	if w := doReq(d.s, http.MethodDelete, "/users/delete-user-by-username/bob", "", "alice", token); w.Code != 404 {
		t.Fatalf("delete unknown got %d", w.Code)
	}
	if w := doReq(d.s, http.MethodDelete, "/users/delete-user-by-username/alice", "", "alice", token); w.Code != 200 {
		t.Fatalf("delete got %d", w.Code)
	}
}

/* ---------- images ---------- */

func TestImages_SetGetAndErrors(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")
	token := seedSession(d, "alice")

	if w := doReq(d.s, http.MethodGet, "/users/get-image/alice", "", "alice", token); w.Code != 404 {
		t.Fatalf("get missing image got %d", w.Code)
	}

	if w := doReq(d.s, http.MethodPost, "/users/set-image",
		`{"username":"alice","image":"not-a-data-uri"}`, "alice", token); w.Code != 400 {
		t.Fatalf("malformed image got %d", w.Code)
	}

	uri := "data:image/png;base64,aGVsbG8="
	if w := doReq(d.s, http.MethodPost, "/users/set-image",
		`{"username":"alice","image":"`+uri+`"}`, "alice", token); w.Code != 200 {
		t.Fatalf("set image got %d", w.Code)
	}

	w := doReq(d.s, http.MethodGet, "/users/get-image/alice", "", "alice", token)
	if w.Code != 200 {
		t.Fatalf("get image got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["image"] != uri {
		t.Fatalf("image = %q, want %q", resp["image"], uri)
	}
}

/* ---------- membership routes on /users ---------- */

func TestAddToAttendingEvents_ValidatesBothSides(t *testing.T) {
	d := setupServer(t)
	seedUser(d, "alice", "p")
	token := seedSession(d, "alice")
	d.er.Items["e1"] = models.Event{ID: "e1"}

	if w := doReq(d.s, http.MethodPut, "/users/add-to-attending-events",
		`{"username":"bob","eventId":"e1"}`, "alice", token); w.Code != 404 {
		t.Fatalf("unknown user got %d", w.Code)
	}
	if w := doReq(d.s, http.MethodPut, "/users/add-to-attending-events",
		`{"username":"alice","eventId":"nope"}`, "alice", token); w.Code != 404 {
		t.Fatalf("unknown event got %d", w.Code)
	}
	if w := doReq(d.s, http.MethodPut, "/users/add-to-attending-events",
		`{"username":"alice","eventId":"e1"}`, "alice", token); w.Code != 200 {
		t.Fatalf("add got %d", w.Code)
	}
	if len(d.mr.Rows) != 1 {
		t.Fatalf("rows = %v", d.mr.Rows)
	}
}
