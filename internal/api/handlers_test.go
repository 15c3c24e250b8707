// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	gosync "sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cftracker/internal/auth"
	"github.com/tomtom215/cftracker/internal/authz"
	"github.com/tomtom215/cftracker/internal/codeforces"
	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/database"
	"github.com/tomtom215/cftracker/internal/models"
	"github.com/tomtom215/cftracker/internal/scheduler"
	"github.com/tomtom215/cftracker/internal/sync"
)

const testSecret = "api-test-secret-with-at-least-32-chars"

// stubUpstream serves canned Codeforces data per handle.
type stubUpstream struct {
	mu          gosync.Mutex
	profiles    map[string]models.Profile
	ratings     map[string][]codeforces.RatingChange
	submissions map[string][]codeforces.Submission
}

func (u *stubUpstream) FetchProfile(_ context.Context, h string) codeforces.Result[models.Profile] {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.profiles[h]
	if !ok {
		return codeforces.Fail[models.Profile](codeforces.MsgProfileFailed)
	}
	return codeforces.Ok(p)
}

func (u *stubUpstream) FetchRatingHistory(_ context.Context, h string) codeforces.Result[[]codeforces.RatingChange] {
	u.mu.Lock()
	defer u.mu.Unlock()
	return codeforces.Ok(append([]codeforces.RatingChange(nil), u.ratings[h]...))
}

func (u *stubUpstream) FetchSubmissionHistory(_ context.Context, h string) codeforces.Result[[]codeforces.Submission] {
	u.mu.Lock()
	defer u.mu.Unlock()
	return codeforces.Ok(append([]codeforces.Submission(nil), u.submissions[h]...))
}

func (u *stubUpstream) addSubmission(h string, s codeforces.Submission) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.submissions[h] = append(u.submissions[h], s)
}

func daysAgo(d int) int64 {
	return time.Now().Add(-time.Duration(d)*24*time.Hour - time.Hour).Unix()
}

func submission(id int64, contest int, index, verdict string, rating int, created int64) codeforces.Submission {
	return codeforces.Submission{
		ID:                  id,
		ContestID:           contest,
		CreationTimeSeconds: created,
		Problem:             codeforces.Problem{ContestID: contest, Index: index, Name: "Problem " + index, Rating: rating},
		Verdict:             verdict,
	}
}

func newStubUpstream() *stubUpstream {
	return &stubUpstream{
		profiles: map[string]models.Profile{
			"alice": {Name: "Alice A", CurrentRating: 1500, MaxRating: 1600, Rank: "specialist", MaxRank: "expert"},
			"bob":   {Name: "Bob B", CurrentRating: 1200, MaxRating: 1250, Rank: "pupil", MaxRank: "pupil"},
		},
		ratings: map[string][]codeforces.RatingChange{
			"alice": {
				{ContestID: 100, ContestName: "Round 100", Rank: 50, OldRating: 1400, NewRating: 1500, RatingUpdateTimeSeconds: daysAgo(200)},
				{ContestID: 200, ContestName: "Round 200", Rank: 70, OldRating: 1500, NewRating: 1480, RatingUpdateTimeSeconds: daysAgo(10)},
			},
			"bob": {
				{ContestID: 300, ContestName: "Round 300", Rank: 900, OldRating: 0, NewRating: 1200, RatingUpdateTimeSeconds: daysAgo(5)},
			},
		},
		submissions: map[string][]codeforces.Submission{
			"alice": {
				submission(1, 200, "A", "OK", 800, daysAgo(1)),
				submission(2, 200, "B", "WRONG_ANSWER", 1200, daysAgo(1)),
				submission(3, 100, "C", "OK", 1600, daysAgo(30)),
			},
			"bob": {
				submission(10, 300, "A", "OK", 900, daysAgo(2)),
			},
		},
	}
}

type testEnv struct {
	t          *testing.T
	db         *database.DB
	handler    *Handler
	server     http.Handler
	upstream   *stubUpstream
	engine     *sync.Engine
	schedule   *scheduler.Scheduler
	jwt        *auth.JWTManager
	adminToken string
	userToken  string
}

var testDBSemaphore = make(chan struct{}, 1)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	security := &config.SecurityConfig{
		TokenSecret:       testSecret,
		TokenExpiry:       time.Hour,
		CookieName:        "token",
		CookieSecure:      true,
		RateLimitDisabled: true,
	}
	cfg := &config.Config{Security: *security, Sync: config.SyncConfig{Concurrency: 2}}

	jwtManager, err := auth.NewJWTManager(security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	revocations, err := auth.OpenRevocationStore("")
	if err != nil {
		t.Fatalf("OpenRevocationStore: %v", err)
	}
	t.Cleanup(func() { _ = revocations.Close() })

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	upstream := newStubUpstream()
	engine := sync.NewEngine(db, upstream, &cfg.Sync, 7)
	sched := scheduler.New(db, engine.RunCycle, models.DefaultCronExpression)
	if err := sched.Arm(models.DefaultCronExpression); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	authMW := auth.NewMiddleware(jwtManager, revocations, db, security)
	handler := NewHandler(db, engine, sched, authMW, jwtManager, cfg)
	t.Cleanup(handler.Close)

	router := NewRouter(handler, authMW, authz.NewMiddleware(enforcer, WriteError), NewChiMiddleware(NewChiMiddlewareConfig(security)))

	env := &testEnv{
		t:        t,
		db:       db,
		handler:  handler,
		server:   router.SetupChi(),
		upstream: upstream,
		engine:   engine,
		schedule: sched,
		jwt:      jwtManager,
	}
	env.adminToken = env.tokenFor("admin", models.RoleAdmin)
	env.userToken = env.tokenFor("viewer", models.RoleUser)
	return env
}

func (e *testEnv) tokenFor(username, role string) string {
	e.t.Helper()
	user, err := e.db.CreateUser(context.Background(), username, "not-a-real-hash", role)
	if err != nil {
		e.t.Fatalf("CreateUser(%s): %v", username, err)
	}
	token, _, err := e.jwt.GenerateToken(user)
	if err != nil {
		e.t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

// do sends a request through the full router. token may be empty.
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

// createStudent registers a student through the API as admin.
func (e *testEnv) createStudent(handle string) studentBody {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/students", e.adminToken, map[string]string{"cf_handle": handle})
	assertStatusCode(e.t, w.Code, http.StatusCreated, "create "+handle)
	var s studentBody
	decodeData(e.t, decodeResponse(e.t, w), &s)
	return s
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

type studentBody struct {
	models.Student
	Sync *sync.Outcome `json:"sync"`
}

func assertStatusCode(t *testing.T, got, want int, testName string) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: expected status %d, got %d", testName, want, got)
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func decodeData(t *testing.T, resp testResponse, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", resp.Data, err)
	}
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assertStatusCode(t, w.Code, status, code)
	resp := decodeResponse(t, w)
	if resp.Success {
		t.Fatal("expected success=false")
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", resp.Error, code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/health/live", "", nil)
	assertStatusCode(t, w.Code, http.StatusOK, "live")
	if resp := decodeResponse(t, w); !resp.Success || resp.Meta == nil {
		t.Errorf("live response = %+v", resp)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	w = env.do(http.MethodGet, "/api/v1/health/ready", "", nil)
	assertStatusCode(t, w.Code, http.StatusOK, "ready")
	var data map[string]interface{}
	decodeData(t, decodeResponse(t, w), &data)
	if data["database"] != true {
		t.Errorf("ready data = %v", data)
	}
}

func TestRouter_NotFoundAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	assertErrorCode(t, env.do(http.MethodGet, "/api/v1/nope", "", nil), http.StatusNotFound, ErrCodeNotFound)

	w := env.do(http.MethodGet, "/metrics", "", nil)
	assertStatusCode(t, w.Code, http.StatusOK, "metrics")
	if !bytes.Contains(w.Body.Bytes(), []byte("api_requests_total")) {
		t.Error("metrics output missing api_requests_total")
	}
}

func TestSyncTrigger(t *testing.T) {
	env := newTestEnv(t)
	env.createStudent("alice")

	assertErrorCode(t, env.do(http.MethodPost, "/api/v1/sync", env.userToken, nil), http.StatusForbidden, ErrCodeForbidden)

	w := env.do(http.MethodPost, "/api/v1/sync", env.adminToken, nil)
	assertStatusCode(t, w.Code, http.StatusAccepted, "trigger")

	deadline := time.Now().Add(5 * time.Second)
	for env.engine.LastCycle().IsZero() {
		if time.Now().After(deadline) {
			t.Fatal("background cycle did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	w = env.do(http.MethodGet, "/api/v1/sync/status", env.userToken, nil)
	assertStatusCode(t, w.Code, http.StatusOK, "status")
	var status SyncStatus
	decodeData(t, decodeResponse(t, w), &status)
	if status.LastCycle == nil {
		t.Error("expected last_cycle after a completed cycle")
	}
}
