package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/gws-backend/internal/common/middleware"
	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
	du "github.com/open-builders/gws-backend/internal/domain/user"
	"github.com/open-builders/gws-backend/internal/lock"
	"github.com/open-builders/gws-backend/internal/repository/memory"
	"github.com/open-builders/gws-backend/internal/service/draw"
	"github.com/open-builders/gws-backend/internal/service/eligibility"
	gsvc "github.com/open-builders/gws-backend/internal/service/giveaway"
	"github.com/open-builders/gws-backend/internal/workers"
)

const jwtSecret = "router-secret"

type switchChecker struct {
	eligible bool
	err      error
}

func (c *switchChecker) CheckEligibility(context.Context, string) (bool, error) {
	return c.eligible, c.err
}

type fakeHealth struct{ healthy bool }

func (f fakeHealth) Health() workers.HealthReport { return workers.HealthReport{Healthy: f.healthy} }

type env struct {
	router  *gin.Engine
	repo    *memory.GiveawayRepository
	checker *switchChecker
}

func newEnv(t *testing.T, storage Pinger, sched SchedulerHealth) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewGiveawayRepository()
	users := memory.NewUserRepository(
		du.User{ID: "u1", Username: "kicker", ExternalHandle: "better", Role: du.RoleUser},
		du.User{ID: "u2", Username: "nohandle", Role: du.RoleUser},
		du.User{ID: "admin", Username: "boss", ExternalHandle: "boss", Role: du.RoleAdmin},
	)
	checker := &switchChecker{eligible: true}
	svc := gsvc.NewService(repo, users, checker, draw.NewCryptoDrawer(), lock.NewKeyedMutex())
	if storage == nil {
		storage = repo
	}

	r := NewRouter(RouterDeps{
		Giveaways:   svc,
		Users:       users,
		JWTSecret:   jwtSecret,
		CORSOrigins: []string{"http://localhost:5173"},
		Debug:       true,
		Storage:     storage,
		Scheduler:   sched,
	})
	return &env{router: r, repo: repo, checker: checker}
}

func token(t *testing.T, id, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{ID: id, Role: role}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func (e *env) do(method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return string(resp.Error.Code)
}

func (e *env) createGiveaway(t *testing.T) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/gws", token(t, "admin", "admin"),
		map[string]any{"title": "Weekly", "endTime": time.Now().Add(time.Hour).UTC().Format(time.RFC3339)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp giveawayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.GWS.ID
}

func TestCreateRequiresAdmin(t *testing.T) {
	e := newEnv(t, nil, nil)
	body := map[string]any{"title": "Weekly", "endTime": "2030-01-01T00:00:00Z"}

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/gws", "", body).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/gws", token(t, "u1", "user"), body).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/gws", "Bearer junk", body).Code)

	w := e.do(http.MethodPost, "/api/gws", token(t, "admin", "admin"), map[string]any{"endTime": "2030-01-01T00:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	id := e.createGiveaway(t)
	w = e.do(http.MethodGet, "/api/gws/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var g dg.Giveaway
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	assert.Equal(t, dg.StateActive, g.State)
	assert.Equal(t, "Weekly", g.Title)

	w = e.do(http.MethodGet, "/api/gws", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dg.Giveaway
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestJoinErrorMapping(t *testing.T) {
	e := newEnv(t, nil, nil)
	id := e.createGiveaway(t)
	user := token(t, "u1", "user")

	w := e.do(http.MethodPost, "/api/gws/"+id+"/join", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/gws/"+id+"/join", token(t, "u2", "user"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "HANDLE_REQUIRED", errorCode(t, w))

	w = e.do(http.MethodPost, "/api/gws/missing/join", user, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "GIVEAWAY_NOT_FOUND", errorCode(t, w))

	e.checker.eligible = false
	w = e.do(http.MethodPost, "/api/gws/"+id+"/join", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "INELIGIBLE", errorCode(t, w))

	e.checker.err = errors.Join(eligibility.ErrUnavailable, errors.New("status 502"))
	w = e.do(http.MethodPost, "/api/gws/"+id+"/join", user, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "VERIFICATION_UNAVAILABLE", errorCode(t, w))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	e.checker.err = nil
	e.checker.eligible = true
	w = e.do(http.MethodPost, "/api/gws/"+id+"/join", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp giveawayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"u1"}, resp.GWS.Participants)
	assert.Equal(t, 1, resp.GWS.TotalEntries)

	w = e.do(http.MethodPost, "/api/gws/"+id+"/join", user, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_JOINED", errorCode(t, w))
}

func TestDrawAndUpdate(t *testing.T) {
	e := newEnv(t, nil, nil)
	id := e.createGiveaway(t)
	admin := token(t, "admin", "admin")

	w := e.do(http.MethodPost, "/api/gws/"+id+"/join", token(t, "u1", "user"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/gws/"+id+"/draw", token(t, "u1", "user"), nil).Code)

	w = e.do(http.MethodPatch, "/api/gws/"+id, admin, map[string]any{"state": "paused"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/gws/"+id+"/draw", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp drawResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Winner)
	assert.Equal(t, "u1", resp.Winner.ID)
	assert.Equal(t, "kicker", resp.Winner.Username)
	assert.Equal(t, dg.StateComplete, resp.GWS.State)

	w = e.do(http.MethodPost, "/api/gws/"+id+"/draw", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOT_ACTIVE", errorCode(t, w))

	w = e.do(http.MethodPatch, "/api/gws/"+id, admin, map[string]any{"state": "active"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDrawWithoutParticipants(t *testing.T) {
	e := newEnv(t, nil, nil)
	id := e.createGiveaway(t)

	w := e.do(http.MethodPost, "/api/gws/"+id+"/draw", token(t, "admin", "admin"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp drawResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Winner)
	assert.Equal(t, dg.StateComplete, resp.GWS.State)
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t, nil, fakeHealth{healthy: true})
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", "", nil).Code)

	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })
	e = newEnv(t, down, fakeHealth{healthy: true})
	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodGet, "/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/live", "", nil).Code)

	e = newEnv(t, nil, fakeHealth{healthy: false})
	w := e.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"scheduler":"unhealthy"`)
}

func TestSwaggerDocIsServed(t *testing.T) {
	e := newEnv(t, nil, nil)
	w := e.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/gws/{id}/join"`)
}
