package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AgentChief/accredis/handlers"
	"github.com/AgentChief/accredis/middleware"
	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/services"
	"github.com/AgentChief/accredis/utils"
)

type tokenAuth struct {
	handlers.AuthService
	user *models.User
}

func (a *tokenAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token != "good" {
		return nil, utils.Unauthorized("Invalid token")
	}
	return a.user, nil
}

func (a *tokenAuth) Login(context.Context, services.LoginInput) (*services.AuthResult, error) {
	return nil, utils.Unauthorized("Invalid credentials")
}

type emptyRisks struct{ handlers.RiskService }

func (emptyRisks) ListRisks(context.Context, *models.User, string) ([]models.Risk, error) {
	return []models.Risk{}, nil
}

func newTestRouter(limiter *middleware.RateLimiter) http.Handler {
	auth := &tokenAuth{user: &models.User{ID: primitive.NewObjectID(), Email: "gp@example.com"}}
	h := &handlers.Handler{Auth: auth, Risks: emptyRisks{}, Log: zerolog.Nop()}
	return NewRouter(h, Options{
		Logger:      zerolog.Nop(),
		CORSOrigins: []string{"*"},
		AuthLimiter: limiter,
		Auth:        auth,
	})
}

func do(t *testing.T, h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(`{}`))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "198.51.100.4:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	router := newTestRouter(nil)

	rec := do(t, router, http.MethodGet, PathHealth, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = do(t, router, http.MethodGet, "/api/risks", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/risks", "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/risks", "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, router, http.MethodPost, PathAuth+"/login", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestPreflightSkipsAuth(t *testing.T) {
	router := newTestRouter(nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/documents", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	router := newTestRouter(middleware.NewRateLimiter(0.001, 2))

	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodPost, PathAuth+"/login", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodPost, PathAuth+"/login", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, router, http.MethodPost, PathAuth+"/login", "").Code)

	// Other routes share no bucket with the auth limiter.
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/risks", "good").Code)
}
