package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcare/internal/admin"
	jwttoken "mindcare/internal/jwt_token"
	httpmetrics "mindcare/internal/platform/metrics"
	referencehandler "mindcare/internal/reference/handler"
	verificationhandler "mindcare/internal/verification/handler"
	id "mindcare/pkg/domain"
	auditmemory "mindcare/pkg/platform/audit/store/memory"
	authmw "mindcare/pkg/platform/middleware/auth"
)

func testRouter(t *testing.T) (http.Handler, *jwttoken.JWTService) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	jwt := jwttoken.NewJWTService("test-key", "mindcare")
	st := &stores{audit: auditmemory.NewInMemoryStore()}

	return newRouter(routerDeps{
		log:          log,
		stores:       st,
		validator:    jwttoken.NewJWTServiceAdapter(jwt),
		verification: verificationhandler.New(nil, log),
		reference:    referencehandler.New(nil, log),
		audit:        admin.New(st.audit, log),
		httpMetrics:  httpmetrics.NewWith(prometheus.NewRegistry()),
	}), jwt
}

func get(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthWithMemoryStores(t *testing.T) {
	h, _ := testRouter(t)
	rec := get(t, h, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterAdminRoutesRequireAdminRole(t *testing.T) {
	h, jwt := testRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/admin/audit", "").Code)

	patient, err := jwt.GenerateAccessToken(id.UserID(uuid.New()), []string{authmw.RolePatient}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(t, h, "/admin/audit", patient).Code)

	adminToken, err := jwt.GenerateAccessToken(id.UserID(uuid.New()), []string{authmw.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(t, h, "/admin/audit", adminToken).Code)
}
