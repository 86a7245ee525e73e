package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/practice-admin/internal/middleware"
	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/pkg/metrics"
)

type route struct{ path string }

func (h route) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(h.path, func(c *gin.Context) { c.String(http.StatusOK, h.path) })
}

type validator struct{}

func (validator) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &model.TokenClaims{}, nil
}

func (validator) Profile(ctx context.Context, claims *model.TokenClaims) (*model.Profile, error) {
	return &model.Profile{Role: model.RoleAdmin}, nil
}

func TestRouter_AccessLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(
		middleware.NewAuthMiddleware(validator{}),
		Handlers{
			Health:    route{"/health/live"},
			Public:    []Handler{route{"/auth/session"}},
			Protected: []Handler{route{"/masterdata"}},
		},
		metrics.NewMetrics(prometheus.NewRegistry(), "test"),
		RouterConfig{APIKey: "anon"},
	)
	r.Setup()

	tests := []struct {
		name   string
		path   string
		apiKey string
		bearer string
		status int
	}{
		{"health is open", "/api/v1/health/live", "", "", http.StatusOK},
		{"public needs key", "/api/v1/auth/session", "", "", http.StatusUnauthorized},
		{"public with key", "/api/v1/auth/session", "anon", "", http.StatusOK},
		{"protected needs session", "/api/v1/masterdata", "anon", "", http.StatusUnauthorized},
		{"protected bad token", "/api/v1/masterdata", "anon", "bad", http.StatusUnauthorized},
		{"protected ok", "/api/v1/masterdata", "anon", "good", http.StatusOK},
		{"token without key", "/api/v1/masterdata", "", "good", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.apiKey != "" {
				req.Header.Set(middleware.HeaderAPIKey, tt.apiKey)
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			w := httptest.NewRecorder()
			r.Engine().ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
		})
	}
}
