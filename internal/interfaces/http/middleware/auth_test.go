package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
	"github.com/your-org/coffee-marketplace/internal/pkg/auth"
)

type fakeRoleReader struct {
	roles map[uint]user.Role
	err   error
}

func (f *fakeRoleReader) GetRole(userID uint) (user.Role, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.roles[userID], nil
}

func guardConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			LoginPath:    "/login",
			FallbackPath: "/dashboard",
		},
	}
}

func newGuardedRouter(cfg *config.Config, reader RoleReader, authedAs uint, allowed ...user.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/seller/orders",
		func(c *gin.Context) {
			if authedAs != 0 {
				c.Set("user_id", authedAs)
			}
			c.Next()
		},
		RequireRoles(cfg, reader, allowed...),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": "seller orders"})
		},
	)

	return router
}

func TestRequireRolesEmptyListIsPublic(t *testing.T) {
	reader := &fakeRoleReader{err: fmt.Errorf("must not be called")}
	router := newGuardedRouter(guardConfig(), reader, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller/orders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "seller orders")
}

func TestRequireRolesUnauthenticated(t *testing.T) {
	reader := &fakeRoleReader{roles: map[uint]user.Role{}}
	router := newGuardedRouter(guardConfig(), reader, 0, user.RoleSeller)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller/orders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/login?callbackUrl=%2Fseller%2Forders", body["login_url"])
	assert.NotContains(t, w.Body.String(), "seller orders")
}

func TestRequireRolesWrongRole(t *testing.T) {
	reader := &fakeRoleReader{roles: map[uint]user.Role{7: user.RoleCustomer}}
	router := newGuardedRouter(guardConfig(), reader, 7, user.RoleSeller, user.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller/orders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/dashboard", body["redirect"])
	assert.NotContains(t, w.Body.String(), "seller orders")
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	reader := &fakeRoleReader{roles: map[uint]user.Role{7: user.RoleSeller}}
	router := newGuardedRouter(guardConfig(), reader, 7, user.RoleSeller, user.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller/orders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesFailsClosedOnRoleReadError(t *testing.T) {
	reader := &fakeRoleReader{err: fmt.Errorf("connection refused")}
	router := newGuardedRouter(guardConfig(), reader, 7, user.RoleSeller)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller/orders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "seller orders")
}

// newGuardChainRouter mirrors the production wiring for guarded groups:
// optional auth populates the context from a real bearer token and the
// role guard decides, so the unauthenticated leg runs for real requests.
func newGuardChainRouter(cfg *config.Config, reader RoleReader, allowed ...user.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/seller")
	group.Use(OptionalAuthMiddleware(cfg))
	group.Use(RequireRoles(cfg, reader, allowed...))
	group.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "seller orders"})
	})

	return router
}

func guardChainConfig() *config.Config {
	cfg := guardConfig()
	cfg.JWT = config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	}
	return cfg
}

func TestGuardChainNoCredentialsGetsLoginURL(t *testing.T) {
	cfg := guardChainConfig()
	reader := &fakeRoleReader{roles: map[uint]user.Role{}}
	router := newGuardChainRouter(cfg, reader, user.RoleSeller, user.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller/orders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/login?callbackUrl=%2Fseller%2Forders", body["login_url"])
	assert.NotContains(t, w.Body.String(), "seller orders")
}

func TestGuardChainBearerTokenAllowsSeller(t *testing.T) {
	cfg := guardChainConfig()
	reader := &fakeRoleReader{roles: map[uint]user.Role{7: user.RoleSeller}}
	router := newGuardChainRouter(cfg, reader, user.RoleSeller, user.RoleAdmin)

	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(7, "roaster@example.com", string(user.RoleSeller))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "seller orders")
}

func TestGuardChainGarbageTokenGetsLoginURL(t *testing.T) {
	cfg := guardChainConfig()
	reader := &fakeRoleReader{roles: map[uint]user.Role{}}
	router := newGuardChainRouter(cfg, reader, user.RoleSeller)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/login?callbackUrl=%2Fseller%2Forders", body["login_url"])
}
