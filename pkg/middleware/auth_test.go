package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(tokens *utils.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/admin", Restrict(tokens, models.RoleAdmin), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"id": id.ID})
	})
	r.GET("/any", AuthenticateToken(tokens), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	sales := r.Group("/sales", AuthenticateToken(tokens), AuthorizeRoles(models.RoleAdmin, models.RoleSalesManager))
	sales.GET("", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.NoRoute(NotFoundHandler())
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRestrictAllowsMatchingRole(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)

	token, err := tokens.GenerateToken(utils.Identity{ID: 3, Role: models.RoleAdmin})
	require.NoError(t, err)

	w := do(r, "/admin", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3}`, w.Body.String())
}

func TestRestrictRejectsOtherRole(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)

	token, err := tokens.GenerateToken(utils.Identity{ID: 3, Role: models.RoleCustomer})
	require.NoError(t, err)

	w := do(r, "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthorizeRolesOnGroup(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)

	cases := map[models.Role]int{
		models.RoleSalesManager:     http.StatusNoContent,
		models.RoleAdmin:            http.StatusNoContent,
		models.RoleInventoryManager: http.StatusForbidden,
		models.RoleCustomer:         http.StatusForbidden,
	}
	for role, want := range cases {
		token, err := tokens.GenerateToken(utils.Identity{ID: 5, Role: role})
		require.NoError(t, err)
		assert.Equal(t, want, do(r, "/sales", token).Code, role)
	}
	assert.Equal(t, http.StatusUnauthorized, do(r, "/sales", "").Code)
}

func TestAuthenticationFailures(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)

	forged, err := utils.NewTokenManager("forged", time.Hour).GenerateToken(utils.Identity{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	expired, err := utils.NewTokenManager("secret", -time.Minute).GenerateToken(utils.Identity{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	cases := map[string]string{
		"missing":  "",
		"garbage":  "abc.def.ghi",
		"tampered": forged,
		"expired":  expired,
	}
	for name, token := range cases {
		w := do(r, "/admin", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.NotContains(t, w.Body.String(), `"id"`, name)
	}

	w := do(r, "/any", expired)
	assert.Contains(t, w.Body.String(), "Token expired.")
}

func TestNonBearerSchemeRejected(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)

	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecoveryAndNotFound(t *testing.T) {
	r := newRouter(utils.NewTokenManager("secret", time.Hour))

	w := do(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(r, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found")
}
