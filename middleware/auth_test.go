package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/services"
	"github.com/washbook/washbook-api/tests/testutil"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/probe", RequireAuth(), func(c *gin.Context) {
		user, err := CurrentUser(c)
		require.NoError(t, err)
		claims, err := TokenClaims(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{
			"username":   user.Username,
			"role":       user.Role,
			"token_role": claims.Role,
		})
	})
	return router
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.False(t, resp.Success)
	return resp.Error.Code
}

func TestRequireAuthMissingHeader(t *testing.T) {
	testutil.SetupTestDB(t)
	services.InitTokenService("test-secret", services.NewMemoryDenylist())
	router := setupAuthRouter(t)

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		req := httptest.NewRequest("GET", "/probe", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, w.Body.Bytes()))
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	testutil.SetupTestDB(t)
	services.InitTokenService("test-secret", services.NewMemoryDenylist())
	router := setupAuthRouter(t)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, w.Body.Bytes()))
}

func TestRequireAuthValidToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := services.InitTokenService("test-secret", services.NewMemoryDenylist())
	router := setupAuthRouter(t)

	user := testutil.CreateTestUser(t, db, "asha", models.RoleAdmin)
	token, err := svc.Generate(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "asha", resp["username"])
	assert.Equal(t, models.RoleAdmin, resp["role"])
}

func TestRequireAuthRevokedToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := services.InitTokenService("test-secret", services.NewMemoryDenylist())
	router := setupAuthRouter(t)

	user := testutil.CreateTestUser(t, db, "asha", models.RoleEmployee)
	token, err := svc.Generate(user)
	require.NoError(t, err)
	claims, err := svc.Parse(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(context.Background(), claims))

	r := httptest.NewRequest("GET", "/probe", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", errorCode(t, w.Body.Bytes()))
}

func TestRequireAuthDeletedUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := services.InitTokenService("test-secret", services.NewMemoryDenylist())
	router := setupAuthRouter(t)

	user := testutil.CreateTestUser(t, db, "gone", models.RoleEmployee)
	token, err := svc.Generate(user)
	require.NoError(t, err)
	require.NoError(t, db.Delete(user).Error)

	r := httptest.NewRequest("GET", "/probe", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, w.Body.Bytes()))
}

// TestRequireAuthReloadsRole covers role changes after issuance: the
// token still carries the old role but the handler must see the new one.
func TestRequireAuthReloadsRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := services.InitTokenService("test-secret", services.NewMemoryDenylist())
	router := setupAuthRouter(t)

	user := testutil.CreateTestUser(t, db, "promoted", models.RoleEmployee)
	token, err := svc.Generate(user)
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("role", models.RoleAdmin).Error)

	r := httptest.NewRequest("GET", "/probe", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleAdmin, resp["role"])
	assert.Equal(t, models.RoleEmployee, resp["token_role"])
}

func TestCurrentUserMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := CurrentUser(c)
	assert.Error(t, err)

	_, err = TokenClaims(c)
	assert.Error(t, err)
}
