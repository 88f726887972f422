package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washbook/washbook-api/authz"
	"github.com/washbook/washbook-api/controllers"
	"github.com/washbook/washbook-api/middleware"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/services"
	"github.com/washbook/washbook-api/tests/testutil"
)

// newAPIRouter wires the API surface with the real auth middleware, the
// same way the server does at startup.
func newAPIRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	auth := v1.Group("/auth")
	auth.POST("/login", controllers.Login)
	auth.POST("/logout", middleware.RequireAuth(), controllers.Logout)
	auth.GET("/status", middleware.RequireAuth(), controllers.AuthStatus)

	authed := v1.Group("", middleware.RequireAuth())
	orders := authed.Group("/orders")
	orders.POST("", middleware.RequirePermission(authz.OrdersCreate), controllers.CreateOrder)
	orders.GET("", middleware.RequirePermission(authz.OrdersRead), controllers.ListOrders)
	orders.GET("/:id", middleware.RequirePermission(authz.OrdersRead), controllers.GetOrder)
	orders.PATCH("/:id/status", middleware.RequirePermission(authz.OrdersUpdate), controllers.UpdateOrderStatus)
	orders.PATCH("/:id/payment", middleware.RequirePermission(authz.OrdersUpdate), controllers.UpdateOrderPayment)
	orders.PATCH("/:id/reject", middleware.RequirePermission(authz.OrdersReject), controllers.RejectOrder)
	orders.GET("/:id/bill", middleware.RequirePermission(authz.OrdersRead), controllers.GetOrderBill)

	return router
}

// call sends an authenticated JSON request
func call(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	reader := &bytes.Buffer{}
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w := call(t, router, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// TestOrderWorkflow drives an order from intake through completion,
// billing and payment over the HTTP surface.
func TestOrderWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	services.InitTokenService("test-secret", services.NewMemoryDenylist())
	testutil.CreateTestUser(t, db, "clerk", models.RoleEmployee)
	testutil.CreateTestUser(t, db, "owner", models.RoleAdmin)
	router := newAPIRouter()

	clerkToken := login(t, router, "clerk")

	// intake
	w := call(t, router, "POST", "/api/v1/orders", clerkToken, map[string]any{
		"customer_name":  "Asha Patel",
		"contact_number": "9876543210",
		"order_date":     "2026-03-10",
		"service_lines": []map[string]any{
			{"service_type": "washing", "cloth_type": "normal", "quantity": 3, "unit_cost": 15},
			{"service_type": "ironing", "cloth_type": "saari", "quantity": 2, "unit_cost": 25},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := created.Data.ID
	require.NotZero(t, orderID)
	assert.Equal(t, 95.0, created.Data.TotalAmount)

	// no bill while pending
	w = call(t, router, "GET", fmt.Sprintf("/api/v1/orders/%d/bill", orderID), clerkToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// the clerk finishes the work
	w = call(t, router, "PATCH", fmt.Sprintf("/api/v1/orders/%d/status", orderID), clerkToken, map[string]string{"status": "Completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// bill is available now and totals match the order
	w = call(t, router, "GET", fmt.Sprintf("/api/v1/orders/%d/bill", orderID), clerkToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var bill struct {
		Data struct {
			BillNumber  string  `json:"bill_number"`
			TotalAmount float64 `json:"total_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bill))
	assert.Contains(t, bill.Data.BillNumber, "BILL-")
	assert.Equal(t, 95.0, bill.Data.TotalAmount)

	// the customer pays
	w = call(t, router, "PATCH", fmt.Sprintf("/api/v1/orders/%d/payment", orderID), clerkToken, map[string]string{"payment_status": "Paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// but a clerk cannot undo a recorded payment, only the owner can
	w = call(t, router, "PATCH", fmt.Sprintf("/api/v1/orders/%d/payment", orderID), clerkToken, map[string]string{"payment_status": "Unpaid"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	ownerToken := login(t, router, "owner")
	w = call(t, router, "PATCH", fmt.Sprintf("/api/v1/orders/%d/payment", orderID), ownerToken, map[string]string{"payment_status": "Unpaid"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// TestRejectionWorkflow covers the rejection path and its permissions
func TestRejectionWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	services.InitTokenService("test-secret", services.NewMemoryDenylist())
	testutil.CreateTestUser(t, db, "clerk", models.RoleEmployee)
	testutil.CreateTestUser(t, db, "owner", models.RoleAdmin)
	router := newAPIRouter()

	clerkToken := login(t, router, "clerk")
	ownerToken := login(t, router, "owner")

	w := call(t, router, "POST", "/api/v1/orders", clerkToken, map[string]any{
		"customer_name":  "Ravi Kumar",
		"contact_number": "9123456780",
		"order_date":     "2026-03-11",
		"service_lines": []map[string]any{
			{"service_type": "dryclean", "cloth_type": "others", "quantity": 1, "unit_cost": 150},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := created.Data.ID

	// clerks cannot reject
	w = call(t, router, "PATCH", fmt.Sprintf("/api/v1/orders/%d/reject", orderID), clerkToken, map[string]string{"reason": "stains won't come out"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the owner can, with a reason
	w = call(t, router, "PATCH", fmt.Sprintf("/api/v1/orders/%d/reject", orderID), ownerToken, map[string]string{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, router, "PATCH", fmt.Sprintf("/api/v1/orders/%d/reject", orderID), ownerToken, map[string]string{"reason": "stains won't come out"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// rejected orders refuse payment and billing
	w = call(t, router, "PATCH", fmt.Sprintf("/api/v1/orders/%d/payment", orderID), ownerToken, map[string]string{"payment_status": "Paid"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, router, "GET", fmt.Sprintf("/api/v1/orders/%d/bill", orderID), ownerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestLogoutInvalidatesSession covers the full token lifecycle
func TestLogoutInvalidatesSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	services.InitTokenService("test-secret", services.NewMemoryDenylist())
	testutil.CreateTestUser(t, db, "clerk", models.RoleEmployee)
	router := newAPIRouter()

	token := login(t, router, "clerk")

	w := call(t, router, "GET", "/api/v1/auth/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "POST", "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "GET", "/api/v1/auth/status", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, router, "GET", "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
