package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/washbook/washbook-api/authz"
	"github.com/washbook/washbook-api/middleware"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/services"
)

// envelope mirrors the uniform JSON response shape
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// newTestRouter builds a router with the full route table and a stub
// auth layer that injects the given user, so handler tests exercise the
// same permission middleware as production without real tokens.
func newTestRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	authed := v1.Group("", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, user)
		c.Set(middleware.ContextClaimsKey, &services.Claims{UserID: user.ID, Role: user.Role})
	})

	orders := authed.Group("/orders")
	{
		orders.POST("", middleware.RequirePermission(authz.OrdersCreate), CreateOrder)
		orders.GET("", middleware.RequirePermission(authz.OrdersRead), ListOrders)
		orders.GET("/:id", middleware.RequirePermission(authz.OrdersRead), GetOrder)
		orders.PUT("/:id", middleware.RequirePermission(authz.OrdersUpdate), UpdateOrder)
		orders.PATCH("/:id/status", middleware.RequirePermission(authz.OrdersUpdate), UpdateOrderStatus)
		orders.PATCH("/:id/payment", middleware.RequirePermission(authz.OrdersUpdate), UpdateOrderPayment)
		orders.PATCH("/:id/reject", middleware.RequirePermission(authz.OrdersReject), RejectOrder)
		orders.DELETE("/:id", middleware.RequirePermission(authz.OrdersDelete), DeleteOrder)
		orders.GET("/:id/bill", middleware.RequirePermission(authz.OrdersRead), GetOrderBill)
		orders.GET("/:id/bill/qr", middleware.RequirePermission(authz.OrdersRead), GetOrderBillQR)
	}

	expenses := authed.Group("/expenses")
	{
		expenses.POST("", middleware.RequirePermission(authz.ExpensesCreate), CreateExpense)
		expenses.GET("", middleware.RequirePermission(authz.ExpensesRead), ListExpenses)
		expenses.PUT("/:id", middleware.RequirePermission(authz.ExpensesUpdate), UpdateExpense)
		expenses.DELETE("/:id", middleware.RequirePermission(authz.ExpensesDelete), DeleteExpense)
	}

	users := authed.Group("/users", middleware.RequirePermission(authz.UsersManage))
	{
		users.POST("", CreateUser)
		users.GET("", ListUsers)
		users.PUT("/:id", UpdateUser)
		users.DELETE("/:id", DeleteUser)
	}

	settings := authed.Group("/settings")
	{
		settings.GET("", middleware.RequirePermission(authz.SettingsRead), GetSettings)
		settings.PUT("", middleware.RequirePermission(authz.SettingsUpdate), UpdateSettings)
		settings.POST("/logo", middleware.RequirePermission(authz.SettingsUpdate), UploadLogo)
		settings.POST("/favicon", middleware.RequirePermission(authz.SettingsUpdate), UploadFavicon)
	}

	analytics := authed.Group("/analytics", middleware.RequirePermission(authz.AnalyticsRead))
	{
		analytics.GET("/summary", GetAnalyticsSummary)
		analytics.GET("/export", ExportAnalytics)
	}

	return router
}

// performJSON sends a JSON request through the router
func performJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decode parses the response envelope
func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData unmarshals the envelope's data field into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	resp := decode(t, w)
	require.True(t, resp.Success, "expected a success envelope, got: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

// requireErrorCode asserts a failure envelope with the given code
func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()

	require.Equal(t, status, w.Code, "unexpected status, body: %s", w.Body.String())
	resp := decode(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
	return resp
}

// validOrderRequest returns a payload that passes all field validation
func validOrderRequest() OrderRequest {
	return OrderRequest{
		CustomerName:  "Asha Patel",
		ContactNumber: "9876543210",
		Address:       "12 Lake Road",
		OrderDate:     "2026-03-10",
		ServiceLines: []ServiceLineRequest{
			{ServiceType: models.ServiceWashing, ClothType: models.ClothNormal, Quantity: 3, UnitCost: 15},
			{ServiceType: models.ServiceIroning, ClothType: models.ClothSaari, Quantity: 2, UnitCost: 25},
		},
	}
}
