package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/tests/testutil"
)

func TestGetAnalyticsSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	router := newTestRouter(admin)

	// two paid orders count toward revenue, the unpaid one does not
	paid := makeOrder(t, db, admin, models.OrderStatusCompleted, models.PaymentStatusPaid)
	require.NoError(t, db.Model(paid).Update("total_amount", 95).Error)
	paid2 := makeOrder(t, db, admin, models.OrderStatusPending, models.PaymentStatusPaid)
	require.NoError(t, db.Model(paid2).Update("total_amount", 105).Error)
	makeOrder(t, db, admin, models.OrderStatusPending, models.PaymentStatusUnpaid)
	makeOrder(t, db, admin, models.OrderStatusRejected, models.PaymentStatusUnpaid)

	makeExpense(t, db, admin, "Detergent", 40)
	makeExpense(t, db, admin, "Electricity", 60)

	var data struct {
		Orders        OrderMetrics `json:"orders"`
		TotalExpenses float64      `json:"total_expenses"`
		Net           float64      `json:"net"`
	}
	w := performJSON(t, router, "GET", "/api/v1/analytics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &data)

	assert.Equal(t, 200.0, data.Orders.TotalRevenue)
	assert.Equal(t, int64(2), data.Orders.Pending)
	assert.Equal(t, int64(1), data.Orders.Completed)
	assert.Equal(t, int64(1), data.Orders.Rejected)
	assert.Equal(t, int64(4), data.Orders.Total)
	assert.Equal(t, 100.0, data.TotalExpenses)
	assert.Equal(t, 100.0, data.Net)
}

func TestGetAnalyticsSummaryEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	router := newTestRouter(admin)

	var data struct {
		Orders        OrderMetrics `json:"orders"`
		TotalExpenses float64      `json:"total_expenses"`
		Net           float64      `json:"net"`
	}
	w := performJSON(t, router, "GET", "/api/v1/analytics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &data)

	assert.Zero(t, data.Orders.TotalRevenue)
	assert.Zero(t, data.Orders.Total)
	assert.Zero(t, data.TotalExpenses)
	assert.Zero(t, data.Net)
}

func TestAnalyticsEmployeeForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	employee := testutil.CreateTestUser(t, db, "employee", models.RoleEmployee)
	router := newTestRouter(employee)

	w := performJSON(t, router, "GET", "/api/v1/analytics/summary", nil)
	requireErrorCode(t, w, http.StatusForbidden, "FORBIDDEN")

	w = performJSON(t, router, "GET", "/api/v1/analytics/export", nil)
	requireErrorCode(t, w, http.StatusForbidden, "FORBIDDEN")
}

func TestExportAnalytics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	router := newTestRouter(admin)

	makeOrder(t, db, admin, models.OrderStatusCompleted, models.PaymentStatusPaid)
	makeExpense(t, db, admin, "Detergent", 40)

	w := performJSON(t, router, "GET", "/api/v1/analytics/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "washbook-report-")
	assert.NotZero(t, w.Body.Len())
	// xlsx files are zip archives
	assert.Equal(t, []byte{'P', 'K'}, w.Body.Bytes()[:2])
}
