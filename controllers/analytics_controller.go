package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/washbook/washbook-api/asyncop"
	"github.com/washbook/washbook-api/config"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/services"
)

// OrderMetrics holds the simple order sums shown on the dashboard
type OrderMetrics struct {
	TotalRevenue float64 `json:"total_revenue"` // sum over paid orders
	Pending      int64   `json:"pending"`
	Completed    int64   `json:"completed"`
	Rejected     int64   `json:"rejected"`
	Total        int64   `json:"total"`
}

// GetAnalyticsSummary handles GET /api/v1/analytics/summary. Order and
// expense metrics are independent resources, so they run as two separate
// operation slots with no ordering between them.
func GetAnalyticsSummary(c *gin.Context) {
	db := config.GetDB()

	orderOp := asyncop.New[OrderMetrics]()
	expenseOp := asyncop.New[float64]()

	orderOp.Execute(c.Request.Context(), func(ctx context.Context) (OrderMetrics, error) {
		var m OrderMetrics
		tx := db.WithContext(ctx).Model(&models.Order{})
		if err := tx.Where("payment_status = ?", models.PaymentStatusPaid).
			Select("COALESCE(SUM(total_amount), 0)").Scan(&m.TotalRevenue).Error; err != nil {
			return m, err
		}
		counts := []struct {
			status string
			dest   *int64
		}{
			{models.OrderStatusPending, &m.Pending},
			{models.OrderStatusCompleted, &m.Completed},
			{models.OrderStatusRejected, &m.Rejected},
		}
		for _, count := range counts {
			if err := db.WithContext(ctx).Model(&models.Order{}).
				Where("status = ?", count.status).Count(count.dest).Error; err != nil {
				return m, err
			}
		}
		m.Total = m.Pending + m.Completed + m.Rejected
		return m, nil
	})

	expenseOp.Execute(c.Request.Context(), func(ctx context.Context) (float64, error) {
		var total float64
		err := db.WithContext(ctx).Model(&models.Expense{}).
			Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
		return total, err
	})

	orderOp.Wait()
	expenseOp.Wait()

	if err := orderOp.Err(); err != nil {
		logrus.Errorf("failed to compute order metrics: %v", err)
		respondAnalyticsError(c)
		return
	}
	if err := expenseOp.Err(); err != nil {
		logrus.Errorf("failed to compute expense metrics: %v", err)
		respondAnalyticsError(c)
		return
	}

	orders := orderOp.Data()
	expenses := expenseOp.Data()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders":         orders,
			"total_expenses": expenses,
			"net":            orders.TotalRevenue - expenses,
		},
	})
}

// ExportAnalytics handles GET /api/v1/analytics/export - streams an Excel
// workbook of orders and expenses.
func ExportAnalytics(c *gin.Context) {
	db := config.GetDB()

	var orders []models.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		respondAnalyticsError(c)
		return
	}

	var expenses []models.Expense
	if err := db.Preload("CreatedBy").Order("expense_date DESC").Find(&expenses).Error; err != nil {
		respondAnalyticsError(c)
		return
	}

	workbook, err := services.BuildAnalyticsWorkbook(orders, expenses)
	if err != nil {
		logrus.Errorf("failed to build analytics workbook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPORT_ERROR",
				"message": "Failed to build export",
			},
		})
		return
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		logrus.Errorf("failed to serialize analytics workbook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPORT_ERROR",
				"message": "Failed to build export",
			},
		})
		return
	}

	filename := fmt.Sprintf("washbook-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func respondAnalyticsError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Failed to compute analytics",
		},
	})
}
