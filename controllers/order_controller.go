package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/washbook/washbook-api/authz"
	"github.com/washbook/washbook-api/config"
	"github.com/washbook/washbook-api/lifecycle"
	"github.com/washbook/washbook-api/middleware"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/pricing"
	"github.com/washbook/washbook-api/services"
	"github.com/washbook/washbook-api/validation"
)

// ServiceLineRequest represents one service line in an order payload.
// The line total is never read from the client; it is always recomputed.
type ServiceLineRequest struct {
	ServiceType string  `json:"service_type"`
	ClothType   string  `json:"cloth_type"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
}

// OrderRequest represents the request body for creating or updating an order
type OrderRequest struct {
	CustomerName  string               `json:"customer_name"`
	ContactNumber string               `json:"contact_number"`
	Address       string               `json:"address"`
	OrderDate     string               `json:"order_date"` // YYYY-MM-DD
	ServiceLines  []ServiceLineRequest `json:"service_lines"`
}

// UpdateStatusRequest represents the request body for PATCH /orders/:id/status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentRequest represents the request body for PATCH /orders/:id/payment
type UpdatePaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// RejectOrderRequest represents the request body for PATCH /orders/:id/reject
type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

// validateOrderRequest runs the declarative field rules over the payload
// and returns the complete error map when anything fails.
func validateOrderRequest(req *OrderRequest) (bool, map[string]string) {
	form := validation.NewForm(map[string][]validation.Rule{
		"customer_name": {
			validation.Required("Customer name is required"),
			validation.MinLength(2, ""),
			validation.MaxLength(100, ""),
		},
		"contact_number": {
			validation.Required("Contact number is required"),
			validation.Phone(""),
		},
		"order_date": {
			validation.Required("Order date is required"),
			validation.Custom(func(value string) bool {
				_, err := time.Parse("2006-01-02", value)
				return err == nil
			}, "Order date must be in YYYY-MM-DD format"),
		},
		"service_lines": {
			validation.Custom(func(value string) bool {
				n, err := strconv.Atoi(value)
				return err == nil && n > 0
			}, "At least one service is required"),
		},
	})
	form.SetValue("customer_name", req.CustomerName)
	form.SetValue("contact_number", req.ContactNumber)
	form.SetValue("order_date", req.OrderDate)
	form.SetValue("service_lines", strconv.Itoa(len(req.ServiceLines)))

	valid, errs := form.ValidateAll()

	for i, line := range req.ServiceLines {
		prefix := fmt.Sprintf("service_lines[%d]", i)
		if !models.IsValidServiceType(line.ServiceType) {
			errs[prefix+".service_type"] = "Unknown service type"
		}
		if !models.IsValidClothType(line.ClothType) {
			errs[prefix+".cloth_type"] = "Unknown cloth type"
		}
		if msg := validation.ValidateValue(strconv.Itoa(line.Quantity), []validation.Rule{
			validation.PositiveNumber("Quantity must be a positive number"),
			validation.Integer("Quantity must be a whole number"),
		}); msg != "" {
			errs[prefix+".quantity"] = msg
		}
		if line.UnitCost < 0 {
			errs[prefix+".unit_cost"] = "Unit cost cannot be negative"
		}
	}

	return valid && len(errs) == 0, errs
}

// buildServiceLines maps the payload lines to models with totals recomputed
func buildServiceLines(req *OrderRequest) []models.ServiceLine {
	lines := make([]models.ServiceLine, 0, len(req.ServiceLines))
	for _, line := range req.ServiceLines {
		lines = append(lines, models.ServiceLine{
			ServiceType: line.ServiceType,
			ClothType:   line.ClothType,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
		})
	}
	return pricing.Recalculate(lines)
}

// newOrderNumber assigns a server-side order number
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateOrder handles POST /api/v1/orders - creates a new order
func CreateOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if valid, errs := validateOrderRequest(&req); !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order data is invalid",
				"details": errs,
			},
		})
		return
	}

	orderDate, _ := time.Parse("2006-01-02", req.OrderDate)
	lines := buildServiceLines(&req)

	order := models.Order{
		OrderNumber:   newOrderNumber(),
		CustomerName:  req.CustomerName,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		OrderDate:     orderDate,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		TotalAmount:   pricing.OrderTotal(lines),
		ServiceLines:  lines,
		CreatedByID:   user.ID,
	}

	db := config.GetDB()
	if err := db.Create(&order).Error; err != nil {
		logrus.Errorf("failed to create order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	// Load the creator relationship to return complete data
	if err := db.Preload("ServiceLines").Preload("CreatedBy").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists orders, newest first.
// Employees only see orders they created.
func ListOrders(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	query := db.Preload("ServiceLines").Preload("CreatedBy").Order("created_at DESC")

	if user.Role == models.RoleEmployee {
		query = query.Where("created_by_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if payment := c.Query("payment_status"); payment != "" {
		query = query.Where("payment_status = ?", payment)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	order, _, ok := loadOrderForRequest(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - replaces the order's
// fields and its service line list wholesale.
func UpdateOrder(c *gin.Context) {
	order, user, ok := loadOrderForRequest(c)
	if !ok {
		return
	}

	if !authz.CanEditOrder(user.Role, order) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "This order can no longer be edited",
			},
		})
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if valid, errs := validateOrderRequest(&req); !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order data is invalid",
				"details": errs,
			},
		})
		return
	}

	orderDate, _ := time.Parse("2006-01-02", req.OrderDate)
	lines := buildServiceLines(&req)

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		// Lines are owned by the order: replace the whole list
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.ServiceLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		return tx.Model(order).Updates(map[string]interface{}{
			"customer_name":  req.CustomerName,
			"contact_number": req.ContactNumber,
			"address":        req.Address,
			"order_date":     orderDate,
			"total_amount":   pricing.OrderTotal(lines),
		}).Error
	})
	if err != nil {
		logrus.Errorf("failed to update order %d: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	var updated models.Order
	if err := db.Preload("ServiceLines").Preload("CreatedBy").First(&updated, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - marks a
// Pending order Completed.
func UpdateOrderStatus(c *gin.Context) {
	order, user, ok := loadOrderForRequest(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status != models.OrderStatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Status must be \"Completed\"; rejection has its own endpoint",
			},
		})
		return
	}

	if err := lifecycle.MarkCompleted(order, user); err != nil {
		respondLifecycleError(c, err)
		return
	}

	db := config.GetDB()
	if err := db.Model(order).Update("status", order.Status).Error; err != nil {
		logrus.Errorf("failed to persist status for order %d: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderPayment handles PATCH /api/v1/orders/:id/payment
func UpdateOrderPayment(c *gin.Context) {
	order, user, ok := loadOrderForRequest(c)
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "payment_status is required",
			},
		})
		return
	}

	if err := lifecycle.SetPaymentStatus(order, user, req.PaymentStatus); err != nil {
		respondLifecycleError(c, err)
		return
	}

	db := config.GetDB()
	if err := db.Model(order).Update("payment_status", order.PaymentStatus).Error; err != nil {
		logrus.Errorf("failed to persist payment status for order %d: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update payment status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// RejectOrder handles PATCH /api/v1/orders/:id/reject
func RejectOrder(c *gin.Context) {
	order, user, ok := loadOrderForRequest(c)
	if !ok {
		return
	}

	var req RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
			},
		})
		return
	}

	if err := lifecycle.Reject(order, user, req.Reason); err != nil {
		respondLifecycleError(c, err)
		return
	}

	db := config.GetDB()
	if err := db.Model(order).Updates(map[string]interface{}{
		"status":           order.Status,
		"rejection_reason": order.RejectionReason,
		"rejected_at":      order.RejectedAt,
	}).Error; err != nil {
		logrus.Errorf("failed to persist rejection for order %d: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to reject order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id (admin roles only)
func DeleteOrder(c *gin.Context) {
	order, _, ok := loadOrderForRequest(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Delete(order).Error; err != nil {
		logrus.Errorf("failed to delete order %d: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// GetOrderBill handles GET /api/v1/orders/:id/bill - derives the bill
// projection from a Completed order.
func GetOrderBill(c *gin.Context) {
	order, _, ok := loadOrderForRequest(c)
	if !ok {
		return
	}

	bill, err := lifecycle.GenerateBill(order)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bill,
	})
}

// GetOrderBillQR handles GET /api/v1/orders/:id/bill/qr - returns a PNG
// QR code pointing at the bill, for printing on receipts.
func GetOrderBillQR(c *gin.Context) {
	order, _, ok := loadOrderForRequest(c)
	if !ok {
		return
	}

	if order.Status != models.OrderStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "Bills can only be generated for completed orders",
			},
		})
		return
	}

	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}
	billURL := fmt.Sprintf("%s://%s/api/v1/orders/%d/bill", scheme, c.Request.Host, order.ID)

	png, err := services.GenerateBillQR(billURL)
	if err != nil {
		logrus.Errorf("failed to generate bill QR for order %d: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QR_ERROR",
				"message": "Failed to generate QR code",
			},
		})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// loadOrderForRequest resolves the :id parameter, enforces employee
// ownership and writes the error response itself when it returns !ok.
func loadOrderForRequest(c *gin.Context) (*models.Order, *models.User, bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, nil, false
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order id must be numeric",
			},
		})
		return nil, nil, false
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("ServiceLines").Preload("CreatedBy").First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return nil, nil, false
	}

	if user.Role == models.RoleEmployee && order.CreatedByID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Employees can only access their own orders",
			},
		})
		return nil, nil, false
	}

	return &order, user, true
}

// respondLifecycleError maps transition guard errors onto the envelope
func respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You are not allowed to perform this transition",
			},
		})
	case errors.Is(err, lifecycle.ErrReasonRequired), errors.Is(err, lifecycle.ErrReasonTooLong):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
	case errors.Is(err, lifecycle.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "The order's current state does not allow this transition",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Unexpected transition failure",
			},
		})
	}
}
