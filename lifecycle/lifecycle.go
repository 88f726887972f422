// Package lifecycle holds the order status state machine and the bill
// projection derived from completed orders. The guards here only refuse
// illegal transitions locally; persistence happens elsewhere and can fail
// independently.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/washbook/washbook-api/authz"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/pricing"
)

// MaxRejectionReasonLength caps the rejection reason
const MaxRejectionReasonLength = 500

var (
	ErrNilOrder       = errors.New("order is nil")
	ErrNilActor       = errors.New("actor is nil")
	ErrInvalidState   = errors.New("transition not allowed from current state")
	ErrForbidden      = errors.New("actor may not perform this transition")
	ErrReasonRequired = errors.New("a rejection reason is required")
	ErrReasonTooLong  = fmt.Errorf("rejection reason exceeds %d characters", MaxRejectionReasonLength)
)

// Bill is a read-only projection of a completed order's totals and line
// items. It is derived, never persisted, and regenerating it for an
// unchanged order yields the same values.
type Bill struct {
	BillNumber    string     `json:"bill_number"`
	OrderID       uint       `json:"order_id"`
	OrderNumber   string     `json:"order_number"`
	CustomerName  string     `json:"customer_name"`
	ContactNumber string     `json:"contact_number"`
	Address       string     `json:"address,omitempty"`
	OrderDate     time.Time  `json:"order_date"`
	Lines         []BillLine `json:"lines"`
	Subtotal      float64    `json:"subtotal"`
	TotalAmount   float64    `json:"total_amount"`
	PaymentStatus string     `json:"payment_status"`
}

// BillLine is the snapshot of one service line on a bill
type BillLine struct {
	ServiceType string  `json:"service_type"`
	ClothType   string  `json:"cloth_type"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	TotalCost   float64 `json:"total_cost"`
}

// MarkCompleted transitions a Pending order to Completed. The actor must
// either hold orders:update as an admin role, or be the employee who
// created the order while it is still editable.
func MarkCompleted(order *models.Order, actor *models.User) error {
	if order == nil {
		return ErrNilOrder
	}
	if actor == nil {
		return ErrNilActor
	}
	if order.Status != models.OrderStatusPending {
		return ErrInvalidState
	}
	if !canTransition(order, actor) {
		return ErrForbidden
	}
	order.Status = models.OrderStatusCompleted
	return nil
}

// Reject transitions an order to Rejected and records the reason and a
// rejection timestamp. Only roles holding orders:reject may reject, the
// order must not already be Rejected, and the reason must be non-empty
// after trimming and at most MaxRejectionReasonLength characters.
// Rejection is not reversible.
func Reject(order *models.Order, actor *models.User, reason string) error {
	if order == nil {
		return ErrNilOrder
	}
	if actor == nil {
		return ErrNilActor
	}
	if !authz.CanRejectOrder(actor.Role) {
		return ErrForbidden
	}
	if order.Status == models.OrderStatusRejected {
		return ErrInvalidState
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if len([]rune(reason)) > MaxRejectionReasonLength {
		return ErrReasonTooLong
	}
	now := time.Now()
	order.Status = models.OrderStatusRejected
	order.RejectionReason = &reason
	order.RejectedAt = &now
	return nil
}

// SetPaymentStatus toggles the payment axis. Rejected orders refuse any
// payment change. Admin roles may move in either direction; an employee
// may mark an Unpaid order Paid but never revert Paid back to Unpaid.
func SetPaymentStatus(order *models.Order, actor *models.User, status string) error {
	if order == nil {
		return ErrNilOrder
	}
	if actor == nil {
		return ErrNilActor
	}
	if status != models.PaymentStatusPaid && status != models.PaymentStatusUnpaid {
		return fmt.Errorf("unknown payment status %q: %w", status, ErrInvalidState)
	}
	if order.Status == models.OrderStatusRejected {
		return ErrInvalidState
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleSuperAdmin:
		// unconditional on the payment axis
	case models.RoleEmployee:
		if order.PaymentStatus != models.PaymentStatusUnpaid || status != models.PaymentStatusPaid {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}
	order.PaymentStatus = status
	return nil
}

// GenerateBill derives the bill projection from a Completed order. It is
// a pure function of the order's current line items: calling it twice on
// an unchanged order produces identical values.
func GenerateBill(order *models.Order) (*Bill, error) {
	if order == nil {
		return nil, ErrNilOrder
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, ErrInvalidState
	}

	lines := make([]BillLine, 0, len(order.ServiceLines))
	var subtotal float64
	for _, sl := range order.ServiceLines {
		total := pricing.LineTotal(sl)
		subtotal += total
		lines = append(lines, BillLine{
			ServiceType: sl.ServiceType,
			ClothType:   sl.ClothType,
			Quantity:    sl.Quantity,
			UnitCost:    sl.UnitCost,
			TotalCost:   total,
		})
	}

	return &Bill{
		BillNumber:    billNumber(order.OrderNumber),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		ContactNumber: order.ContactNumber,
		Address:       order.Address,
		OrderDate:     order.OrderDate,
		Lines:         lines,
		Subtotal:      subtotal,
		TotalAmount:   subtotal,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

// canTransition mirrors the edit rules: admin roles need orders:update,
// the creating employee keeps the right while the order is editable.
func canTransition(order *models.Order, actor *models.User) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return authz.HasPermission(actor.Role, authz.OrdersUpdate)
	case models.RoleEmployee:
		return actor.ID == order.CreatedByID && authz.CanEditOrder(actor.Role, order)
	}
	return false
}

func billNumber(orderNumber string) string {
	return "BILL-" + strings.TrimPrefix(orderNumber, "ORD-")
}
