// Package authz is the single policy definition for role-based access.
// The same permission strings are enforced on API routes and mirrored by
// the SPA to decide which controls to render, so both tiers read from one
// table instead of drifting apart.
package authz

import (
	"github.com/washbook/washbook-api/models"
)

// Permission strings are colon-separated capability tokens checked
// against a role's static permission set.
const (
	Wildcard = "*"

	OrdersCreate = "orders:create"
	OrdersRead   = "orders:read"
	OrdersUpdate = "orders:update"
	OrdersDelete = "orders:delete"
	OrdersReject = "orders:reject"

	ExpensesCreate = "expenses:create"
	ExpensesRead   = "expenses:read"
	ExpensesUpdate = "expenses:update"
	ExpensesDelete = "expenses:delete"

	AnalyticsRead = "analytics:read"
	DashboardRead = "dashboard:read"

	SettingsRead   = "settings:read"
	SettingsUpdate = "settings:update"

	UsersManage = "users:manage"
)

// rolePermissions is the static role -> permission set table. It is
// immutable, process-wide data and safe to share without locking.
var rolePermissions = map[string][]string{
	models.RoleEmployee: {
		OrdersCreate,
		OrdersRead,
		OrdersUpdate, // limited further by CanEditOrder
		ExpensesCreate,
		ExpensesRead,
	},
	models.RoleAdmin: {
		OrdersCreate,
		OrdersRead,
		OrdersUpdate,
		OrdersDelete,
		OrdersReject,
		ExpensesCreate,
		ExpensesRead,
		ExpensesUpdate,
		ExpensesDelete,
		AnalyticsRead,
		DashboardRead,
	},
	models.RoleSuperAdmin: {
		Wildcard,
	},
}

// PermissionsFor returns the permission set for a role. An unknown or
// invalid role yields an empty set: authorization fails closed, not open.
// The set is recomputed on every call; there is no caching to go stale
// across role changes.
func PermissionsFor(role string) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the role's set contains the wildcard or
// the exact permission string.
func HasPermission(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == Wildcard || p == permission {
			return true
		}
	}
	return false
}

// CanEditOrder answers whether a user with the given role may edit the
// order. Employees lose edit rights the moment an order is finalized or
// paid, whichever comes first; admin roles keep them as long as they hold
// orders:update. A nil order is never editable.
func CanEditOrder(role string, order *models.Order) bool {
	if order == nil {
		return false
	}
	if !HasPermission(role, OrdersUpdate) {
		return false
	}
	if role == models.RoleEmployee {
		return order.Status != models.OrderStatusCompleted &&
			order.PaymentStatus != models.PaymentStatusPaid
	}
	return true
}

// CanEditExpense answers whether the role may edit or delete expenses.
// Employees are create-only.
func CanEditExpense(role string) bool {
	return role != models.RoleEmployee && HasPermission(role, ExpensesUpdate)
}

// CanRejectOrder answers whether the role may reject orders
func CanRejectOrder(role string) bool {
	return HasPermission(role, OrdersReject)
}
