package models

import (
	"time"

	"gorm.io/gorm"
)

// Order status values. Completed and Rejected are terminal; there is no
// transition back to Pending.
const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
	OrderStatusRejected  = "Rejected"
)

// Payment status values. The payment axis is independent of the order
// status axis.
const (
	PaymentStatusUnpaid = "Unpaid"
	PaymentStatusPaid   = "Paid"
)

// Service types offered by the shop
const (
	ServiceWashing      = "washing"
	ServiceIroning      = "ironing"
	ServiceDryClean     = "dryclean"
	ServiceStainRemoval = "stain_removal"
)

// Cloth types handled by the shop
const (
	ClothSaari  = "saari"
	ClothNormal = "normal"
	ClothOthers = "others"
)

// ServiceTypes lists the valid service types in display order. The first
// entry is the default for a freshly added line.
var ServiceTypes = []string{ServiceWashing, ServiceIroning, ServiceDryClean, ServiceStainRemoval}

// ClothTypes lists the valid cloth types in display order
var ClothTypes = []string{ClothSaari, ClothNormal, ClothOthers}

// Order represents a customer laundry order
type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OrderNumber     string         `gorm:"uniqueIndex;not null" json:"order_number"` // server-assigned
	CustomerName    string         `gorm:"not null" json:"customer_name"`
	ContactNumber   string         `gorm:"not null" json:"contact_number"`
	Address         string         `json:"address"`
	OrderDate       time.Time      `gorm:"not null" json:"order_date"`
	Status          string         `gorm:"not null;default:'Pending'" json:"status"`
	PaymentStatus   string         `gorm:"not null;default:'Unpaid'" json:"payment_status"`
	TotalAmount     float64        `gorm:"not null" json:"total_amount"` // recomputed from lines on every write
	RejectionReason *string        `json:"rejection_reason,omitempty"`   // set iff status = Rejected
	RejectedAt      *time.Time     `json:"rejected_at,omitempty"`
	ServiceLines    []ServiceLine  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"service_lines"`
	CreatedByID     uint           `gorm:"not null;index" json:"created_by_id"`
	CreatedBy       User           `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// ServiceLine represents one row of an order: a quantity of a given
// service/cloth-type combination at a unit price.
type ServiceLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"not null;index" json:"order_id"`
	ServiceType string  `gorm:"not null" json:"service_type"`
	ClothType   string  `gorm:"not null" json:"cloth_type"`
	Quantity    int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitCost    float64 `gorm:"not null" json:"unit_cost"`
	TotalCost   float64 `gorm:"not null" json:"total_cost"` // always quantity * unit_cost, never client-supplied
}

// TableName specifies the table name for the ServiceLine model
func (ServiceLine) TableName() string {
	return "service_lines"
}

// IsValidServiceType reports whether s is a known service type
func IsValidServiceType(s string) bool {
	for _, t := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// IsValidClothType reports whether s is a known cloth type
func IsValidClothType(s string) bool {
	for _, t := range ClothTypes {
		if s == t {
			return true
		}
	}
	return false
}
