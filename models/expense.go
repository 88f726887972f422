package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense represents a business expense recorded by staff
type Expense struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ExpenseType   string         `gorm:"not null" json:"expense_type"` // free-text category
	Amount        float64        `gorm:"not null;check:amount > 0" json:"amount"`
	ExpenseDate   time.Time      `gorm:"not null" json:"expense_date"` // never in the future
	AttachmentKey *string        `json:"attachment_key,omitempty"`     // S3 key of the bill attachment
	AttachmentURL *string        `gorm:"-" json:"attachment_url,omitempty"` // computed, presigned URL
	CreatedByID   uint           `gorm:"not null;index" json:"created_by_id"`
	CreatedBy     User           `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
