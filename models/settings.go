package models

import (
	"time"
)

// BusinessSettings holds the shop profile shown on bills and in the SPA
// header. The table holds a single row.
type BusinessSettings struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ShopName       string    `gorm:"not null;default:'Washbook Laundry'" json:"shop_name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	CurrencySymbol string    `gorm:"not null;default:'₹'" json:"currency_symbol"`
	LogoKey        *string   `json:"logo_key,omitempty"`
	LogoURL        *string   `gorm:"-" json:"logo_url,omitempty"` // computed, presigned URL
	FaviconKey     *string   `json:"favicon_key,omitempty"`
	FaviconURL     *string   `gorm:"-" json:"favicon_url,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for the BusinessSettings model
func (BusinessSettings) TableName() string {
	return "business_settings"
}
