package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is one catalog row. SKU is the identity: the column is citext so
// uniqueness (and upsert conflict detection) is case-insensitive at the
// storage layer, not in application code.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SKU         string          `gorm:"column:sku;type:citext;uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Description *string         `gorm:"column:description;type:text" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Currency    string          `gorm:"column:currency;type:varchar(3);not null;default:'USD'" json:"currency"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
