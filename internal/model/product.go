package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog entry. StockCount is only ever decremented
// through a conditional update so it cannot go negative.
type Product struct {
	ID              uuid.UUID           `json:"id" gorm:"type:char(36);primaryKey"`
	Name            string              `json:"name" gorm:"size:255;not null;index"`
	Slug            string              `json:"slug" gorm:"size:255;not null"`
	CategoryID      uuid.UUID           `json:"category_id" gorm:"type:char(36);index"`
	Description     string              `json:"description" gorm:"type:text"`
	Price           decimal.Decimal     `json:"price" gorm:"type:decimal(10,2);not null"`
	DiscountedPrice decimal.NullDecimal `json:"discounted_price" gorm:"type:decimal(10,2)"`
	StockCount      int                 `json:"stock_count" gorm:"not null;default:0"`
	Bestseller      bool                `json:"bestseller" gorm:"default:false;index"`
	FeaturedImage   string              `json:"featured_image" gorm:"size:512"`
	Gallery         []string            `json:"gallery" gorm:"serializer:json"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `json:"-" gorm:"index"`

	// Relations
	Category Category `json:"-" gorm:"foreignKey:CategoryID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EffectivePrice is the price a buyer actually pays: the discounted price when
// set, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice.Valid {
		return p.DiscountedPrice.Decimal
	}
	return p.Price
}
