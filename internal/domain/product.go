package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry owned by a producer. Price and quantity are kept
// in text columns for compatibility with rows written by older clients; the
// typed UnitPrice and Stock fields are filled in whenever a row is loaded.
type Product struct {
	ID              uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProducerID      uint64    `json:"producerId" gorm:"not null;index"`
	Name            string    `json:"productName" gorm:"column:product_name;size:255;not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Category        string    `json:"category" gorm:"size:120;index"`
	RawPrice        string    `json:"-" gorm:"column:price;size:64;not null"`
	RawQuantity     string    `json:"-" gorm:"column:quantity;size:64"`
	AddToSellPost   *string   `json:"addToSellPost,omitempty" gorm:"column:add_to_sell_post;size:32"`
	Image           string    `json:"image" gorm:"size:512"`
	SecondaryImages []string  `json:"secondaryImages" gorm:"type:text;serializer:json"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	UnitPrice  decimal.Decimal `json:"price" gorm:"-"`
	PriceValid bool            `json:"-" gorm:"-"`
	Stock      Stock           `json:"quantity" gorm:"-"`
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.Normalize()
	return nil
}

// Normalize parses the raw price and quantity columns.
func (p *Product) Normalize() {
	price, err := ParsePrice(p.RawPrice)
	p.UnitPrice = price
	p.PriceValid = err == nil
	p.Stock = ParseStock(p.RawQuantity)
}

func (p *Product) SetPrice(price decimal.Decimal) {
	p.RawPrice = price.String()
	p.UnitPrice = price
	p.PriceValid = !price.IsNegative()
}

func (p *Product) SetStock(s Stock) {
	p.RawQuantity = s.Raw()
	p.Stock = s
}

func publishFlag(p *Product) string {
	if p.AddToSellPost == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*p.AddToSellPost))
}

// Withdrawn is true only when the publish flag is explicitly "no". An absent
// flag counts as available for ordering.
func (p *Product) Withdrawn() bool {
	return publishFlag(p) == "no"
}

// Listed reports whether the product is shown in the public catalog.
func (p *Product) Listed() bool {
	return strings.HasPrefix(publishFlag(p), "yes")
}

// PrimaryImage is the image captured into order snapshots.
func (p *Product) PrimaryImage() string {
	if p.Image != "" {
		return p.Image
	}
	if len(p.SecondaryImages) > 0 {
		return p.SecondaryImages[0]
	}
	return ""
}

type Category struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:120;not null;uniqueIndex"`
	Icon        string    `json:"icon,omitempty" gorm:"size:512"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
}
