package domain

import "time"

// CartItem is one line of a user's cart. The (user, product) pair is unique.
type CartItem struct {
	ID        uint64    `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"-" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID uint64    `json:"productId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int64     `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
