package domain

import "time"

type WishlistEntry struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"-" gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID uint64    `json:"productId" gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	AddedAt   time.Time `json:"addedAt" gorm:"not null;index"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
