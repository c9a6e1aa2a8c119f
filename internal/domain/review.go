package domain

import "time"

type Review struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserName  string    `json:"userName" gorm:"size:120;not null;index"`
	ProductID uint64    `json:"productId" gorm:"not null;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
