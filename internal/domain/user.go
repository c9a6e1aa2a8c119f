package domain

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleConsumer    Role = "consumer"
	RoleProducer    Role = "producer"
	RoleWholesaler  Role = "wholesaler"
	RoleSuperseller Role = "superseller"
)

var Roles = []Role{RoleAdmin, RoleConsumer, RoleProducer, RoleWholesaler, RoleSuperseller}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// RequiresApproval lists the roles an admin must approve before first login.
func (r Role) RequiresApproval() bool {
	return r == RoleProducer || r == RoleWholesaler || r == RoleSuperseller
}

type UserStatus string

const (
	UserPending  UserStatus = "pending"
	UserApproved UserStatus = "approved"
)

type User struct {
	ID           uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string     `json:"name" gorm:"size:120"`
	Phone        string     `json:"phone" gorm:"size:40;not null;uniqueIndex"`
	Email        *string    `json:"email,omitempty" gorm:"size:255;uniqueIndex"`
	NID          *string    `json:"nid,omitempty" gorm:"column:nid;size:40;uniqueIndex"`
	TradeLicense *string    `json:"tradeLicense,omitempty" gorm:"size:80;uniqueIndex"`
	Division     string     `json:"division,omitempty" gorm:"size:80"`
	District     string     `json:"district,omitempty" gorm:"size:80"`
	Thana        string     `json:"thana,omitempty" gorm:"size:80"`
	Address      string     `json:"address,omitempty" gorm:"size:255"`
	Image        string     `json:"image,omitempty" gorm:"size:512"`
	PasswordHash string     `json:"-" gorm:"column:password;size:255;not null"`
	Role         Role       `json:"role" gorm:"size:20;not null;index"`
	Status       UserStatus `json:"status" gorm:"size:20;not null;index"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
