package entity

import "time"

type UserRole struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	Role      string `gorm:"primaryKey"`
	CreatedAt time.Time
}
