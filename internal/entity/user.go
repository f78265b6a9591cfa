package entity

import "github.com/questx-lab/social-discord/pkg/enum"

type UserStatus string

var (
	UserActive  = enum.New(UserStatus("active"))
	UserBlocked = enum.New(UserStatus("blocked"))
)

type User struct {
	Base
	Name      string
	Email     string `gorm:"index"`
	AvatarURL string
	Status    UserStatus
}
