package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Username  string    `gorm:"size:50;unique;not null" json:"username"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	LastLogin time.Time `gorm:"autoCreateTime" json:"lastLogin"`
	LastSeen  time.Time `gorm:"autoCreateTime" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
