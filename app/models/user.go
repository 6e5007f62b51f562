package models

import "time"

// User is a shop customer account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"size:255" json:"-"`
	Phone          *string   `gorm:"size:20" json:"phone"`
	WechatOpenID   *string   `gorm:"size:100;uniqueIndex" json:"wechat_openid"`
	WechatNickname *string   `gorm:"size:100" json:"wechat_nickname"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
