package model

import (
	"time"

	"gorm.io/gorm"
)

// LoginLog 登录日志
type LoginLog struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"index"`         // 登录用户ID，登录失败时可能为0
	Username   string `gorm:"size:64;index"` // 登录账号
	Role       string `gorm:"size:20"`       // 登录时的角色
	IP         string `gorm:"size:64"`       // IP地址
	UserAgent  string `gorm:"size:255"`      // 设备UA
	IsSuccess  bool   `gorm:"default:false"` // 登录是否成功
	FailReason string `gorm:"size:255"`      // 失败原因，成功为空
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
