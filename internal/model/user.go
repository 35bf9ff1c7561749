package model

import (
	"time"

	"gorm.io/gorm"
)

// 用户角色
const (
	RoleAdmin   = "admin"   // 管理员
	RoleTeacher = "teacher" // 教师
	RoleStudent = "student" // 学员
)

// 用户状态
const (
	UserStatusActive    = "active"    // 正常
	UserStatusInactive  = "inactive"  // 停用
	UserStatusSuspended = "suspended" // 冻结
)

type User struct {
	ID        uint   `gorm:"primarykey"`
	Username  string `gorm:"size:64;index"`
	Password  string `gorm:"size:128"`
	Name      string `gorm:"size:64"`
	Phone     string `gorm:"size:20"`
	Email     string `gorm:"size:128"`
	Avatar    string `gorm:"size:255"`
	Role      string `gorm:"size:20;index;default:student"` // admin, teacher, student
	Status    string `gorm:"size:20;default:active"`        // active, inactive, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// IsActive 账号是否可用
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
