package model

import (
	"time"

	"gorm.io/gorm"
)

// 课时包状态
const (
	PackageStatusActive    = "active"    // 使用中
	PackageStatusCompleted = "completed" // 课时已用完
	PackageStatusExpired   = "expired"   // 已过期
	PackageStatusCancelled = "cancelled" // 已取消
)

// LessonPackage 课时包，学员预付的一组课时
type LessonPackage struct {
	ID          uint    `gorm:"primarykey"`
	StudentID   uint    `gorm:"index;comment:学员ID"`
	Name        string  `gorm:"size:128"`
	TotalHours  int     `gorm:"comment:总课时"`
	UsedHours   int     `gorm:"default:0;comment:已消耗课时"`
	Price       float64 `gorm:"comment:售价"`
	PurchasedAt time.Time
	ExpiresAt   time.Time `gorm:"index"` // 购买时间 + 有效天数
	Status      string    `gorm:"size:20;index;default:active"` // active, completed, expired, cancelled
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// RemainingHours 剩余可用课时
func (p *LessonPackage) RemainingHours() int {
	return p.TotalHours - p.UsedHours
}

// IsExpired 是否已超过有效期
func (p *LessonPackage) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}

// ConsumeRecord 课时消耗记录
type ConsumeRecord struct {
	ID         uint `gorm:"primarykey"`
	PackageID  uint `gorm:"index;comment:课时包ID"`
	StudentID  uint `gorm:"index;comment:学员ID"`
	CourseID   uint `gorm:"index;comment:课程ID"`
	Hours      int  `gorm:"comment:消耗课时数"`
	OperatorID uint `gorm:"comment:操作人ID"` // 执行扣课时的教师或管理员
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
