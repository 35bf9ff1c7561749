package model

import (
	"time"

	"gorm.io/gorm"
)

// 课程状态
const (
	CourseStatusScheduled  = "scheduled"   // 已排课
	CourseStatusInProgress = "in_progress" // 上课中
	CourseStatusCompleted  = "completed"   // 已结课
	CourseStatusCancelled  = "cancelled"   // 已取消
)

// 报名状态
const (
	EnrollmentStatusEnrolled  = "enrolled"  // 已报名
	EnrollmentStatusAttended  = "attended"  // 已上课
	EnrollmentStatusAbsent    = "absent"    // 缺课
	EnrollmentStatusCancelled = "cancelled" // 已取消
)

// Course 课程
type Course struct {
	ID           uint      `gorm:"primarykey"`
	TeacherID    uint      `gorm:"index;comment:授课教师ID"`
	Title        string    `gorm:"size:128"`
	Description  string    `gorm:"type:text"`
	StartTime    time.Time `gorm:"index"`
	EndTime      time.Time
	Capacity     int    `gorm:"default:0;comment:容量上限"`
	StudentCount int    `gorm:"default:0;comment:当前报名人数"` // 与有效报名记录数保持一致，随报名/退课在同一事务内更新
	Classroom    string `gorm:"size:64"`
	Status       string `gorm:"size:20;index;default:scheduled"` // scheduled, in_progress, completed, cancelled
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// IsFull 是否已满员
func (c *Course) IsFull() bool {
	return c.Capacity > 0 && c.StudentCount >= c.Capacity
}

// CanDelete 仅未开课或已取消的课程可以删除
func (c *Course) CanDelete() bool {
	return c.Status == CourseStatusScheduled || c.Status == CourseStatusCancelled
}

// Enrollment 报名记录（学员-课程关联）
type Enrollment struct {
	ID         uint      `gorm:"primarykey"`
	CourseID   uint      `gorm:"index:idx_course_student;comment:课程ID"`
	StudentID  uint      `gorm:"index:idx_course_student;comment:学员ID"`
	Status     string    `gorm:"size:20;default:enrolled"` // enrolled, attended, absent, cancelled
	EnrolledAt time.Time // 报名时间
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// IsActive 报名是否有效（未取消）
func (e *Enrollment) IsActive() bool {
	return e.Status != EnrollmentStatusCancelled
}
