package model

import (
	"time"

	"gorm.io/gorm"
)

// 考勤状态
const (
	AttendanceStatusPresent = "present" // 出勤
	AttendanceStatusAbsent  = "absent"  // 缺勤
	AttendanceStatusLate    = "late"    // 迟到
	AttendanceStatusLeave   = "leave"   // 请假
)

// AttendanceRecord 考勤记录，每个学员每门课程至多一条
type AttendanceRecord struct {
	ID         uint   `gorm:"primarykey"`
	CourseID   uint   `gorm:"index:idx_attendance_course_student;comment:课程ID"`
	StudentID  uint   `gorm:"index:idx_attendance_course_student;comment:学员ID"`
	Status     string `gorm:"size:20;default:present"` // present, absent, late, leave
	Notes      string `gorm:"size:255"`
	RecordedBy uint   `gorm:"comment:记录人ID"` // 课程教师或管理员
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
