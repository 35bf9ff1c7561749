package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

var Attendance = new(AttendanceService)

type AttendanceService struct{}

// BatchAttendanceItem 批量考勤中的一条记录
type BatchAttendanceItem struct {
	StudentID uint   `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Notes     string `json:"notes"`
}

var validAttendanceStatus = map[string]bool{
	model.AttendanceStatusPresent: true,
	model.AttendanceStatusAbsent:  true,
	model.AttendanceStatusLate:    true,
	model.AttendanceStatusLeave:   true,
}

// IsValidStatus 是否为合法的考勤状态
func (s *AttendanceService) IsValidStatus(status string) bool {
	return validAttendanceStatus[status]
}

// Create 创建单条考勤记录
// 学员必须有该课程的有效报名，且每个学员每门课程只能有一条记录
func (s *AttendanceService) Create(courseID, studentID uint, status, notes string, recordedBy uint) (*model.AttendanceRecord, error) {
	if !validAttendanceStatus[status] {
		return nil, errors.New("无效的考勤状态")
	}

	if err := s.checkEnrollment(database.DB, courseID, studentID); err != nil {
		return nil, err
	}

	var count int64
	if err := database.DB.Model(&model.AttendanceRecord{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("该学员的考勤记录已存在")
	}

	record := &model.AttendanceRecord{
		CourseID:   courseID,
		StudentID:  studentID,
		Status:     status,
		Notes:      notes,
		RecordedBy: recordedBy,
	}
	if err := database.DB.Create(record).Error; err != nil {
		return nil, err
	}

	return record, nil
}

// BatchCreate 批量创建考勤记录
// 任何一条校验失败则整批拒绝，不产生部分写入
func (s *AttendanceService) BatchCreate(courseID uint, items []BatchAttendanceItem, recordedBy uint) ([]model.AttendanceRecord, error) {
	if len(items) == 0 {
		return nil, errors.New("考勤列表不能为空")
	}

	var records []model.AttendanceRecord

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		seen := make(map[uint]bool, len(items))
		for _, item := range items {
			if !validAttendanceStatus[item.Status] {
				return fmt.Errorf("学员 %d 的考勤状态无效", item.StudentID)
			}
			if seen[item.StudentID] {
				return fmt.Errorf("学员 %d 在本批次中重复", item.StudentID)
			}
			seen[item.StudentID] = true

			// 学员必须存在且角色为学员
			var student model.User
			if err := tx.First(&student, item.StudentID).Error; err != nil {
				return fmt.Errorf("学员 %d 不存在", item.StudentID)
			}
			if student.Role != model.RoleStudent {
				return fmt.Errorf("用户 %d 不是学员", item.StudentID)
			}

			if err := s.checkEnrollment(tx, courseID, item.StudentID); err != nil {
				return fmt.Errorf("学员 %d %s", item.StudentID, err.Error())
			}

			var count int64
			if err := tx.Model(&model.AttendanceRecord{}).
				Where("course_id = ? AND student_id = ?", courseID, item.StudentID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("学员 %d 的考勤记录已存在", item.StudentID)
			}
		}

		// 校验全部通过后统一写入
		for _, item := range items {
			record := model.AttendanceRecord{
				CourseID:   courseID,
				StudentID:  item.StudentID,
				Status:     item.Status,
				Notes:      item.Notes,
				RecordedBy: recordedBy,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			records = append(records, record)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// checkEnrollment 检查学员是否有课程的有效报名
func (s *AttendanceService) checkEnrollment(tx *gorm.DB, courseID, studentID uint) error {
	var count int64
	if err := tx.Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ? AND status <> ?",
			courseID, studentID, model.EnrollmentStatusCancelled).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errors.New("未报名该课程")
	}
	return nil
}

// CanManage 是否有权管理该课程的考勤（课程教师或管理员）
func (s *AttendanceService) CanManage(user *model.User, course *model.Course) bool {
	if user.Role == model.RoleAdmin {
		return true
	}
	return user.Role == model.RoleTeacher && course.TeacherID == user.ID
}
