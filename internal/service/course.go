package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

var Course = new(CourseService)

type CourseService struct{}

// 课程状态的先后顺序，只允许向前流转
var courseStatusRank = map[string]int{
	model.CourseStatusScheduled:  1,
	model.CourseStatusInProgress: 2,
	model.CourseStatusCompleted:  3,
}

// ValidateSchedule 校验课程时间窗口
// excludeID 大于0时表示更新场景，冲突检查时跳过自身
func (s *CourseService) ValidateSchedule(teacherID uint, startTime, endTime time.Time, excludeID uint) error {
	if !endTime.After(startTime) {
		return errors.New("结束时间必须晚于开始时间")
	}

	// 新建课程的开始时间不能早于当前时间
	if excludeID == 0 && startTime.Before(time.Now()) {
		return errors.New("开始时间不能早于当前时间")
	}

	// 同一教师的已排课/上课中课程时间不允许重叠
	// 区间按左闭右开处理：新课开始时间等于已有课程结束时间视为不冲突
	query := database.DB.Model(&model.Course{}).
		Where("teacher_id = ? AND status IN (?)", teacherID,
			[]string{model.CourseStatusScheduled, model.CourseStatusInProgress}).
		Where("start_time < ? AND end_time > ?", endTime, startTime)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("该时间段与教师已有课程冲突")
	}

	return nil
}

// UpdateStatus 更新课程状态，状态只能向前流转
func (s *CourseService) UpdateStatus(course *model.Course, newStatus string) error {
	if newStatus == course.Status {
		return errors.New("课程已是该状态")
	}

	// 已结课和已取消是终态
	if course.Status == model.CourseStatusCompleted || course.Status == model.CourseStatusCancelled {
		return errors.New("课程已结束，状态不可变更")
	}

	// 任意非终态都可以取消
	if newStatus == model.CourseStatusCancelled {
		return database.DB.Model(course).Update("status", newStatus).Error
	}

	newRank, ok := courseStatusRank[newStatus]
	if !ok {
		return errors.New("无效的课程状态")
	}
	if newRank <= courseStatusRank[course.Status] {
		return errors.New("课程状态不允许回退")
	}

	return database.DB.Model(course).Update("status", newStatus).Error
}

// Enroll 学员报名课程
// 报名记录和课程人数计数在同一事务内写入
func (s *CourseService) Enroll(courseID, studentID uint) (*model.Enrollment, error) {
	var enrollment *model.Enrollment

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return errors.New("课程不存在")
		}

		// 仅可报名已排课状态的课程
		if course.Status != model.CourseStatusScheduled {
			return errors.New("课程当前不可报名")
		}

		// 检查是否已有有效报名
		var count int64
		if err := tx.Model(&model.Enrollment{}).
			Where("course_id = ? AND student_id = ? AND status <> ?",
				courseID, studentID, model.EnrollmentStatusCancelled).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("已报名该课程")
		}

		// 容量检查
		if course.IsFull() {
			return errors.New("课程报名人数已满")
		}

		enrollment = &model.Enrollment{
			CourseID:   courseID,
			StudentID:  studentID,
			Status:     model.EnrollmentStatusEnrolled,
			EnrolledAt: time.Now(),
		}
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}

		// 同步课程人数
		if err := tx.Model(&model.Course{}).Where("id = ?", courseID).
			Update("student_count", gorm.Expr("student_count + 1")).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

// CancelEnrollment 学员退课
// 重复退课返回错误而不是静默成功
func (s *CourseService) CancelEnrollment(courseID, studentID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return errors.New("课程不存在")
		}

		// 开课后不允许退课
		if course.Status != model.CourseStatusScheduled {
			return errors.New("课程已开课，不可退课")
		}

		var enrollment model.Enrollment
		if err := tx.Where("course_id = ? AND student_id = ? AND status <> ?",
			courseID, studentID, model.EnrollmentStatusCancelled).
			First(&enrollment).Error; err != nil {
			return errors.New("未找到有效的报名记录")
		}

		if err := tx.Model(&enrollment).Update("status", model.EnrollmentStatusCancelled).Error; err != nil {
			return err
		}

		// 同步课程人数
		if err := tx.Model(&model.Course{}).Where("id = ? AND student_count > 0", courseID).
			Update("student_count", gorm.Expr("student_count - 1")).Error; err != nil {
			return err
		}

		return nil
	})
}
