package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

var Package = new(PackageService)

type PackageService struct{}

// Purchase 学员购买课时包
// 课时包和已支付的支付记录在同一事务内创建
func (s *PackageService) Purchase(studentID uint, name string, totalHours int, price float64, validityDays int, method string) (*model.LessonPackage, *model.Payment, error) {
	if totalHours <= 0 {
		return nil, nil, errors.New("总课时必须大于0")
	}
	if validityDays <= 0 {
		return nil, nil, errors.New("有效天数必须大于0")
	}

	var pkg *model.LessonPackage
	var payment *model.Payment

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		pkg = &model.LessonPackage{
			StudentID:   studentID,
			Name:        name,
			TotalHours:  totalHours,
			UsedHours:   0,
			Price:       price,
			PurchasedAt: now,
			ExpiresAt:   now.AddDate(0, 0, validityDays),
			Status:      model.PackageStatusActive,
		}
		if err := tx.Create(pkg).Error; err != nil {
			return err
		}

		payment = &model.Payment{
			PaymentNo: generatePaymentNo(),
			StudentID: studentID,
			PackageID: &pkg.ID,
			Amount:    price,
			Method:    method,
			Status:    model.PaymentStatusPaid,
			PaidAt:    &now,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return pkg, payment, nil
}

// Consume 消耗课时
// 扣减课时、写消耗记录、必要时流转为已用完，在同一事务内完成
func (s *PackageService) Consume(packageID, courseID uint, hours int, operatorID uint) (*model.LessonPackage, error) {
	if hours <= 0 {
		return nil, errors.New("消耗课时必须大于0")
	}

	var pkg model.LessonPackage

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pkg, packageID).Error; err != nil {
			return errors.New("课时包不存在")
		}

		if pkg.Status != model.PackageStatusActive {
			return errors.New("课时包不可用")
		}
		if pkg.IsExpired() {
			return errors.New("课时包已过期")
		}
		if pkg.RemainingHours() < hours {
			return errors.New("剩余课时不足")
		}

		// 课程必须存在
		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return errors.New("课程不存在")
		}

		pkg.UsedHours += hours
		// 课时用完后流转为completed，不会自动恢复
		if pkg.UsedHours >= pkg.TotalHours {
			pkg.Status = model.PackageStatusCompleted
		}
		if err := tx.Model(&model.LessonPackage{}).Where("id = ?", pkg.ID).
			Updates(map[string]interface{}{
				"used_hours": pkg.UsedHours,
				"status":     pkg.Status,
			}).Error; err != nil {
			return err
		}

		record := model.ConsumeRecord{
			PackageID:  pkg.ID,
			StudentID:  pkg.StudentID,
			CourseID:   courseID,
			Hours:      hours,
			OperatorID: operatorID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &pkg, nil
}

// ExpireOverdue 将超过有效期的课时包批量流转为已过期
func (s *PackageService) ExpireOverdue() (int64, error) {
	result := database.DB.Model(&model.LessonPackage{}).
		Where("status = ? AND expires_at <= ?", model.PackageStatusActive, time.Now()).
		Update("status", model.PackageStatusExpired)
	return result.RowsAffected, result.Error
}

// generatePaymentNo 生成支付单号：时间戳 + uuid前8位
func generatePaymentNo() string {
	return time.Now().Format("20060102150405") + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
