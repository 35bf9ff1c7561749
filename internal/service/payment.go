package service

import (
	"errors"
	"time"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

var Payment = new(PaymentService)

type PaymentService struct{}

// 支付状态允许的流转
var paymentTransitions = map[string][]string{
	model.PaymentStatusPending: {model.PaymentStatusPaid, model.PaymentStatusFailed},
	model.PaymentStatusPaid:    {model.PaymentStatusRefunded},
}

// CreateStandalone 创建独立收款记录，不关联课时包
// 如杂费、补缴等线下收款场景
func (s *PaymentService) CreateStandalone(studentID uint, amount float64, method, remark string, paid bool) (*model.Payment, error) {
	if amount <= 0 {
		return nil, errors.New("金额必须大于0")
	}

	var student model.User
	if err := database.DB.First(&student, studentID).Error; err != nil || student.Role != model.RoleStudent {
		return nil, errors.New("学员不存在")
	}

	payment := model.Payment{
		PaymentNo: generatePaymentNo(),
		StudentID: studentID,
		Amount:    amount,
		Method:    method,
		Status:    model.PaymentStatusPending,
		Remark:    remark,
	}
	if paid {
		now := time.Now()
		payment.Status = model.PaymentStatusPaid
		payment.PaidAt = &now
	}

	if err := database.DB.Create(&payment).Error; err != nil {
		return nil, err
	}

	return &payment, nil
}

// UpdateStatus 流转支付状态
// 只允许 pending -> paid/failed，paid -> refunded
func (s *PaymentService) UpdateStatus(paymentID uint, target string) (*model.Payment, error) {
	var payment model.Payment
	if err := database.DB.First(&payment, paymentID).Error; err != nil {
		return nil, errors.New("支付记录不存在")
	}

	allowed := false
	for _, next := range paymentTransitions[payment.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.New("不允许的状态流转")
	}

	updates := map[string]interface{}{
		"status": target,
	}
	if target == model.PaymentStatusPaid {
		now := time.Now()
		updates["paid_at"] = &now
		payment.PaidAt = &now
	}

	if err := database.DB.Model(&payment).Updates(updates).Error; err != nil {
		return nil, err
	}
	payment.Status = target

	return &payment, nil
}
