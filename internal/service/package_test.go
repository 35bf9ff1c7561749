package service

import (
	"testing"
	"time"

	"github.com/tiantingrui/course-manage/internal/model"
)

func TestPurchase(t *testing.T) {
	db := setupTestDB(t)
	student := createTestUser(t, db, "student1", model.RoleStudent)

	pkg, payment, err := Package.Purchase(student.ID, "20课时包", 20, 2000, 180, model.PaymentMethodWechat)
	if err != nil {
		t.Fatalf("购买课时包失败: %v", err)
	}

	if pkg.Status != model.PackageStatusActive {
		t.Errorf("课时包状态 = %s, want active", pkg.Status)
	}
	if pkg.RemainingHours() != 20 {
		t.Errorf("剩余课时 = %d, want 20", pkg.RemainingHours())
	}
	wantExpire := time.Now().AddDate(0, 0, 180)
	if pkg.ExpiresAt.Sub(wantExpire) > time.Minute || wantExpire.Sub(pkg.ExpiresAt) > time.Minute {
		t.Errorf("有效期 = %v, want 约 %v", pkg.ExpiresAt, wantExpire)
	}

	// 同步生成已支付的支付记录
	if payment.Status != model.PaymentStatusPaid {
		t.Errorf("支付状态 = %s, want paid", payment.Status)
	}
	if payment.PaidAt == nil {
		t.Error("已支付记录应有支付时间")
	}
	if payment.PackageID == nil || *payment.PackageID != pkg.ID {
		t.Error("支付记录应关联课时包")
	}
	if payment.Amount != 2000 {
		t.Errorf("支付金额 = %v, want 2000", payment.Amount)
	}
	if payment.PaymentNo == "" {
		t.Error("支付单号不能为空")
	}

	// 无效参数
	if _, _, err := Package.Purchase(student.ID, "bad", 0, 100, 30, model.PaymentMethodCash); err == nil {
		t.Error("总课时为0应返回错误")
	}
	if _, _, err := Package.Purchase(student.ID, "bad", 10, 100, 0, model.PaymentMethodCash); err == nil {
		t.Error("有效天数为0应返回错误")
	}
}

func TestConsume(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher1", model.RoleTeacher)
	student := createTestUser(t, db, "student1", model.RoleStudent)
	admin := createTestUser(t, db, "admin1", model.RoleAdmin)

	base := time.Now().AddDate(0, 0, 1)
	course := createTestCourse(t, db, teacher.ID, base, base.Add(2*time.Hour), 10)
	pkg := createTestPackage(t, db, student.ID, 20, time.Now().AddDate(0, 0, 180))

	// 20课时分三次消耗：5 + 5 + 10
	for _, hours := range []int{5, 5} {
		if _, err := Package.Consume(pkg.ID, course.ID, hours, admin.ID); err != nil {
			t.Fatalf("消耗%d课时失败: %v", hours, err)
		}
	}

	// 剩余10，消耗11应失败
	if _, err := Package.Consume(pkg.ID, course.ID, 11, admin.ID); err == nil {
		t.Error("剩余课时不足应返回错误")
	}

	updated, err := Package.Consume(pkg.ID, course.ID, 10, admin.ID)
	if err != nil {
		t.Fatalf("消耗10课时失败: %v", err)
	}
	if updated.RemainingHours() != 0 {
		t.Errorf("剩余课时 = %d, want 0", updated.RemainingHours())
	}
	if updated.Status != model.PackageStatusCompleted {
		t.Errorf("课时包状态 = %s, want completed", updated.Status)
	}

	// 用完后再消耗
	if _, err := Package.Consume(pkg.ID, course.ID, 1, admin.ID); err == nil {
		t.Error("已用完的课时包消耗应返回错误")
	}

	// 每次消耗都有对应记录
	var records []model.ConsumeRecord
	if err := db.Where("package_id = ?", pkg.ID).Find(&records).Error; err != nil {
		t.Fatalf("查询消耗记录失败: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("消耗记录数 = %d, want 3", len(records))
	}
	totalConsumed := 0
	for _, record := range records {
		totalConsumed += record.Hours
		if record.OperatorID != admin.ID {
			t.Errorf("操作人 = %d, want %d", record.OperatorID, admin.ID)
		}
		if record.StudentID != student.ID {
			t.Errorf("学员 = %d, want %d", record.StudentID, student.ID)
		}
	}
	if totalConsumed != 20 {
		t.Errorf("消耗课时合计 = %d, want 20", totalConsumed)
	}
}

func TestConsumeRejected(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher1", model.RoleTeacher)
	student := createTestUser(t, db, "student1", model.RoleStudent)

	base := time.Now().AddDate(0, 0, 1)
	course := createTestCourse(t, db, teacher.ID, base, base.Add(2*time.Hour), 10)

	// 已过期
	expired := createTestPackage(t, db, student.ID, 20, time.Now().AddDate(0, 0, -1))
	if _, err := Package.Consume(expired.ID, course.ID, 1, teacher.ID); err == nil {
		t.Error("已过期课时包消耗应返回错误")
	}

	// 已作废
	cancelled := createTestPackage(t, db, student.ID, 20, time.Now().AddDate(0, 0, 180))
	if err := db.Model(cancelled).Update("status", model.PackageStatusCancelled).Error; err != nil {
		t.Fatalf("更新课时包状态失败: %v", err)
	}
	if _, err := Package.Consume(cancelled.ID, course.ID, 1, teacher.ID); err == nil {
		t.Error("已作废课时包消耗应返回错误")
	}

	// 课程不存在
	active := createTestPackage(t, db, student.ID, 20, time.Now().AddDate(0, 0, 180))
	if _, err := Package.Consume(active.ID, 9999, 1, teacher.ID); err == nil {
		t.Error("课程不存在应返回错误")
	}

	// 无效课时数
	if _, err := Package.Consume(active.ID, course.ID, 0, teacher.ID); err == nil {
		t.Error("消耗0课时应返回错误")
	}

	// 被拒绝的操作不应产生消耗记录
	var count int64
	if err := db.Model(&model.ConsumeRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("查询消耗记录失败: %v", err)
	}
	if count != 0 {
		t.Errorf("消耗记录数 = %d, want 0", count)
	}
}

func TestExpireOverdue(t *testing.T) {
	db := setupTestDB(t)
	student := createTestUser(t, db, "student1", model.RoleStudent)

	overdue := createTestPackage(t, db, student.ID, 20, time.Now().Add(-time.Hour))
	valid := createTestPackage(t, db, student.ID, 20, time.Now().AddDate(0, 0, 30))
	completed := createTestPackage(t, db, student.ID, 20, time.Now().Add(-time.Hour))
	if err := db.Model(completed).Update("status", model.PackageStatusCompleted).Error; err != nil {
		t.Fatalf("更新课时包状态失败: %v", err)
	}

	affected, err := Package.ExpireOverdue()
	if err != nil {
		t.Fatalf("过期处理失败: %v", err)
	}
	if affected != 1 {
		t.Errorf("过期处理行数 = %d, want 1", affected)
	}

	var reloaded model.LessonPackage
	if err := db.First(&reloaded, overdue.ID).Error; err != nil {
		t.Fatalf("查询课时包失败: %v", err)
	}
	if reloaded.Status != model.PackageStatusExpired {
		t.Errorf("过期课时包状态 = %s, want expired", reloaded.Status)
	}

	// 未到期和已用完的不受影响
	reloaded = model.LessonPackage{}
	if err := db.First(&reloaded, valid.ID).Error; err != nil {
		t.Fatalf("查询课时包失败: %v", err)
	}
	if reloaded.Status != model.PackageStatusActive {
		t.Errorf("未到期课时包状态 = %s, want active", reloaded.Status)
	}
	reloaded = model.LessonPackage{}
	if err := db.First(&reloaded, completed.ID).Error; err != nil {
		t.Fatalf("查询课时包失败: %v", err)
	}
	if reloaded.Status != model.PackageStatusCompleted {
		t.Errorf("已用完课时包状态 = %s, want completed", reloaded.Status)
	}
}
