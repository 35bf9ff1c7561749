package service

import (
	"testing"

	"github.com/tiantingrui/course-manage/internal/model"
)

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "student1", model.RoleStudent)

	// 正常登录
	token, user, err := Auth.Login("student1", "123456", "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if token == "" {
		t.Error("登录成功应返回token")
	}
	if user.Username != "student1" {
		t.Errorf("用户名 = %s, want student1", user.Username)
	}

	// 密码错误
	if _, _, err := Auth.Login("student1", "wrong", "127.0.0.1", "test-agent"); err == nil {
		t.Error("密码错误应返回错误")
	}

	// 用户不存在
	if _, _, err := Auth.Login("nobody", "123456", "127.0.0.1", "test-agent"); err == nil {
		t.Error("用户不存在应返回错误")
	}

	// 每次尝试都有登录日志
	var logs []model.LoginLog
	if err := db.Order("id ASC").Find(&logs).Error; err != nil {
		t.Fatalf("查询登录日志失败: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("登录日志数 = %d, want 3", len(logs))
	}
	if !logs[0].IsSuccess {
		t.Error("第一条日志应为成功")
	}
	if logs[1].IsSuccess || logs[2].IsSuccess {
		t.Error("失败的登录应记录为失败")
	}
	if logs[1].FailReason == "" {
		t.Error("失败日志应有原因")
	}
}

func TestLoginInactiveUser(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "student1", model.RoleStudent)

	for _, status := range []string{model.UserStatusInactive, model.UserStatusSuspended} {
		if err := db.Model(user).Update("status", status).Error; err != nil {
			t.Fatalf("更新用户状态失败: %v", err)
		}
		if _, _, err := Auth.Login("student1", "123456", "127.0.0.1", "test-agent"); err == nil {
			t.Errorf("状态为%s的账号登录应返回错误", status)
		}
	}
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)

	user, err := Auth.Register("newbie", "123456", "新学员", "13800000000")
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	// 自助注册的账号固定为学员角色
	if user.Role != model.RoleStudent {
		t.Errorf("角色 = %s, want student", user.Role)
	}
	if user.Status != model.UserStatusActive {
		t.Errorf("状态 = %s, want active", user.Status)
	}
	// 密码不能明文存储
	if user.Password == "123456" {
		t.Error("密码不应明文存储")
	}

	// 用户名重复
	if _, err := Auth.Register("newbie", "654321", "别人", ""); err == nil {
		t.Error("用户名重复应返回错误")
	}

	// 注册后可直接登录
	if _, _, err := Auth.Login("newbie", "123456", "127.0.0.1", "test-agent"); err != nil {
		t.Errorf("注册后登录失败: %v", err)
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 1 {
		t.Errorf("用户数 = %d, want 1", count)
	}
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db := setupTestDB(t)

	if err := Auth.EnsureDefaultAdmin(); err != nil {
		t.Fatalf("初始化默认管理员失败: %v", err)
	}

	var admin model.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("查询管理员失败: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("角色 = %s, want admin", admin.Role)
	}

	// 重复执行不会重复创建
	if err := Auth.EnsureDefaultAdmin(); err != nil {
		t.Fatalf("重复初始化失败: %v", err)
	}
	var count int64
	db.Model(&model.User{}).Where("username = ?", "admin").Count(&count)
	if count != 1 {
		t.Errorf("管理员账号数 = %d, want 1", count)
	}

	// 角色被改错时修正回管理员
	if err := db.Model(&admin).Update("role", model.RoleStudent).Error; err != nil {
		t.Fatalf("更新角色失败: %v", err)
	}
	if err := Auth.EnsureDefaultAdmin(); err != nil {
		t.Fatalf("修正管理员角色失败: %v", err)
	}
	if err := db.First(&admin, admin.ID).Error; err != nil {
		t.Fatalf("查询管理员失败: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("角色 = %s, want admin", admin.Role)
	}
}

func TestResetPassword(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "student1", model.RoleStudent)

	if err := Auth.ResetPassword("student1", "newpass"); err != nil {
		t.Fatalf("重置密码失败: %v", err)
	}

	if _, _, err := Auth.Login("student1", "newpass", "127.0.0.1", "test-agent"); err != nil {
		t.Errorf("重置后登录失败: %v", err)
	}
	if _, _, err := Auth.Login("student1", "123456", "127.0.0.1", "test-agent"); err == nil {
		t.Error("旧密码应不可用")
	}

	if err := Auth.ResetPassword("nobody", "x"); err == nil {
		t.Error("用户不存在应返回错误")
	}
	if err := Auth.ResetPassword("", ""); err == nil {
		t.Error("空参数应返回错误")
	}
}
