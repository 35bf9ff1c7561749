package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tiantingrui/course-manage/internal/middleware"
	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
	"github.com/tiantingrui/course-manage/internal/pkg/logger"
)

var Auth = new(AuthService)

type AuthService struct{}

// Login 账号密码登录，成功返回token，同时记录登录日志
func (s *AuthService) Login(username, password, ip, userAgent string) (string, *model.User, error) {
	var user model.User
	if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
		s.recordLoginLog(0, username, "", ip, userAgent, false, "用户不存在")
		return "", nil, errors.New("用户不存在")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.recordLoginLog(user.ID, username, user.Role, ip, userAgent, false, "密码错误")
		return "", nil, errors.New("密码错误")
	}

	// 停用或冻结的账号不允许登录
	if !user.IsActive() {
		s.recordLoginLog(user.ID, username, user.Role, ip, userAgent, false, "账号状态异常: "+user.Status)
		return "", nil, errors.New("账号已被停用或冻结")
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		return "", nil, err
	}

	s.recordLoginLog(user.ID, username, user.Role, ip, userAgent, true, "")
	return token, &user, nil
}

// recordLoginLog 写入登录日志，失败只记录不影响登录流程
func (s *AuthService) recordLoginLog(userID uint, username, role, ip, userAgent string, success bool, reason string) {
	logEntry := model.LoginLog{
		UserID:     userID,
		Username:   username,
		Role:       role,
		IP:         ip,
		UserAgent:  userAgent,
		IsSuccess:  success,
		FailReason: reason,
	}
	if err := database.DB.Create(&logEntry).Error; err != nil {
		logger.Warnf("记录登录日志失败: %v", err)
	}
}

// Register 学员自助注册
func (s *AuthService) Register(username, password, name, phone string) (*model.User, error) {
	// 检查用户名是否已存在
	var count int64
	database.DB.Model(&model.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return nil, errors.New("用户名已存在")
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Password: string(hashedPassword),
		Name:     name,
		Phone:    phone,
		Role:     model.RoleStudent,
		Status:   model.UserStatusActive,
	}

	if err := database.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// EnsureDefaultAdmin 检查并在缺失时创建默认管理员账号
func (s *AuthService) EnsureDefaultAdmin() error {
	var user model.User
	err := database.DB.Where("username = ?", "admin").First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询管理员账号失败: %w", err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 创建默认管理员账号
		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte("course_manage"), bcrypt.DefaultCost)
		if hashErr != nil {
			return fmt.Errorf("生成管理员默认密码失败: %w", hashErr)
		}

		admin := &model.User{
			Username: "admin",
			Password: string(hashedPassword),
			Name:     "管理员",
			Role:     model.RoleAdmin,
			Status:   model.UserStatusActive,
		}

		if createErr := database.DB.Create(admin).Error; createErr != nil {
			return fmt.Errorf("创建默认管理员账号失败: %w", createErr)
		}

		logger.Infof("默认管理员账号已创建，用户名: %s", admin.Username)
		return nil
	}

	// 如果存在但角色不是管理员，进行修正
	if user.Role != model.RoleAdmin {
		if updateErr := database.DB.Model(&model.User{}).
			Where("id = ?", user.ID).
			Update("role", model.RoleAdmin).Error; updateErr != nil {
			return fmt.Errorf("更新管理员角色失败: %w", updateErr)
		}
		logger.Infof("账号 %s 已标记为管理员", user.Username)
	}

	return nil
}

// ResetPassword 通过用户名重置密码
func (s *AuthService) ResetPassword(username, password string) error {
	if username == "" || password == "" {
		return errors.New("用户名或密码不能为空")
	}

	var user model.User
	if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("用户不存在: %s", username)
		}
		return fmt.Errorf("查询用户失败: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("加密密码失败: %w", err)
	}

	if err := database.DB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("password", string(hashedPassword)).Error; err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}

	logger.Infof("用户 %s 的密码已被重置", username)
	return nil
}
