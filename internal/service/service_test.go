package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tiantingrui/course-manage/internal/config"
	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

// setupTestDB 使用内存sqlite替换全局数据库连接，测试结束后还原
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}

	oldDB := database.DB
	oldConfig := config.GlobalConfig
	database.DB = db
	config.GlobalConfig = &config.Config{}
	config.GlobalConfig.JWT.Secret = "test-secret"
	config.GlobalConfig.JWT.ExpireTime = 3600

	t.Cleanup(func() {
		database.DB = oldDB
		config.GlobalConfig = oldConfig
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码失败: %v", err)
	}

	user := &model.User{
		Username: username,
		Password: string(hashed),
		Name:     username,
		Role:     role,
		Status:   model.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

func createTestCourse(t *testing.T, db *gorm.DB, teacherID uint, start, end time.Time, capacity int) *model.Course {
	t.Helper()

	course := &model.Course{
		TeacherID: teacherID,
		Title:     "楷书基础",
		StartTime: start,
		EndTime:   end,
		Capacity:  capacity,
		Status:    model.CourseStatusScheduled,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("创建测试课程失败: %v", err)
	}
	return course
}

func createTestPackage(t *testing.T, db *gorm.DB, studentID uint, totalHours int, expiresAt time.Time) *model.LessonPackage {
	t.Helper()

	pkg := &model.LessonPackage{
		StudentID:   studentID,
		Name:        "20课时包",
		TotalHours:  totalHours,
		Price:       2000,
		PurchasedAt: time.Now(),
		ExpiresAt:   expiresAt,
		Status:      model.PackageStatusActive,
	}
	if err := db.Create(pkg).Error; err != nil {
		t.Fatalf("创建测试课时包失败: %v", err)
	}
	return pkg
}

func enrollStudent(t *testing.T, db *gorm.DB, courseID, studentID uint) {
	t.Helper()

	if _, err := Course.Enroll(courseID, studentID); err != nil {
		t.Fatalf("报名失败: %v", err)
	}
}
