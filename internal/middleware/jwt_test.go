package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tiantingrui/course-manage/internal/config"
	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

func setupJWTTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

func newJWTRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", JWT(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code":   200,
			"userId": c.GetUint("userId"),
			"role":   c.GetString("userRole"),
		})
	})
	return r
}

func TestJWTMiddleware(t *testing.T) {
	db := setupJWTTest(t)

	user := &model.User{
		Username: "student1",
		Name:     "学员一",
		Role:     model.RoleStudent,
		Status:   model.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("生成token失败: %v", err)
	}

	r := newJWTRouter()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "无token", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "格式错误", authHeader: token, wantStatus: http.StatusUnauthorized},
		{name: "伪造token", authHeader: "Bearer not-a-token", wantStatus: http.StatusUnauthorized},
		{name: "有效token", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("状态码 = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestJWTMiddlewareInactiveUser(t *testing.T) {
	db := setupJWTTest(t)

	user := &model.User{
		Username: "student1",
		Role:     model.RoleStudent,
		Status:   model.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("生成token失败: %v", err)
	}

	// 签发后账号被停用，token立即失效
	if err := db.Model(user).Update("status", model.UserStatusInactive).Error; err != nil {
		t.Fatalf("更新用户状态失败: %v", err)
	}

	r := newJWTRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("状态码 = %d, want 401", w.Code)
	}

	// 账号被删除后同样失效
	if err := db.Delete(user).Error; err != nil {
		t.Fatalf("删除用户失败: %v", err)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("状态码 = %d, want 401", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/staff", func(c *gin.Context) {
		// 模拟JWT中间件写入的角色
		c.Set("userRole", c.Query("role"))
	}, RequireRoles(model.RoleAdmin, model.RoleTeacher), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 200})
	})

	tests := []struct {
		role       string
		wantStatus int
	}{
		{role: model.RoleAdmin, wantStatus: http.StatusOK},
		{role: model.RoleTeacher, wantStatus: http.StatusOK},
		{role: model.RoleStudent, wantStatus: http.StatusForbidden},
		{role: "", wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run("role_"+tt.role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/staff?role="+tt.role, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("状态码 = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
