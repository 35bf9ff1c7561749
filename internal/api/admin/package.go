package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
	"github.com/tiantingrui/course-manage/internal/service"
)

// CreatePackageRequest 管理员开通课时包请求
type CreatePackageRequest struct {
	StudentID    uint    `json:"student_id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	TotalHours   int     `json:"total_hours" binding:"required,min=1"`
	Price        float64 `json:"price" binding:"required,min=0"`
	ValidityDays int     `json:"validity_days" binding:"required,min=1"`
	Method       string  `json:"method" binding:"omitempty,oneof=cash wechat alipay bank_transfer"`
}

// CreatePackage 管理员为学员开通课时包
// 传入支付方式时同时生成已支付的支付记录，否则只开通课时包（如赠送课时）
func CreatePackage(c *gin.Context) {
	var req CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	// 目标用户必须是学员
	var student model.User
	if err := database.DB.First(&student, req.StudentID).Error; err != nil || student.Role != model.RoleStudent {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "学员不存在",
		})
		return
	}

	if req.Method != "" {
		pkg, payment, err := service.Package.Purchase(student.ID, req.Name, req.TotalHours, req.Price, req.ValidityDays, req.Method)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": 400,
				"msg":  err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code": 200,
			"msg":  "开通成功",
			"data": gin.H{
				"package_id": pkg.ID,
				"payment_no": payment.PaymentNo,
				"expires_at": pkg.ExpiresAt,
			},
		})
		return
	}

	now := time.Now()
	pkg := model.LessonPackage{
		StudentID:   student.ID,
		Name:        req.Name,
		TotalHours:  req.TotalHours,
		UsedHours:   0,
		Price:       req.Price,
		PurchasedAt: now,
		ExpiresAt:   now.AddDate(0, 0, req.ValidityDays),
		Status:      model.PackageStatusActive,
	}
	if err := database.DB.Create(&pkg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "开通课时包失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "开通成功",
		"data": gin.H{
			"package_id": pkg.ID,
			"expires_at": pkg.ExpiresAt,
		},
	})
}

// UpdatePackageRequest 更新课时包请求
type UpdatePackageRequest struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

// UpdatePackage 更新课时包基础信息，仅限未产生消耗的课时包
func UpdatePackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var req UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var pkg model.LessonPackage
	if err := database.DB.First(&pkg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "课时包不存在",
		})
		return
	}

	// 已经产生消耗的课时包不允许修改
	if pkg.UsedHours > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "课时包已有消耗记录，不能修改",
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "没有需要更新的字段",
		})
		return
	}

	if err := database.DB.Model(&pkg).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "更新课时包失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "更新成功",
	})
}

// CancelPackage 作废课时包
func CancelPackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var pkg model.LessonPackage
	if err := database.DB.First(&pkg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "课时包不存在",
		})
		return
	}

	if pkg.Status != model.PackageStatusActive {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "只有使用中的课时包可以作废",
		})
		return
	}

	if err := database.DB.Model(&pkg).Update("status", model.PackageStatusCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "作废课时包失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "课时包已作废",
	})
}

// DeletePackage 删除课时包（软删除）
// 已有消耗的课时包不允许删除
func DeletePackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var pkg model.LessonPackage
	if err := database.DB.First(&pkg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "课时包不存在",
		})
		return
	}

	if pkg.UsedHours > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "课时包已有消耗记录，不能删除",
		})
		return
	}

	if err := database.DB.Delete(&pkg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "删除课时包失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "删除成功",
	})
}
