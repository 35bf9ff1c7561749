package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

// GetLoginLogs 获取登录日志列表
func GetLoginLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	username := c.Query("username")
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	query := database.DB.Model(&model.LoginLog{})

	if username != "" {
		query = query.Where("username LIKE ?", "%"+username+"%")
	}
	if c.Query("is_success") != "" {
		query = query.Where("is_success = ?", c.Query("is_success") == "true")
	}
	if startDate != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", startDate, time.Local); err == nil {
			query = query.Where("created_at >= ?", parsed)
		}
	}
	if endDate != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", endDate, time.Local); err == nil {
			query = query.Where("created_at < ?", parsed.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取日志总数失败",
		})
		return
	}

	var logs []model.LoginLog
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&logs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取登录日志失败",
		})
		return
	}

	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"items": logs,
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}
