package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/service"
)

// GetDashboard 获取管理端首页统计数据
func GetDashboard(c *gin.Context) {
	dashboard, err := service.Statistics.GetDashboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取统计数据失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": dashboard,
	})
}

// GetIncomeStatistics 获取收入统计数据
// 支持按日/月/年维度汇总，默认统计最近30天
func GetIncomeStatistics(c *gin.Context) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	dimension := service.TimeDimension(c.DefaultQuery("dimension", "day"))

	switch dimension {
	case service.DimensionDay, service.DimensionMonth, service.DimensionYear:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "无效的统计维度",
		})
		return
	}

	now := time.Now()
	startTime := now.AddDate(0, 0, -30)
	endTime := now

	if startStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": 400,
				"msg":  "开始日期格式错误",
			})
			return
		}
		startTime = parsed
	}

	if endStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": 400,
				"msg":  "结束日期格式错误",
			})
			return
		}
		// 包含结束日当天
		endTime = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}

	if endTime.Before(startTime) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "结束日期不能早于开始日期",
		})
		return
	}

	stats, err := service.Statistics.GetIncomeStatistics(startTime, endTime, dimension)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取收入统计失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": stats,
	})
}
