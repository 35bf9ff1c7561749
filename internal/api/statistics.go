package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
	"github.com/tiantingrui/course-manage/internal/service"
)

// GetCourseAttendanceRate 获取课程考勤统计，课程教师或管理员可查看
func GetCourseAttendanceRate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var course model.Course
	if err := database.DB.First(&course, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "课程不存在",
		})
		return
	}

	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleTeacher && course.TeacherID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "只能查看自己课程的统计",
		})
		return
	}

	stats, err := service.Statistics.GetCourseAttendanceRate(course.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取考勤统计失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": stats,
	})
}

// GetStudentOverview 获取学员概览，管理员、教师或学员本人可查看
func GetStudentOverview(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleStudent && user.ID != uint(id) {
		c.JSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "只能查看自己的数据",
		})
		return
	}

	var student model.User
	if err := database.DB.First(&student, id).Error; err != nil || student.Role != model.RoleStudent {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "学员不存在",
		})
		return
	}

	overview, err := service.Statistics.GetStudentOverview(student.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取学员概览失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": overview,
	})
}
