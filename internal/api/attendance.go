package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
	"github.com/tiantingrui/course-manage/internal/service"
)

// AttendanceQuery 考勤列表查询参数
type AttendanceQuery struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	CourseID  uint   `form:"course_id"`
	StudentID uint   `form:"student_id"`
	Status    string `form:"status"`
	StartDate string `form:"start_date"` // 格式 2006-01-02
	EndDate   string `form:"end_date"`
}

// GetAttendances 获取考勤记录列表
// 学员只能查看自己的记录，教师只能查看自己课程的记录
func GetAttendances(c *gin.Context) {
	var query AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	db := database.DB.Model(&model.AttendanceRecord{})

	user := c.MustGet("currentUser").(model.User)
	switch user.Role {
	case model.RoleStudent:
		db = db.Where("student_id = ?", user.ID)
	case model.RoleTeacher:
		// 教师限定在自己的课程范围内
		db = db.Where("course_id IN (?)",
			database.DB.Model(&model.Course{}).Select("id").Where("teacher_id = ?", user.ID))
	}

	if query.CourseID > 0 {
		db = db.Where("course_id = ?", query.CourseID)
	}
	if query.StudentID > 0 && user.Role != model.RoleStudent {
		db = db.Where("student_id = ?", query.StudentID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.StartDate != "" {
		if startDate, err := time.ParseInLocation("2006-01-02", query.StartDate, time.Local); err == nil {
			db = db.Where("created_at >= ?", startDate)
		}
	}
	if query.EndDate != "" {
		if endDate, err := time.ParseInLocation("2006-01-02", query.EndDate, time.Local); err == nil {
			db = db.Where("created_at < ?", endDate.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取考勤总数失败",
		})
		return
	}

	var records []model.AttendanceRecord
	if err := db.Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取考勤列表失败",
		})
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		studentName := ""
		var student model.User
		if err := database.DB.First(&student, record.StudentID).Error; err == nil {
			studentName = student.Name
		}

		courseTitle := ""
		var course model.Course
		if err := database.DB.First(&course, record.CourseID).Error; err == nil {
			courseTitle = course.Title
		}

		items = append(items, gin.H{
			"id":           record.ID,
			"course_id":    record.CourseID,
			"course_title": courseTitle,
			"student_id":   record.StudentID,
			"student_name": studentName,
			"status":       record.Status,
			"notes":        record.Notes,
			"recorded_by":  record.RecordedBy,
			"created_at":   record.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"items": items,
			"page":  query.Page,
			"limit": query.Limit,
			"total": total,
			"pages": totalPages(total, query.Limit),
		},
	})
}

// GetAttendanceDetail 获取考勤记录详情
// 学员只能查看自己的记录，教师只能查看自己课程的记录
func GetAttendanceDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var record model.AttendanceRecord
	if err := database.DB.First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "考勤记录不存在",
		})
		return
	}

	courseTitle := ""
	var course model.Course
	if err := database.DB.First(&course, record.CourseID).Error; err == nil {
		courseTitle = course.Title
	}

	user := c.MustGet("currentUser").(model.User)
	switch user.Role {
	case model.RoleStudent:
		if record.StudentID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{
				"code": 403,
				"msg":  "没有操作权限",
			})
			return
		}
	case model.RoleTeacher:
		if course.TeacherID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{
				"code": 403,
				"msg":  "只能查看自己课程的考勤",
			})
			return
		}
	}

	studentName := ""
	var student model.User
	if err := database.DB.First(&student, record.StudentID).Error; err == nil {
		studentName = student.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"id":           record.ID,
			"course_id":    record.CourseID,
			"course_title": courseTitle,
			"student_id":   record.StudentID,
			"student_name": studentName,
			"status":       record.Status,
			"notes":        record.Notes,
			"recorded_by":  record.RecordedBy,
			"created_at":   record.CreatedAt,
			"updated_at":   record.UpdatedAt,
		},
	})
}

// CreateAttendanceRequest 创建考勤记录请求
type CreateAttendanceRequest struct {
	CourseID  uint   `json:"course_id" binding:"required"`
	StudentID uint   `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Notes     string `json:"notes"`
}

// CreateAttendance 创建单条考勤记录，仅课程教师或管理员可操作
func CreateAttendance(c *gin.Context) {
	var req CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	course, ok := loadManagedCourse(c, req.CourseID)
	if !ok {
		return
	}

	record, err := service.Attendance.Create(course.ID, req.StudentID, req.Status, req.Notes, c.GetUint("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "考勤记录创建成功",
		"data": gin.H{
			"id": record.ID,
		},
	})
}

// BatchAttendanceRequest 批量考勤请求
type BatchAttendanceRequest struct {
	CourseID uint                          `json:"course_id" binding:"required"`
	Items    []service.BatchAttendanceItem `json:"items" binding:"required,dive"`
}

// BatchCreateAttendance 批量创建考勤记录，整批校验通过才写入
func BatchCreateAttendance(c *gin.Context) {
	var req BatchAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	course, ok := loadManagedCourse(c, req.CourseID)
	if !ok {
		return
	}

	records, err := service.Attendance.BatchCreate(course.ID, req.Items, c.GetUint("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "批量考勤成功",
		"data": gin.H{
			"created": len(records),
		},
	})
}

// UpdateAttendanceRequest 更新考勤记录请求
type UpdateAttendanceRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateAttendance 更新考勤记录，仅课程教师或管理员可操作
func UpdateAttendance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var req UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var record model.AttendanceRecord
	if err := database.DB.First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "考勤记录不存在",
		})
		return
	}

	if _, ok := loadManagedCourse(c, record.CourseID); !ok {
		return
	}

	updates := make(map[string]interface{})
	if req.Status != "" {
		if !service.Attendance.IsValidStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": 400,
				"msg":  "无效的考勤状态",
			})
			return
		}
		updates["status"] = req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "没有需要更新的字段",
		})
		return
	}

	if err := database.DB.Model(&record).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "更新考勤记录失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "更新成功",
	})
}

// DeleteAttendance 删除考勤记录，仅课程教师或管理员可操作
func DeleteAttendance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var record model.AttendanceRecord
	if err := database.DB.First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "考勤记录不存在",
		})
		return
	}

	if _, ok := loadManagedCourse(c, record.CourseID); !ok {
		return
	}

	if err := database.DB.Delete(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "删除考勤记录失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "删除成功",
	})
}

// loadManagedCourse 加载课程并校验当前用户是否有权管理其考勤
func loadManagedCourse(c *gin.Context, courseID uint) (*model.Course, bool) {
	var course model.Course
	if err := database.DB.First(&course, courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "课程不存在",
		})
		return nil, false
	}

	user := c.MustGet("currentUser").(model.User)
	if !service.Attendance.CanManage(&user, &course) {
		c.JSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "只能管理自己课程的考勤",
		})
		return nil, false
	}

	return &course, true
}
