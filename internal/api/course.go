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

// CourseQuery 课程列表查询参数
type CourseQuery struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	Status    string `form:"status"`
	TeacherID uint   `form:"teacher_id"`
	Keyword   string `form:"keyword"`
	StartDate string `form:"start_date"` // 格式 2006-01-02
	EndDate   string `form:"end_date"`
}

// GetCourses 获取课程列表
func GetCourses(c *gin.Context) {
	var query CourseQuery
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

	db := database.DB.Model(&model.Course{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.TeacherID > 0 {
		db = db.Where("teacher_id = ?", query.TeacherID)
	}
	if query.Keyword != "" {
		db = db.Where("title LIKE ?", "%"+query.Keyword+"%")
	}
	if query.StartDate != "" {
		if startDate, err := time.ParseInLocation("2006-01-02", query.StartDate, time.Local); err == nil {
			db = db.Where("start_time >= ?", startDate)
		}
	}
	if query.EndDate != "" {
		if endDate, err := time.ParseInLocation("2006-01-02", query.EndDate, time.Local); err == nil {
			db = db.Where("start_time < ?", endDate.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取课程总数失败",
		})
		return
	}

	var courses []model.Course
	if err := db.Order("start_time DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取课程列表失败",
		})
		return
	}

	items := make([]gin.H, 0, len(courses))
	for _, course := range courses {
		// 查询教师姓名
		teacherName := ""
		var teacher model.User
		if err := database.DB.First(&teacher, course.TeacherID).Error; err == nil {
			teacherName = teacher.Name
		}

		items = append(items, gin.H{
			"id":            course.ID,
			"title":         course.Title,
			"teacher_id":    course.TeacherID,
			"teacher_name":  teacherName,
			"start_time":    course.StartTime,
			"end_time":      course.EndTime,
			"capacity":      course.Capacity,
			"student_count": course.StudentCount,
			"classroom":     course.Classroom,
			"status":        course.Status,
			"created_at":    course.CreatedAt,
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

// GetCourseDetail 获取课程详情
func GetCourseDetail(c *gin.Context) {
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

	teacherName := ""
	var teacher model.User
	if err := database.DB.First(&teacher, course.TeacherID).Error; err == nil {
		teacherName = teacher.Name
	}

	// 当前用户是否已报名
	enrolled := false
	if c.GetString("userRole") == model.RoleStudent {
		var count int64
		database.DB.Model(&model.Enrollment{}).
			Where("course_id = ? AND student_id = ? AND status <> ?",
				course.ID, c.GetUint("userId"), model.EnrollmentStatusCancelled).
			Count(&count)
		enrolled = count > 0
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"id":            course.ID,
			"title":         course.Title,
			"description":   course.Description,
			"teacher_id":    course.TeacherID,
			"teacher_name":  teacherName,
			"start_time":    course.StartTime,
			"end_time":      course.EndTime,
			"capacity":      course.Capacity,
			"student_count": course.StudentCount,
			"classroom":     course.Classroom,
			"status":        course.Status,
			"enrolled":      enrolled,
			"created_at":    course.CreatedAt,
			"updated_at":    course.UpdatedAt,
		},
	})
}

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	TeacherID   uint      `json:"teacher_id"` // 管理员可以代教师排课，教师只能给自己排课
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1"`
	Classroom   string    `json:"classroom"`
}

// CreateCourse 创建课程
func CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	user := c.MustGet("currentUser").(model.User)

	// 确定授课教师
	teacherID := req.TeacherID
	if user.Role == model.RoleTeacher {
		teacherID = user.ID
	} else if teacherID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "请指定授课教师",
		})
		return
	}

	// 教师必须存在且角色正确
	var teacher model.User
	if err := database.DB.First(&teacher, teacherID).Error; err != nil || teacher.Role != model.RoleTeacher {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "授课教师不存在",
		})
		return
	}

	// 时间窗口和冲突校验
	if err := service.Course.ValidateSchedule(teacherID, req.StartTime, req.EndTime, 0); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	course := model.Course{
		TeacherID:   teacherID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		Classroom:   req.Classroom,
		Status:      model.CourseStatusScheduled,
	}

	if err := database.DB.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "创建课程失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"id": course.ID,
		},
	})
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Capacity    *int       `json:"capacity"`
	Classroom   string     `json:"classroom"`
}

// UpdateCourse 更新课程
func UpdateCourse(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	// 只有课程教师本人或管理员可以修改
	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleTeacher && course.TeacherID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "只能修改自己的课程",
		})
		return
	}

	// 如果修改了时间，重新校验时间窗口（冲突检查排除自身）
	startTime := course.StartTime
	endTime := course.EndTime
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	if req.StartTime != nil || req.EndTime != nil {
		if err := service.Course.ValidateSchedule(course.TeacherID, startTime, endTime, course.ID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": 400,
				"msg":  err.Error(),
			})
			return
		}
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if req.Capacity != nil {
		// 容量不能调低到当前报名人数以下
		if *req.Capacity < course.StudentCount {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": 400,
				"msg":  "容量不能小于当前报名人数",
			})
			return
		}
		updates["capacity"] = *req.Capacity
	}
	if req.Classroom != "" {
		updates["classroom"] = req.Classroom
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "没有需要更新的字段",
		})
		return
	}

	if err := database.DB.Model(&course).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "更新课程失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "更新成功",
	})
}

// DeleteCourse 删除课程，仅未开课或已取消的课程可删除
func DeleteCourse(c *gin.Context) {
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
			"msg":  "只能删除自己的课程",
		})
		return
	}

	if !course.CanDelete() {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "课程已开课或已结课，无法删除",
		})
		return
	}

	if err := database.DB.Delete(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "删除课程失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "删除成功",
	})
}

// UpdateCourseStatusRequest 更新课程状态请求
type UpdateCourseStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateCourseStatus 更新课程状态，状态只能向前流转
func UpdateCourseStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var req UpdateCourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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
			"msg":  "只能操作自己的课程",
		})
		return
	}

	if err := service.Course.UpdateStatus(&course, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "状态更新成功",
	})
}

// EnrollRequest 报名请求，管理员可代学员报名
type EnrollRequest struct {
	StudentID uint `json:"student_id"`
}

// EnrollCourse 报名课程
func EnrollCourse(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	studentID, ok := resolveStudentID(c)
	if !ok {
		return
	}

	enrollment, err := service.Course.Enroll(uint(id), studentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "报名成功",
		"data": gin.H{
			"enrollment_id": enrollment.ID,
			"course_id":     enrollment.CourseID,
			"student_id":    enrollment.StudentID,
			"status":        enrollment.Status,
			"enrolled_at":   enrollment.EnrolledAt,
		},
	})
}

// CancelEnrollment 退课
func CancelEnrollment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	studentID, ok := resolveStudentID(c)
	if !ok {
		return
	}

	if err := service.Course.CancelEnrollment(uint(id), studentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "退课成功",
	})
}

// resolveStudentID 确定报名/退课操作的目标学员
// 学员只能操作自己，管理员通过请求体指定学员
func resolveStudentID(c *gin.Context) (uint, bool) {
	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleStudent {
		return user.ID, true
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StudentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "请指定学员",
		})
		return 0, false
	}

	// 目标必须是学员角色
	var student model.User
	if err := database.DB.First(&student, req.StudentID).Error; err != nil || student.Role != model.RoleStudent {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "学员不存在",
		})
		return 0, false
	}

	return req.StudentID, true
}

// GetCourseStudents 获取课程的报名学员名单
func GetCourseStudents(c *gin.Context) {
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
			"msg":  "只能查看自己课程的学员",
		})
		return
	}

	var enrollments []model.Enrollment
	if err := database.DB.Where("course_id = ? AND status <> ?",
		course.ID, model.EnrollmentStatusCancelled).
		Order("enrolled_at ASC").
		Find(&enrollments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取学员名单失败",
		})
		return
	}

	items := make([]gin.H, 0, len(enrollments))
	for _, enrollment := range enrollments {
		var student model.User
		studentName := ""
		studentPhone := ""
		if err := database.DB.First(&student, enrollment.StudentID).Error; err == nil {
			studentName = student.Name
			studentPhone = student.Phone
		}

		items = append(items, gin.H{
			"enrollment_id": enrollment.ID,
			"student_id":    enrollment.StudentID,
			"student_name":  studentName,
			"student_phone": studentPhone,
			"status":        enrollment.Status,
			"enrolled_at":   enrollment.EnrolledAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"course_id":     course.ID,
			"student_count": course.StudentCount,
			"items":         items,
		},
	})
}

// totalPages 计算总页数
func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
