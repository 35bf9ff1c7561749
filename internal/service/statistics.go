package service

import (
	"time"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

var Statistics = new(StatisticsService)

type StatisticsService struct{}

// 收入统计响应
type IncomeStatistics struct {
	TotalIncome   float64                 `json:"total_income"`   // 总收入
	TotalPayments int64                   `json:"total_payments"` // 总支付笔数
	TimeData      []IncomeStatisticsPoint `json:"time_data"`      // 时间维度数据
}

// 收入统计数据点
type IncomeStatisticsPoint struct {
	TimePoint string  `json:"time_point"` // 时间点，如 2023-01-01 或 2023-01 或 2023
	Income    float64 `json:"income"`     // 收入
	Payments  int64   `json:"payments"`   // 支付笔数
}

// 时间维度类型
type TimeDimension string

const (
	DimensionDay   TimeDimension = "day"
	DimensionMonth TimeDimension = "month"
	DimensionYear  TimeDimension = "year"
)

// Dashboard 管理端首页统计
type Dashboard struct {
	UsersCount         map[string]int64 `json:"users_count"`          // 各角色用户数
	CoursesCount       map[string]int64 `json:"courses_count"`        // 各状态课程数
	PackagesCount      map[string]int64 `json:"packages_count"`       // 各状态课时包数
	TotalHoursSold     int64            `json:"total_hours_sold"`     // 累计售出课时
	TotalHoursUsed     int64            `json:"total_hours_used"`     // 累计消耗课时
	TotalIncome        float64          `json:"total_income"`         // 总收入（已支付）
	CurrentMonthIncome float64          `json:"current_month_income"` // 当月收入
	LastMonthIncome    float64          `json:"last_month_income"`    // 上月收入
}

// CourseAttendanceStats 课程考勤统计
type CourseAttendanceStats struct {
	CourseID     uint             `json:"course_id"`
	TotalRecords int64            `json:"total_records"` // 考勤记录总数
	StatusCount  map[string]int64 `json:"status_count"`  // 各状态记录数
	PresentRate  float64          `json:"present_rate"`  // 出勤率（百分比），无记录时为0
}

// StudentOverview 学员概览
type StudentOverview struct {
	StudentID        uint    `json:"student_id"`
	EnrollmentCount  int64   `json:"enrollment_count"`  // 有效报名数
	AttendanceCount  int64   `json:"attendance_count"`  // 考勤记录数
	PresentRate      float64 `json:"present_rate"`      // 出勤率（百分比）
	TotalHours       int64   `json:"total_hours"`       // 购买课时合计
	UsedHours        int64   `json:"used_hours"`        // 已消耗课时合计
	RemainingHours   int64   `json:"remaining_hours"`   // 剩余课时合计（仅使用中的课时包）
	TotalPaidAmount  float64 `json:"total_paid_amount"` // 累计支付金额
	ActivePackages   int64   `json:"active_packages"`   // 使用中的课时包数
}

// GetDashboard 获取管理端首页统计数据
func (s *StatisticsService) GetDashboard() (*Dashboard, error) {
	result := &Dashboard{
		UsersCount:    make(map[string]int64),
		CoursesCount:  make(map[string]int64),
		PackagesCount: make(map[string]int64),
	}

	// 各角色用户数
	type groupCount struct {
		Key   string
		Count int64
	}
	var userCounts []groupCount
	if err := database.DB.Model(&model.User{}).
		Select("role as `key`, COUNT(*) as count").
		Group("role").
		Find(&userCounts).Error; err != nil {
		return nil, err
	}
	var totalUsers int64
	for _, item := range userCounts {
		result.UsersCount[item.Key] = item.Count
		totalUsers += item.Count
	}
	result.UsersCount["total"] = totalUsers

	// 各状态课程数
	var courseCounts []groupCount
	if err := database.DB.Model(&model.Course{}).
		Select("status as `key`, COUNT(*) as count").
		Group("status").
		Find(&courseCounts).Error; err != nil {
		return nil, err
	}
	var totalCourses int64
	for _, item := range courseCounts {
		result.CoursesCount[item.Key] = item.Count
		totalCourses += item.Count
	}
	result.CoursesCount["total"] = totalCourses

	// 各状态课时包数及课时总量
	var packageCounts []groupCount
	if err := database.DB.Model(&model.LessonPackage{}).
		Select("status as `key`, COUNT(*) as count").
		Group("status").
		Find(&packageCounts).Error; err != nil {
		return nil, err
	}
	var totalPackages int64
	for _, item := range packageCounts {
		result.PackagesCount[item.Key] = item.Count
		totalPackages += item.Count
	}
	result.PackagesCount["total"] = totalPackages

	var hourTotals struct {
		TotalHours int64
		UsedHours  int64
	}
	if err := database.DB.Model(&model.LessonPackage{}).
		Select("COALESCE(SUM(total_hours),0) as total_hours, COALESCE(SUM(used_hours),0) as used_hours").
		Scan(&hourTotals).Error; err != nil {
		return nil, err
	}
	result.TotalHoursSold = hourTotals.TotalHours
	result.TotalHoursUsed = hourTotals.UsedHours

	// 总收入（已支付）
	var totalIncome struct {
		Income float64
	}
	if err := database.DB.Model(&model.Payment{}).
		Where("status = ?", model.PaymentStatusPaid).
		Select("COALESCE(SUM(amount),0) as income").
		Scan(&totalIncome).Error; err != nil {
		return nil, err
	}
	result.TotalIncome = totalIncome.Income

	// 计算当月时间范围
	now := time.Now()
	currentMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	currentMonthEnd := currentMonthStart.AddDate(0, 1, 0).Add(-time.Second)

	currentMonthIncome, err := s.incomeBetween(currentMonthStart, currentMonthEnd)
	if err != nil {
		return nil, err
	}
	result.CurrentMonthIncome = currentMonthIncome

	// 上月时间范围
	lastMonthStart := currentMonthStart.AddDate(0, -1, 0)
	lastMonthEnd := currentMonthStart.Add(-time.Second)

	lastMonthIncome, err := s.incomeBetween(lastMonthStart, lastMonthEnd)
	if err != nil {
		return nil, err
	}
	result.LastMonthIncome = lastMonthIncome

	return result, nil
}

// incomeBetween 统计时间段内已支付金额
func (s *StatisticsService) incomeBetween(start, end time.Time) (float64, error) {
	var income struct {
		Income float64
	}
	err := database.DB.Model(&model.Payment{}).
		Where("status = ? AND paid_at BETWEEN ? AND ?", model.PaymentStatusPaid, start, end).
		Select("COALESCE(SUM(amount),0) as income").
		Scan(&income).Error
	return income.Income, err
}

// GetIncomeStatistics 获取收入统计数据
func (s *StatisticsService) GetIncomeStatistics(startTime, endTime time.Time, dimension TimeDimension) (*IncomeStatistics, error) {
	result := &IncomeStatistics{
		TimeData: make([]IncomeStatisticsPoint, 0),
	}

	// 查询总收入和支付笔数
	var totals struct {
		TotalIncome   float64
		TotalPayments int64
	}
	err := database.DB.Model(&model.Payment{}).
		Where("status = ? AND paid_at BETWEEN ? AND ?", model.PaymentStatusPaid, startTime, endTime).
		Select("COALESCE(SUM(amount),0) as total_income, COUNT(*) as total_payments").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	result.TotalIncome = totals.TotalIncome
	result.TotalPayments = totals.TotalPayments

	// 根据维度选择时间格式
	var timeFormat string
	switch dimension {
	case DimensionDay:
		timeFormat = "%Y-%m-%d"
	case DimensionMonth:
		timeFormat = "%Y-%m"
	case DimensionYear:
		timeFormat = "%Y"
	default:
		timeFormat = "%Y-%m-%d"
	}

	// 查询按时间维度分组的数据，时间格式作为绑定参数传入
	type timeStats struct {
		TimePoint    string
		Income       float64
		PaymentCount int64
	}

	var stats []timeStats
	err = database.DB.Model(&model.Payment{}).
		Where("status = ? AND paid_at BETWEEN ? AND ?", model.PaymentStatusPaid, startTime, endTime).
		Select("DATE_FORMAT(paid_at, ?) as time_point, COALESCE(SUM(amount),0) as income, COUNT(*) as payment_count", timeFormat).
		Group("time_point").
		Order("time_point ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	for _, stat := range stats {
		result.TimeData = append(result.TimeData, IncomeStatisticsPoint{
			TimePoint: stat.TimePoint,
			Income:    stat.Income,
			Payments:  stat.PaymentCount,
		})
	}

	return result, nil
}

// GetCourseAttendanceRate 获取课程考勤统计
// 没有考勤记录时出勤率为0，不报错
func (s *StatisticsService) GetCourseAttendanceRate(courseID uint) (*CourseAttendanceStats, error) {
	result := &CourseAttendanceStats{
		CourseID:    courseID,
		StatusCount: make(map[string]int64),
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := database.DB.Model(&model.AttendanceRecord{}).
		Where("course_id = ?", courseID).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&counts).Error; err != nil {
		return nil, err
	}

	for _, item := range counts {
		result.StatusCount[item.Status] = item.Count
		result.TotalRecords += item.Count
	}

	if result.TotalRecords > 0 {
		result.PresentRate = float64(result.StatusCount[model.AttendanceStatusPresent]) /
			float64(result.TotalRecords) * 100
	}

	return result, nil
}

// GetStudentOverview 获取学员概览数据
func (s *StatisticsService) GetStudentOverview(studentID uint) (*StudentOverview, error) {
	result := &StudentOverview{StudentID: studentID}

	// 有效报名数
	if err := database.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND status <> ?", studentID, model.EnrollmentStatusCancelled).
		Count(&result.EnrollmentCount).Error; err != nil {
		return nil, err
	}

	// 考勤记录数和出勤数
	if err := database.DB.Model(&model.AttendanceRecord{}).
		Where("student_id = ?", studentID).
		Count(&result.AttendanceCount).Error; err != nil {
		return nil, err
	}

	if result.AttendanceCount > 0 {
		var presentCount int64
		if err := database.DB.Model(&model.AttendanceRecord{}).
			Where("student_id = ? AND status = ?", studentID, model.AttendanceStatusPresent).
			Count(&presentCount).Error; err != nil {
			return nil, err
		}
		result.PresentRate = float64(presentCount) / float64(result.AttendanceCount) * 100
	}

	// 课时包统计
	var hourTotals struct {
		TotalHours int64
		UsedHours  int64
	}
	if err := database.DB.Model(&model.LessonPackage{}).
		Where("student_id = ?", studentID).
		Select("COALESCE(SUM(total_hours),0) as total_hours, COALESCE(SUM(used_hours),0) as used_hours").
		Scan(&hourTotals).Error; err != nil {
		return nil, err
	}
	result.TotalHours = hourTotals.TotalHours
	result.UsedHours = hourTotals.UsedHours

	// 剩余课时只统计使用中的课时包
	var remaining struct {
		Remaining int64
	}
	if err := database.DB.Model(&model.LessonPackage{}).
		Where("student_id = ? AND status = ?", studentID, model.PackageStatusActive).
		Select("COALESCE(SUM(total_hours - used_hours),0) as remaining").
		Scan(&remaining).Error; err != nil {
		return nil, err
	}
	result.RemainingHours = remaining.Remaining

	if err := database.DB.Model(&model.LessonPackage{}).
		Where("student_id = ? AND status = ?", studentID, model.PackageStatusActive).
		Count(&result.ActivePackages).Error; err != nil {
		return nil, err
	}

	// 累计支付金额
	var paid struct {
		Amount float64
	}
	if err := database.DB.Model(&model.Payment{}).
		Where("student_id = ? AND status = ?", studentID, model.PaymentStatusPaid).
		Select("COALESCE(SUM(amount),0) as amount").
		Scan(&paid).Error; err != nil {
		return nil, err
	}
	result.TotalPaidAmount = paid.Amount

	return result, nil
}
