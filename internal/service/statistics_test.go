package service

import (
	"testing"
	"time"

	"github.com/tiantingrui/course-manage/internal/model"
)

func TestGetCourseAttendanceRate(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher1", model.RoleTeacher)

	base := time.Now().AddDate(0, 0, 1)
	course := createTestCourse(t, db, teacher.ID, base, base.Add(2*time.Hour), 10)

	// 无考勤记录时出勤率为0，不报错
	stats, err := Statistics.GetCourseAttendanceRate(course.ID)
	if err != nil {
		t.Fatalf("获取考勤统计失败: %v", err)
	}
	if stats.TotalRecords != 0 {
		t.Errorf("记录数 = %d, want 0", stats.TotalRecords)
	}
	if stats.PresentRate != 0 {
		t.Errorf("出勤率 = %v, want 0", stats.PresentRate)
	}

	// 4条记录：3出勤 1缺勤
	statuses := []string{
		model.AttendanceStatusPresent,
		model.AttendanceStatusPresent,
		model.AttendanceStatusPresent,
		model.AttendanceStatusAbsent,
	}
	for i, status := range statuses {
		record := model.AttendanceRecord{
			CourseID:   course.ID,
			StudentID:  uint(100 + i),
			Status:     status,
			RecordedBy: teacher.ID,
		}
		if err := db.Create(&record).Error; err != nil {
			t.Fatalf("创建考勤记录失败: %v", err)
		}
	}

	stats, err = Statistics.GetCourseAttendanceRate(course.ID)
	if err != nil {
		t.Fatalf("获取考勤统计失败: %v", err)
	}
	if stats.TotalRecords != 4 {
		t.Errorf("记录数 = %d, want 4", stats.TotalRecords)
	}
	if stats.StatusCount[model.AttendanceStatusPresent] != 3 {
		t.Errorf("出勤数 = %d, want 3", stats.StatusCount[model.AttendanceStatusPresent])
	}
	if stats.PresentRate != 75 {
		t.Errorf("出勤率 = %v, want 75", stats.PresentRate)
	}
}

func TestGetStudentOverview(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher1", model.RoleTeacher)
	student := createTestUser(t, db, "student1", model.RoleStudent)

	base := time.Now().AddDate(0, 0, 1)
	course1 := createTestCourse(t, db, teacher.ID, base, base.Add(2*time.Hour), 10)
	course2 := createTestCourse(t, db, teacher.ID, base.Add(3*time.Hour), base.Add(5*time.Hour), 10)
	enrollStudent(t, db, course1.ID, student.ID)
	enrollStudent(t, db, course2.ID, student.ID)

	// 退掉一门课，有效报名只剩一门
	if err := Course.CancelEnrollment(course2.ID, student.ID); err != nil {
		t.Fatalf("退课失败: %v", err)
	}

	// 出勤1次
	if _, err := Attendance.Create(course1.ID, student.ID, model.AttendanceStatusPresent, "", teacher.ID); err != nil {
		t.Fatalf("创建考勤记录失败: %v", err)
	}

	// 两个课时包，其中一个已用完
	if _, _, err := Package.Purchase(student.ID, "20课时包", 20, 2000, 180, model.PaymentMethodWechat); err != nil {
		t.Fatalf("购买课时包失败: %v", err)
	}
	used := createTestPackage(t, db, student.ID, 10, time.Now().AddDate(0, 0, 180))
	if _, err := Package.Consume(used.ID, course1.ID, 10, teacher.ID); err != nil {
		t.Fatalf("消耗课时失败: %v", err)
	}

	overview, err := Statistics.GetStudentOverview(student.ID)
	if err != nil {
		t.Fatalf("获取学员概览失败: %v", err)
	}

	if overview.EnrollmentCount != 1 {
		t.Errorf("有效报名数 = %d, want 1", overview.EnrollmentCount)
	}
	if overview.AttendanceCount != 1 {
		t.Errorf("考勤记录数 = %d, want 1", overview.AttendanceCount)
	}
	if overview.PresentRate != 100 {
		t.Errorf("出勤率 = %v, want 100", overview.PresentRate)
	}
	if overview.TotalHours != 30 {
		t.Errorf("购买课时合计 = %d, want 30", overview.TotalHours)
	}
	if overview.UsedHours != 10 {
		t.Errorf("已消耗课时 = %d, want 10", overview.UsedHours)
	}
	// 剩余课时只统计使用中的课时包
	if overview.RemainingHours != 20 {
		t.Errorf("剩余课时 = %d, want 20", overview.RemainingHours)
	}
	if overview.ActivePackages != 1 {
		t.Errorf("使用中课时包数 = %d, want 1", overview.ActivePackages)
	}
	if overview.TotalPaidAmount != 2000 {
		t.Errorf("累计支付金额 = %v, want 2000", overview.TotalPaidAmount)
	}
}

func TestGetDashboard(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "admin1", model.RoleAdmin)
	teacher := createTestUser(t, db, "teacher1", model.RoleTeacher)
	student := createTestUser(t, db, "student1", model.RoleStudent)
	createTestUser(t, db, "student2", model.RoleStudent)

	base := time.Now().AddDate(0, 0, 1)
	createTestCourse(t, db, teacher.ID, base, base.Add(2*time.Hour), 10)

	if _, _, err := Package.Purchase(student.ID, "20课时包", 20, 2000, 180, model.PaymentMethodWechat); err != nil {
		t.Fatalf("购买课时包失败: %v", err)
	}

	dashboard, err := Statistics.GetDashboard()
	if err != nil {
		t.Fatalf("获取首页统计失败: %v", err)
	}

	if dashboard.UsersCount[model.RoleStudent] != 2 {
		t.Errorf("学员数 = %d, want 2", dashboard.UsersCount[model.RoleStudent])
	}
	if dashboard.UsersCount["total"] != 4 {
		t.Errorf("用户总数 = %d, want 4", dashboard.UsersCount["total"])
	}
	if dashboard.CoursesCount[model.CourseStatusScheduled] != 1 {
		t.Errorf("已排课数 = %d, want 1", dashboard.CoursesCount[model.CourseStatusScheduled])
	}
	if dashboard.PackagesCount[model.PackageStatusActive] != 1 {
		t.Errorf("使用中课时包数 = %d, want 1", dashboard.PackagesCount[model.PackageStatusActive])
	}
	if dashboard.TotalHoursSold != 20 {
		t.Errorf("累计售出课时 = %d, want 20", dashboard.TotalHoursSold)
	}
	if dashboard.TotalIncome != 2000 {
		t.Errorf("总收入 = %v, want 2000", dashboard.TotalIncome)
	}
	if dashboard.CurrentMonthIncome != 2000 {
		t.Errorf("当月收入 = %v, want 2000", dashboard.CurrentMonthIncome)
	}
	if dashboard.LastMonthIncome != 0 {
		t.Errorf("上月收入 = %v, want 0", dashboard.LastMonthIncome)
	}
}
