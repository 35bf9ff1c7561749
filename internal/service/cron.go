package service

import (
	"time"

	"github.com/tiantingrui/course-manage/internal/pkg/logger"
)

// CronService 定时任务服务
type CronService struct {
	stopChan chan struct{}
}

var Cron = &CronService{
	stopChan: make(chan struct{}),
}

// Start 启动定时任务
func (s *CronService) Start() {
	go s.handleExpiredPackages()
}

// Stop 停止定时任务
func (s *CronService) Stop() {
	close(s.stopChan)
}

// handleExpiredPackages 定期将超过有效期的课时包置为已过期
func (s *CronService) handleExpiredPackages() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired, err := Package.ExpireOverdue()
			if err != nil {
				logger.Errorf("处理过期课时包失败: %v", err)
				continue
			}
			if expired > 0 {
				logger.Infof("%d 个课时包已过期，状态已更新为expired", expired)
			}

		case <-s.stopChan:
			return
		}
	}
}
