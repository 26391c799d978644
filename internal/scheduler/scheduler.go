package scheduler

import (
	"fmt"
	"time"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/fachebot/townhall-recap/internal/logger"
	"github.com/robfig/cron/v3"
)

// sessionExpirer 过期会话清理接口（便于测试注入 mock）
type sessionExpirer interface {
	ExpireStale(ttl time.Duration) bool
}

// Scheduler 周期清理闲置过久的预览会话
//
// 会话只存在于进程内存中，操作员生成后弃之不理时由这里兜底回收。
type Scheduler struct {
	cron       *cron.Cron
	controller sessionExpirer
	config     *config.Session
}

func NewScheduler(controller sessionExpirer, cfg *config.Session) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		controller: controller,
		config:     cfg,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	// 注册过期会话清理任务
	_, err := s.cron.AddFunc(s.config.CleanupCron, s.runCleanup)
	if err != nil {
		return fmt.Errorf("注册会话清理任务失败: %w", err)
	}

	s.cron.Start()
	logger.Infof("[Scheduler] 调度器已启动，会话清理任务: %s", s.config.CleanupCron)
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Infof("[Scheduler] 调度器已停止")
}

// runCleanup 执行一次过期会话清理
func (s *Scheduler) runCleanup() {
	ttl := time.Duration(s.config.TTLMinutes) * time.Minute
	if s.controller.ExpireStale(ttl) {
		logger.Infof("[Scheduler] 已清理闲置超过 %s 的预览会话", ttl)
	}
}
