package scheduler

import (
	"testing"
	"time"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/stretchr/testify/assert"
)

// mockExpirer 用于测试的 sessionExpirer mock
type mockExpirer struct {
	ttl     time.Duration
	calls   int
	expired bool
}

func (m *mockExpirer) ExpireStale(ttl time.Duration) bool {
	m.calls++
	m.ttl = ttl
	return m.expired
}

func TestRunCleanup(t *testing.T) {
	expirer := &mockExpirer{expired: true}
	s := NewScheduler(expirer, &config.Session{TTLMinutes: 120, CleanupCron: "*/10 * * * *"})

	s.runCleanup()
	assert.Equal(t, 1, expirer.calls)
	assert.Equal(t, 2*time.Hour, expirer.ttl)
}

func TestStartStop(t *testing.T) {
	expirer := &mockExpirer{}
	s := NewScheduler(expirer, &config.Session{TTLMinutes: 60, CleanupCron: "*/10 * * * *"})

	assert.NoError(t, s.Start())
	s.Stop()
}

func TestStart_InvalidCron(t *testing.T) {
	expirer := &mockExpirer{}
	s := NewScheduler(expirer, &config.Session{TTLMinutes: 60, CleanupCron: "not a cron"})

	err := s.Start()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "注册会话清理任务失败")
}
