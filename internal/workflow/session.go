package workflow

import "time"

// Phase 工作流当前所处阶段
type Phase string

const (
	PhaseIdle         Phase = "idle"         // 无活动会话
	PhaseGenerating   Phase = "generating"   // 正在获取转写并生成摘要
	PhasePreviewing   Phase = "previewing"   // 摘要已生成，等待操作员审阅
	PhaseRegenerating Phase = "regenerating" // 正在按指令改写摘要
	PhaseSending      Phase = "sending"      // 正在发送广播
)

// Session 一次生成→(改写)*→发送周期的内存状态
//
// SourceTranscript 在获取后不再变化，改写始终以它为事实依据。
// 会话仅存在于进程内存中，发送成功或取消后即被丢弃。
type Session struct {
	ID               string
	SourceTranscript string
	CurrentSummary   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Snapshot 会话状态的只读视图，供状态查询接口返回
type Snapshot struct {
	Phase      Phase  `json:"phase"`
	SessionID  string `json:"session_id,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Summary    string `json:"summary,omitempty"`
}
