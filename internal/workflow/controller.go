package workflow

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/fachebot/townhall-recap/internal/logger"
	"github.com/fachebot/townhall-recap/internal/transcriber"
	"github.com/fachebot/townhall-recap/internal/validate"
	"github.com/google/uuid"
)

// transcriptAcquirer 获取转写文本（便于测试注入 mock）
type transcriptAcquirer interface {
	Acquire(ctx context.Context, src transcriber.Source) (string, error)
}

// summarizer 生成与改写摘要（便于测试注入 mock）
type summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
	Revise(ctx context.Context, transcript, currentSummary, instruction string) (string, error)
}

// broadcaster 发送审定摘要（便于测试注入 mock）
type broadcaster interface {
	Notify(ctx context.Context, summaryMarkdown string) error
}

// Controller 驱动 生成 → 审阅/改写 → 发送 的三段式工作流
//
// 同一时刻最多存在一个会话；phase 作为单写者门禁，外部调用在途时
// 其余操作一律被拒绝，而不是排队等待。控制器自身不做任何网络 I/O，
// 仅负责向三个外部边界分发调用。
type Controller struct {
	mu      sync.Mutex
	phase   Phase
	session *Session

	acquirer    transcriptAcquirer
	summarizer  summarizer
	broadcaster broadcaster
	credential  string
}

func NewController(acquirer transcriptAcquirer, summarizer summarizer, broadcaster broadcaster, credential string) *Controller {
	return &Controller{
		phase:       PhaseIdle,
		acquirer:    acquirer,
		summarizer:  summarizer,
		broadcaster: broadcaster,
		credential:  credential,
	}
}

// GenerateInput 生成请求。UseManual 独占地决定取用哪个字段
type GenerateInput struct {
	Credential       string
	UseManual        bool
	ManualTranscript string
	VideoURL         string
}

// GenerateResult 生成结果，转写文本与摘要一并返回供操作员预览
type GenerateResult struct {
	SessionID  string
	Transcript string
	Summary    string
}

// checkCredential 服务端校验操作员口令
func (c *Controller) checkCredential(raw string) error {
	cred, err := validate.Credential(raw)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(cred), []byte(c.credential)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// beginTransient 在 phase 允许时进入指定的过渡阶段
func (c *Controller) beginTransient(next Phase, requireSession bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseGenerating, PhaseRegenerating, PhaseSending:
		return ErrBusy
	}
	if requireSession && c.session == nil {
		return ErrNoActiveSession
	}
	c.phase = next
	return nil
}

// settle 外部调用结束后回到稳定阶段
func (c *Controller) settle(next Phase) {
	c.mu.Lock()
	c.phase = next
	c.mu.Unlock()
}

// Generate 获取转写文本并生成一份全新摘要，成功后进入预览阶段
//
// 处于预览阶段时再次调用视为放弃当前会话并重新开始。
func (c *Controller) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	if err := c.checkCredential(input.Credential); err != nil {
		return nil, err
	}

	// UseManual 独占：手工模式只看转写文本字段，引用模式只看视频地址字段
	var source transcriber.Source
	if input.UseManual {
		text, err := validate.Transcript(input.ManualTranscript)
		if err != nil {
			return nil, err
		}
		source = transcriber.Source{Kind: transcriber.SourceManual, Text: text}
	} else {
		if strings.TrimSpace(input.VideoURL) == "" {
			return nil, ErrMissingSource
		}
		locator, err := validate.Reference(input.VideoURL)
		if err != nil {
			return nil, err
		}
		source = transcriber.Source{Kind: transcriber.SourceReference, Locator: locator}
	}

	c.mu.Lock()
	switch c.phase {
	case PhaseGenerating, PhaseRegenerating, PhaseSending:
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.session != nil {
		logger.Infof("[Workflow] 重新生成，丢弃预览中的会话 %s", c.session.ID)
		c.session = nil
	}
	c.phase = PhaseGenerating
	c.mu.Unlock()

	transcript, err := c.acquirer.Acquire(ctx, source)
	if err != nil {
		c.settle(PhaseIdle)
		logger.Errorf("[Workflow] 获取转写文本失败: %v", err)
		return nil, err
	}
	if strings.TrimSpace(transcript) == "" {
		// 引用来源可能解析出空白文本，在触达摘要边界前拦截
		c.settle(PhaseIdle)
		return nil, ErrEmptyTranscript
	}

	summary, err := c.summarizer.Summarize(ctx, transcript)
	if err != nil {
		c.settle(PhaseIdle)
		logger.Errorf("[Workflow] 生成摘要失败: %v", err)
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:               uuid.NewString(),
		SourceTranscript: transcript,
		CurrentSummary:   summary,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	c.mu.Lock()
	c.session = session
	c.phase = PhasePreviewing
	c.mu.Unlock()

	logger.Infof("[Workflow] 会话 %s 已生成摘要，进入预览阶段", session.ID)
	return &GenerateResult{
		SessionID:  session.ID,
		Transcript: transcript,
		Summary:    summary,
	}, nil
}

// Regenerate 按操作员指令改写当前摘要
//
// 传给改写的转写文本始终是生成时捕获的原文；editedSummary 非空时
// 以操作员编辑后的文本作为改写基础。失败时当前摘要保持不变。
func (c *Controller) Regenerate(ctx context.Context, credential, instruction, editedSummary string) (string, error) {
	if err := c.checkCredential(credential); err != nil {
		return "", err
	}
	instr, err := validate.Instruction(instruction)
	if err != nil {
		return "", err
	}

	if err := c.beginTransient(PhaseRegenerating, true); err != nil {
		return "", err
	}

	c.mu.Lock()
	transcript := c.session.SourceTranscript
	current := c.session.CurrentSummary
	if edited := strings.TrimSpace(editedSummary); edited != "" {
		current = edited
	}
	c.mu.Unlock()

	revised, err := c.summarizer.Revise(ctx, transcript, current, instr)
	if err != nil {
		c.settle(PhasePreviewing)
		logger.Errorf("[Workflow] 改写摘要失败: %v", err)
		return "", err
	}

	c.mu.Lock()
	if c.session != nil {
		c.session.CurrentSummary = revised
		c.session.UpdatedAt = time.Now()
	}
	c.phase = PhasePreviewing
	c.mu.Unlock()

	logger.Infof("[Workflow] 摘要已按指令改写")
	return revised, nil
}

// Send 将审定后的摘要交给广播边界，成功后丢弃整个会话
//
// finalSummary 为操作员在预览框中最终确认的文本（可能经过手工编辑）。
// 发送失败时会话停留在预览阶段，内容不变，操作员可重试或继续编辑。
func (c *Controller) Send(ctx context.Context, credential, finalSummary string) error {
	if err := c.checkCredential(credential); err != nil {
		return err
	}
	summary, err := validate.Summary(finalSummary)
	if err != nil {
		return err
	}

	if err := c.beginTransient(PhaseSending, true); err != nil {
		return err
	}

	if err := c.broadcaster.Notify(ctx, summary); err != nil {
		c.settle(PhasePreviewing)
		logger.Errorf("[Workflow] 发送广播失败: %v", err)
		return err
	}

	c.mu.Lock()
	sessionID := ""
	if c.session != nil {
		sessionID = c.session.ID
	}
	c.session = nil
	c.phase = PhaseIdle
	c.mu.Unlock()

	logger.Infof("[Workflow] 会话 %s 发送完成，状态已清空", sessionID)
	return nil
}

// Cancel 无条件丢弃当前会话，不触发任何外部调用
//
// 外部调用在途时返回忙错误，取消只能在调用落定之后生效。
func (c *Controller) Cancel(credential string) error {
	if err := c.checkCredential(credential); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseGenerating, PhaseRegenerating, PhaseSending:
		return ErrBusy
	}
	if c.session != nil {
		logger.Infof("[Workflow] 会话 %s 已取消", c.session.ID)
	}
	c.session = nil
	c.phase = PhaseIdle
	return nil
}

// Status 返回当前阶段与会话数据的只读快照
func (c *Controller) Status(credential string) (*Snapshot, error) {
	if err := c.checkCredential(credential); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := &Snapshot{Phase: c.phase}
	if c.session != nil {
		snapshot.SessionID = c.session.ID
		snapshot.Transcript = c.session.SourceTranscript
		snapshot.Summary = c.session.CurrentSummary
	}
	return snapshot, nil
}

// ExpireStale 丢弃闲置超过 ttl 的预览会话，返回是否发生了清理
func (c *Controller) ExpireStale(ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePreviewing || c.session == nil {
		return false
	}
	if time.Since(c.session.UpdatedAt) <= ttl {
		return false
	}

	logger.Infof("[Workflow] 会话 %s 闲置超过 %s，已过期清理", c.session.ID, ttl)
	c.session = nil
	c.phase = PhaseIdle
	return true
}
