package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/stretchr/testify/assert"
)

// mockSender 用于测试的 broadcastSender mock
type mockSender struct {
	subject string
	html    string
	calls   int
	err     error
}

func (m *mockSender) SendBroadcast(ctx context.Context, subject, htmlContent string) error {
	m.calls++
	m.subject = subject
	m.html = htmlContent
	return m.err
}

func TestRenderEmailHTML(t *testing.T) {
	html, err := RenderEmailHTML("## Updates\n\n- item one\n- item two\n\n**bold** text")
	assert.NoError(t, err)
	assert.Contains(t, html, "<html><body style='font-family:Inter,Arial,sans-serif; color:#111827;'>")
	assert.Contains(t, html, "<h2 style='margin-top:0;'>Town Hall Summary</h2>")
	assert.Contains(t, html, "<h2>Updates</h2>")
	assert.Contains(t, html, "<li>item one</li>")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "</body></html>")
}

func TestRenderEmailHTML_EscapesRawHTML(t *testing.T) {
	// goldmark 默认不透传原始 HTML，用户内容不会破坏邮件结构
	html, err := RenderEmailHTML("hello <script>alert(1)</script>")
	assert.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestNotify_EmptySummary(t *testing.T) {
	sender := &mockSender{}
	n := &Notifier{sender: sender, config: &config.Kit{Subject: "🚀 Weekly Recap"}}

	err := n.Notify(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Equal(t, 0, sender.calls, "空摘要不应触发广播")
}

func TestNotify_Success(t *testing.T) {
	sender := &mockSender{}
	n := &Notifier{sender: sender, config: &config.Kit{Subject: "🚀 Weekly Recap"}}

	err := n.Notify(context.Background(), "## Recap\n\n- budget approved")
	assert.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "🚀 Weekly Recap", sender.subject)
	assert.Contains(t, sender.html, "<li>budget approved</li>")
}

func TestNotify_SenderError(t *testing.T) {
	sender := &mockSender{err: errors.New("provider down")}
	n := &Notifier{sender: sender, config: &config.Kit{Subject: "subject"}}

	err := n.Notify(context.Background(), "some summary")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}
