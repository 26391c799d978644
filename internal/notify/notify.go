package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/fachebot/townhall-recap/internal/kit"
	"github.com/fachebot/townhall-recap/internal/logger"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// broadcastSender 广播发送接口（便于测试注入 mock）
type broadcastSender interface {
	SendBroadcast(ctx context.Context, subject, htmlContent string) error
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type Notifier struct {
	sender broadcastSender
	config *config.Kit
}

func NewNotifier(sender *kit.Client, cfg *config.Kit) *Notifier {
	return &Notifier{
		sender: sender,
		config: cfg,
	}
}

// Notify 将审定后的摘要渲染为 HTML 邮件并发给订阅列表
func (n *Notifier) Notify(ctx context.Context, summaryMarkdown string) error {
	if strings.TrimSpace(summaryMarkdown) == "" {
		return nil
	}

	html, err := RenderEmailHTML(summaryMarkdown)
	if err != nil {
		return fmt.Errorf("渲染邮件内容失败: %w", err)
	}

	if err := n.sender.SendBroadcast(ctx, n.config.Subject, html); err != nil {
		return err
	}

	logger.Infof("[Notify] 周报已发送至订阅列表")
	return nil
}

// RenderEmailHTML 将 markdown 摘要渲染为带样式外壳的 HTML 邮件正文
func RenderEmailHTML(summaryMarkdown string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(summaryMarkdown), &buf); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("<html><body style='font-family:Inter,Arial,sans-serif; color:#111827;'>")
	sb.WriteString("<h2 style='margin-top:0;'>Town Hall Summary</h2>")
	sb.Write(buf.Bytes())
	sb.WriteString("</body></html>")
	return sb.String(), nil
}
