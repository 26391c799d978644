package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/fachebot/townhall-recap/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// ErrEmptyTranscript 转写文本为空，必须在调用外部服务前拦截
var ErrEmptyTranscript = errors.New("转写文本为空")

const (
	// outputReserveTokens 预留给 system prompt 和模型输出的 token 数
	outputReserveTokens = 2000
	// minInputTokens 输入预算下限，防止配置过小时把转写截成碎片
	minInputTokens = 1000
)

// openAIClientInterface 定义 OpenAI 客户端接口，便于测试
type openAIClientInterface interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	config         *config.LLM
	openaiClient   openAIClientInterface
	maxInputTokens int
}

func NewClient(cfg *config.LLM, opts ...Option) *Client {
	openaiConfig := openai.DefaultConfig(cfg.APIKey)
	openaiConfig.BaseURL = cfg.BaseURL
	for _, opt := range opts {
		opt(&openaiConfig)
	}

	maxInputTokens := cfg.MaxTokens - outputReserveTokens
	if maxInputTokens < minInputTokens {
		maxInputTokens = minInputTokens
	}

	client := &Client{
		config:         cfg,
		openaiClient:   openai.NewClientWithConfig(openaiConfig),
		maxInputTokens: maxInputTokens,
	}

	return client
}

const systemPrompt = `You are a professional summarizer for a space DAO.
Create a clean, markdown-formatted summary of the weekly Town Hall transcript focusing on:
1. Urgent deadlines and action items.
2. New proposals (names, goals, status).
3. Key project updates from Senators.
4. Guest speakers or upcoming events.
Keep it concise, use bullet points where appropriate, and include section headings.`

// estimateTokens 估算文本的 token 数量
func estimateTokens(text string) int {
	// 简单估算：中文约 1.5 token/字，英文约 1.3 token/词
	chineseChars := 0
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			chineseChars++
		}
	}

	// 英文词数估算（简单按空格分割）
	englishWords := len(strings.Fields(text))

	tokens := int(float64(chineseChars)*1.5 + float64(englishWords)*1.3)
	if tokens < len(text)/4 {
		// 如果估算值太小，使用字符数的 1/4 作为下限
		tokens = len(text) / 4
	}

	return tokens
}

// truncateToBudget 将超出 token 预算的文本按字符截断
func truncateToBudget(text string, maxTokens int) string {
	tokens := estimateTokens(text)
	if tokens <= maxTokens {
		return text
	}

	// token 下限估算为字符数的 1/4，按比例换算出可保留的字符数
	runes := []rune(text)
	keep := len(runes) * maxTokens / tokens
	if keep <= 0 {
		keep = 1
	}
	logger.Warnf("[LLM] 转写文本过长 (%d tokens)，截断至约 %d tokens", tokens, maxTokens)
	return string(runes[:keep])
}

// Summarize 基于完整转写文本生成一份全新摘要
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}

	transcript = truncateToBudget(transcript, c.maxInputTokens)
	userPrompt := "Transcript:\n" + transcript

	return c.complete(ctx, userPrompt)
}

// Revise 按操作员指令改写当前摘要，以原始转写文本为事实依据
func (c *Client) Revise(ctx context.Context, transcript, currentSummary, instruction string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}

	transcript = truncateToBudget(transcript, c.maxInputTokens)
	userPrompt := fmt.Sprintf(`You previously created this summary:

%s

The user now wants you to modify it with this instruction: %s

Based on the original transcript below, regenerate the summary according to the user's request.
Maintain the markdown formatting and do not invent content that is absent from the transcript.

Original transcript:
%s`, currentSummary, instruction, transcript)

	return c.complete(ctx, userPrompt)
}

// complete 执行一次补全请求并清理返回内容
func (c *Client) complete(ctx context.Context, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   4000,
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("调用 LLM API 失败: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM API 返回空结果")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("LLM API 返回空内容")
	}
	return content, nil
}
