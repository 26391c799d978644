package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/fachebot/townhall-recap/internal/logger"
)

var (
	// ErrInvalidReference 视频引用格式非法
	ErrInvalidReference = errors.New("无效的视频引用")
	// ErrUpstreamUnavailable 转写服务失败或超时
	ErrUpstreamUnavailable = errors.New("转写服务不可用")
	// ErrNotConfigured 转写服务未配置，发起网络调用前拦截
	ErrNotConfigured = errors.New("转写服务未配置")
)

// SourceKind 转写来源类型
type SourceKind string

const (
	SourceManual    SourceKind = "manual"    // 手工粘贴的转写文本
	SourceReference SourceKind = "reference" // 视频引用，交给外部转写服务
)

// Source 转写来源，Text 与 Locator 二者只会填充其一
type Source struct {
	Kind    SourceKind
	Text    string
	Locator string
}

type Client struct {
	cfg          *config.Transcriber
	httpClient   *http.Client
	pollInterval time.Duration
	timeout      time.Duration
}

func NewClient(cfg *config.Transcriber, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:          cfg,
		httpClient:   httpClient,
		pollInterval: time.Duration(cfg.PollInterval) * time.Second,
		timeout:      time.Duration(cfg.Timeout) * time.Second,
	}
}

// Acquire 解析转写来源并返回转写文本
//
// 手工路径不产生任何网络调用；引用路径提交给外部转写服务并轮询结果。
// 每个会话最多调用一次，失败不自动重试。
func (c *Client) Acquire(ctx context.Context, src Source) (string, error) {
	switch src.Kind {
	case SourceManual:
		return strings.TrimSpace(src.Text), nil
	case SourceReference:
		return c.transcribeReference(ctx, src.Locator)
	default:
		return "", fmt.Errorf("%w: 未知的来源类型 %q", ErrInvalidReference, src.Kind)
	}
}

// transcribeReference 提交视频引用并轮询转写结果
func (c *Client) transcribeReference(ctx context.Context, locator string) (string, error) {
	if c.cfg.BaseURL == "" || c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	locator = strings.TrimSpace(locator)
	u, err := url.Parse(locator)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidReference
	}

	id, err := c.submit(ctx, locator)
	if err != nil {
		return "", err
	}
	logger.Infof("[Transcriber] 已提交转写任务 %s", id)

	return c.poll(ctx, id)
}

type submitResponse struct {
	ID string `json:"id"`
}

type statusResponse struct {
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// submit 提交转写任务，返回任务ID
func (c *Client) submit(ctx context.Context, locator string) (string, error) {
	body, _ := json.Marshal(map[string]string{"audio_url": locator})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("authorization", c.cfg.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: 提交转写任务失败, 状态码 %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var parsed submitResponse
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.ID == "" {
		return "", fmt.Errorf("%w: 转写服务返回异常响应", ErrUpstreamUnavailable)
	}
	return parsed.ID, nil
}

// poll 轮询转写任务直至完成、失败或超时
func (c *Client) poll(ctx context.Context, id string) (string, error) {
	deadline := time.Now().Add(c.timeout)

	for {
		status, err := c.fetchStatus(ctx, id)
		if err != nil {
			return "", err
		}

		switch status.Status {
		case "completed":
			return strings.TrimSpace(status.Text), nil
		case "failed", "error":
			msg := status.Error
			if msg == "" {
				msg = "转写失败"
			}
			return "", fmt.Errorf("%w: %s", ErrUpstreamUnavailable, msg)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: 转写超时", ErrUpstreamUnavailable)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
		case <-time.After(c.pollInterval):
		}
	}
}

// fetchStatus 查询一次转写任务状态
func (c *Client) fetchStatus(ctx context.Context, id string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/transcript/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("authorization", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: 查询转写状态失败, 状态码 %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var parsed statusResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: 转写服务返回异常响应", ErrUpstreamUnavailable)
	}
	return &parsed, nil
}
