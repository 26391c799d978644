package kit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/fachebot/townhall-recap/internal/logger"
)

// ErrNotConfigured 邮件列表服务未配置，发起网络调用前拦截
var ErrNotConfigured = errors.New("邮件列表服务未配置")

// ProviderError 服务商返回的非成功结果，Message 为可展示的人类可读信息
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

type Client struct {
	cfg        *config.Kit
	httpClient *http.Client
}

func NewClient(cfg *config.Kit, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// providerBody 服务商响应中的错误字段，按 message > error > errors[0] 的顺序取用
type providerBody struct {
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Errors  []string `json:"errors"`
}

// pickMessage 从服务商响应中提取最具体的人类可读信息
func (b *providerBody) pickMessage(fallback string) string {
	if b.Message != "" {
		return b.Message
	}
	if b.Error != "" {
		return b.Error
	}
	if len(b.Errors) > 0 {
		return b.Errors[0]
	}
	return fallback
}

// Subscribe 向邮件列表表单注册一个订阅者
func (c *Client) Subscribe(ctx context.Context, email string) error {
	if c.cfg.APISecret == "" || c.cfg.FormID == "" {
		return ErrNotConfigured
	}

	payload := map[string]string{
		"api_secret": c.cfg.APISecret,
		"email":      email,
	}
	endpoint := fmt.Sprintf("%s/v3/forms/%s/subscribe", c.cfg.BaseURL, c.cfg.FormID)

	status, body, err := c.post(ctx, endpoint, payload)
	if err != nil {
		return &ProviderError{StatusCode: http.StatusBadGateway, Message: "Unable to subscribe right now."}
	}

	if status < 200 || status >= 300 {
		return &ProviderError{StatusCode: status, Message: body.pickMessage("Unable to subscribe right now.")}
	}

	logger.Infof("[Kit] 订阅成功 %s", email)
	return nil
}

// SendBroadcast 创建并立即发出一封广播邮件
func (c *Client) SendBroadcast(ctx context.Context, subject, htmlContent string) error {
	if c.cfg.APISecret == "" || c.cfg.FormID == "" {
		return ErrNotConfigured
	}

	formID, err := strconv.ParseInt(c.cfg.FormID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: FormID 必须为数字", ErrNotConfigured)
	}

	payload := map[string]any{
		"api_secret":       c.cfg.APISecret,
		"subject":          subject,
		"content":          htmlContent,
		"public":           true,
		"send_to_form_ids": []int64{formID},
		// send_at 为当前时间，服务商会立即投递
		"send_at": time.Now().UTC().Format(time.RFC3339),
	}
	if c.cfg.EmailTemplateID != "" {
		templateID, err := strconv.ParseInt(c.cfg.EmailTemplateID, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: EmailTemplateID 必须为数字", ErrNotConfigured)
		}
		payload["email_layout_template_id"] = templateID
	}

	status, body, err := c.post(ctx, c.cfg.BaseURL+"/v3/broadcasts", payload)
	if err != nil {
		return &ProviderError{StatusCode: http.StatusBadGateway, Message: "Broadcast request failed."}
	}

	if status != http.StatusOK && status != http.StatusCreated {
		return &ProviderError{StatusCode: status, Message: body.pickMessage("Broadcast request failed.")}
	}

	logger.Infof("[Kit] 广播已创建, 主题 %q", subject)
	return nil
}

// post 发送 JSON 请求并宽容地解析响应体，解析失败按空对象处理
func (c *Client) post(ctx context.Context, endpoint string, payload any) (int, *providerBody, error) {
	data, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Errorf("[Kit] 请求失败 %s: %v", endpoint, err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var body providerBody
	if err := json.Unmarshal(raw, &body); err != nil {
		// 响应体不是合法 JSON 时按空结果处理，不视为硬错误
		body = providerBody{}
	}
	return resp.StatusCode, &body, nil
}
