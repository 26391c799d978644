package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Host string `yaml:"Host"`
	Port int    `yaml:"Port"`
}

type Sock5Proxy struct {
	Host   string `yaml:"Host"`
	Port   int32  `yaml:"Port"`
	Enable bool   `yaml:"Enable"`
}

type Admin struct {
	Password string `yaml:"Password"` // 操作员共享口令，服务端校验
}

type LLM struct {
	BaseURL   string `yaml:"BaseURL"` // 兼容 OpenAI API 的端点
	APIKey    string `yaml:"APIKey"`
	Model     string `yaml:"Model"`     // 如 gpt-4o, deepseek-chat, gemini-2.5-flash
	MaxTokens int    `yaml:"MaxTokens"` // 模型上下文窗口大小
}

type Transcriber struct {
	BaseURL      string `yaml:"BaseURL"` // 转写服务端点，如 https://api.assemblyai.com
	APIKey       string `yaml:"APIKey"`
	PollInterval int    `yaml:"PollInterval"` // 轮询间隔（秒），默认 5
	Timeout      int    `yaml:"Timeout"`      // 转写超时（秒），默认 900
}

type Kit struct {
	BaseURL         string `yaml:"BaseURL"` // 邮件列表服务端点，如 https://api.convertkit.com
	APISecret       string `yaml:"APISecret"`
	FormID          string `yaml:"FormID"`          // 订阅表单ID，必须为数字
	EmailTemplateID string `yaml:"EmailTemplateID"` // 可选的邮件模板ID，必须为数字
	Subject         string `yaml:"Subject"`         // 周报邮件主题
}

type Log struct {
	Level string `yaml:"Level"` // 控制台日志级别，默认 debug
}

type Session struct {
	TTLMinutes  int    `yaml:"TTLMinutes"`  // 预览会话保留时长（分钟），默认 120
	CleanupCron string `yaml:"CleanupCron"` // 清理过期会话的 cron 表达式，默认每10分钟
}

type Config struct {
	Server      Server      `yaml:"Server"`
	Sock5Proxy  Sock5Proxy  `yaml:"Sock5Proxy"`
	Admin       Admin       `yaml:"Admin"`
	LLM         LLM         `yaml:"LLM"`
	Transcriber Transcriber `yaml:"Transcriber"`
	Kit         Kit         `yaml:"Kit"`
	Log         Log         `yaml:"Log"`
	Session     Session     `yaml:"Session"`
}

func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var c Config
	err = yaml.Unmarshal([]byte(data), &c)
	if err != nil {
		return nil, err
	}

	c.applyDefaults()

	// 验证配置
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// applyDefaults 填充未配置项的默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Transcriber.PollInterval == 0 {
		c.Transcriber.PollInterval = 5
	}
	if c.Transcriber.Timeout == 0 {
		c.Transcriber.Timeout = 900
	}
	if c.Kit.BaseURL == "" {
		c.Kit.BaseURL = "https://api.convertkit.com"
	}
	if c.Kit.Subject == "" {
		c.Kit.Subject = "🚀 Weekly Town Hall Recap"
	}
	if c.Log.Level == "" {
		c.Log.Level = "debug"
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 120
	}
	if c.Session.CleanupCron == "" {
		c.Session.CleanupCron = "*/10 * * * *"
	}
}

// Validate 验证配置的有效性
//
// Kit 和 Transcriber 允许缺省：缺失时对应接口在发起网络调用前
// 返回服务不可用，而不是阻止进程启动。
func (c *Config) Validate() error {
	// 验证 Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("Server.Port 必须在 1~65535 之间")
	}

	// 验证 Admin
	if c.Admin.Password == "" {
		return fmt.Errorf("Admin.Password 不能为空")
	}

	// 验证 LLM
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM.APIKey 不能为空")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("LLM.BaseURL 不能为空")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM.Model 不能为空")
	}
	// MaxTokens 需要覆盖 2000 tokens 的输出预留，否则输入预算会被挤空
	if c.LLM.MaxTokens <= 2000 {
		return fmt.Errorf("LLM.MaxTokens 必须大于 2000")
	}

	// 验证 Transcriber
	if c.Transcriber.PollInterval < 0 {
		return fmt.Errorf("Transcriber.PollInterval 必须 >= 0")
	}
	if c.Transcriber.Timeout < 0 {
		return fmt.Errorf("Transcriber.Timeout 必须 >= 0")
	}

	// 验证 Kit
	if c.Kit.FormID != "" {
		if _, err := strconv.ParseInt(c.Kit.FormID, 10, 64); err != nil {
			return fmt.Errorf("Kit.FormID 必须为数字")
		}
	}
	if c.Kit.EmailTemplateID != "" {
		if _, err := strconv.ParseInt(c.Kit.EmailTemplateID, 10, 64); err != nil {
			return fmt.Errorf("Kit.EmailTemplateID 必须为数字")
		}
	}

	// 验证 Session
	if c.Session.TTLMinutes < 0 {
		return fmt.Errorf("Session.TTLMinutes 必须 >= 0")
	}

	return nil
}

// TranscriberConfigured 转写服务是否已配置
func (c *Config) TranscriberConfigured() bool {
	return c.Transcriber.BaseURL != "" && c.Transcriber.APIKey != ""
}

// KitConfigured 邮件列表服务是否已配置
func (c *Config) KitConfigured() bool {
	return c.Kit.APISecret != "" && c.Kit.FormID != ""
}
