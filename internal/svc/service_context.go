package svc

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/fachebot/townhall-recap/internal/kit"
	"github.com/fachebot/townhall-recap/internal/llm"
	"github.com/fachebot/townhall-recap/internal/logger"
	"github.com/fachebot/townhall-recap/internal/notify"
	"github.com/fachebot/townhall-recap/internal/registrar"
	"github.com/fachebot/townhall-recap/internal/transcriber"
	"github.com/fachebot/townhall-recap/internal/workflow"

	"golang.org/x/net/proxy"
)

type ServiceContext struct {
	Config      *config.Config
	HTTPClient  *http.Client
	LLMClient   *llm.Client
	Transcriber *transcriber.Client
	KitClient   *kit.Client
	Notifier    *notify.Notifier
	Controller  *workflow.Controller
	Registrar   *registrar.Registrar
}

func NewServiceContext(c *config.Config) *ServiceContext {
	// 创建SOCKS5代理
	var transport *http.Transport
	if c.Sock5Proxy.Enable {
		socks5Proxy := fmt.Sprintf("%s:%d", c.Sock5Proxy.Host, c.Sock5Proxy.Port)
		dialer, err := proxy.SOCKS5("tcp", socks5Proxy, nil, proxy.Direct)
		if err != nil {
			logger.Fatalf("创建SOCKS5代理失败, %v", err)
		}

		transport = &http.Transport{
			Dial: dialer.Dial,
		}
	}

	// 转写、邮件列表调用共用一个 HTTP 客户端，单次请求超时兜底 60 秒
	httpClient := &http.Client{Timeout: 60 * time.Second}
	if transport != nil {
		httpClient.Transport = transport
	}

	// LLM 补全耗时远超 60 秒，超时交给调用方的 context 控制
	llmHTTPClient := &http.Client{}
	if transport != nil {
		llmHTTPClient.Transport = transport
	}

	llmClient := llm.NewClient(&c.LLM, llm.WithHTTPClient(llmHTTPClient))
	transcriberClient := transcriber.NewClient(&c.Transcriber, httpClient)
	kitClient := kit.NewClient(&c.Kit, httpClient)
	notifier := notify.NewNotifier(kitClient, &c.Kit)

	svcCtx := &ServiceContext{
		Config:      c,
		HTTPClient:  httpClient,
		LLMClient:   llmClient,
		Transcriber: transcriberClient,
		KitClient:   kitClient,
		Notifier:    notifier,
		Controller:  workflow.NewController(transcriberClient, llmClient, notifier, c.Admin.Password),
		Registrar:   registrar.NewRegistrar(kitClient),
	}

	if !c.TranscriberConfigured() {
		logger.Warnf("未配置转写服务，视频引用路径将不可用")
	}
	if !c.KitConfigured() {
		logger.Warnf("未配置邮件列表服务，订阅与发送将不可用")
	}

	return svcCtx
}
