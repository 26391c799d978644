package api

import (
	"context"
	"net/http"

	"github.com/fachebot/townhall-recap/internal/registrar"
	"github.com/fachebot/townhall-recap/internal/workflow"
)

// workflowController 工作流控制器接口（便于测试注入 mock）
type workflowController interface {
	Generate(ctx context.Context, input workflow.GenerateInput) (*workflow.GenerateResult, error)
	Regenerate(ctx context.Context, credential, instruction, editedSummary string) (string, error)
	Send(ctx context.Context, credential, finalSummary string) error
	Cancel(credential string) error
	Status(credential string) (*workflow.Snapshot, error)
}

// subscriberRegistrar 订阅注册接口（便于测试注入 mock）
type subscriberRegistrar interface {
	Register(ctx context.Context, email string) (string, error)
}

// Server 周报服务的 HTTP 接口层
//
// 只负责解析请求、分发到工作流控制器/注册器并把错误映射为状态码，
// 不包含任何业务规则。
type Server struct {
	controller workflowController
	registrar  subscriberRegistrar
}

func NewServer(controller *workflow.Controller, reg *registrar.Registrar) *Server {
	return &Server{
		controller: controller,
		registrar:  reg,
	}
}

// Handler 构造路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/subscribe", s.withCORS(s.handleSubscribe))
	mux.HandleFunc("/api/summarize", s.withCORS(s.handleSummarize))
	mux.HandleFunc("/api/summarize/regenerate", s.withCORS(s.handleRegenerate))
	mux.HandleFunc("/api/summarize/send", s.withCORS(s.handleSend))
	mux.HandleFunc("/api/summarize/cancel", s.withCORS(s.handleCancel))
	mux.HandleFunc("/api/summarize/status", s.withCORS(s.handleStatus))
	return mux
}

// withCORS 处理预检请求并限定 POST 方法
func (s *Server) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case http.MethodPost:
			next(w, r)
		default:
			respond(w, http.StatusMethodNotAllowed, errorPayload("Method not allowed."))
		}
	}
}
