package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fachebot/townhall-recap/internal/kit"
	"github.com/fachebot/townhall-recap/internal/llm"
	"github.com/fachebot/townhall-recap/internal/logger"
	"github.com/fachebot/townhall-recap/internal/transcriber"
	"github.com/fachebot/townhall-recap/internal/validate"
	"github.com/fachebot/townhall-recap/internal/workflow"
)

// respond 输出 JSON 响应
func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("[API] 写入响应失败: %v", err)
	}
}

func errorPayload(message string) map[string]string {
	return map[string]string{"error": message}
}

// validationErrors 调用前即被拦截的输入校验错误，一律映射为 400
var validationErrors = []error{
	validate.ErrInvalidEmail,
	validate.ErrEmptyTranscript,
	validate.ErrInvalidReference,
	validate.ErrEmptyInstruction,
	validate.ErrEmptySummary,
	validate.ErrEmptyCredential,
	workflow.ErrMissingSource,
	workflow.ErrNoActiveSession,
	workflow.ErrEmptyTranscript,
	transcriber.ErrInvalidReference,
}

// respondError 将错误映射为 HTTP 状态码并输出
//
// 校验错误 400，口令不匹配 401，在途冲突 409，配置缺失 500，
// 其余上游/未知错误 500 并透出最具体的人类可读信息。
func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, workflow.ErrUnauthorized) {
		respond(w, http.StatusUnauthorized, errorPayload("Unauthorized"))
		return
	}
	if errors.Is(err, workflow.ErrBusy) {
		respond(w, http.StatusConflict, errorPayload(err.Error()))
		return
	}
	for _, verr := range validationErrors {
		if errors.Is(err, verr) {
			respond(w, http.StatusBadRequest, errorPayload(err.Error()))
			return
		}
	}
	if errors.Is(err, llm.ErrEmptyTranscript) {
		// 摘要边界的空文本兜底检查使用中文信息，对外换成操作员可读的文案
		respond(w, http.StatusBadRequest, errorPayload(workflow.ErrEmptyTranscript.Error()))
		return
	}
	if errors.Is(err, kit.ErrNotConfigured) || errors.Is(err, transcriber.ErrNotConfigured) {
		logger.Errorf("[API] 服务配置不完整: %v", err)
		respond(w, http.StatusInternalServerError, errorPayload("Server configuration incomplete."))
		return
	}

	var provErr *kit.ProviderError
	if errors.As(err, &provErr) {
		// 工作流路径的服务商失败统一 500，避免服务商的 401 与操作员口令
		// 不匹配的 401 混淆；只有订阅路由透传服务商状态码
		logger.Errorf("[API] 上游服务商调用失败: %v", err)
		respond(w, http.StatusInternalServerError, errorPayload(provErr.Message))
		return
	}

	logger.Errorf("[API] 请求处理失败: %v", err)
	respond(w, http.StatusInternalServerError, errorPayload(err.Error()))
}
