package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fachebot/townhall-recap/internal/kit"
	"github.com/fachebot/townhall-recap/internal/workflow"
)

// decodeJSON 解析请求体，失败时直接响应 400
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond(w, http.StatusBadRequest, errorPayload("Invalid JSON payload."))
		return false
	}
	return true
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	message, err := s.registrar.Register(r.Context(), req.Email)
	if err != nil {
		// 订阅路由透传服务商的状态码和规整后的信息
		var provErr *kit.ProviderError
		if errors.As(err, &provErr) {
			respond(w, provErr.StatusCode, errorPayload(provErr.Message))
			return
		}
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": message})
}

type summarizeRequest struct {
	Password         string `json:"password"`
	UseManual        *bool  `json:"use_manual"`
	ManualTranscript string `json:"manual_transcript"`
	YoutubeURL       string `json:"youtube_url"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// use_manual 缺省时沿用旧版前端的行为：只填了手工转写文本即视为手工模式
	useManual := strings.TrimSpace(req.ManualTranscript) != "" && strings.TrimSpace(req.YoutubeURL) == ""
	if req.UseManual != nil {
		useManual = *req.UseManual
	}

	result, err := s.controller.Generate(r.Context(), workflow.GenerateInput{
		Credential:       req.Password,
		UseManual:        useManual,
		ManualTranscript: req.ManualTranscript,
		VideoURL:         req.YoutubeURL,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]string{
		"status":     "Success",
		"summary":    result.Summary,
		"transcript": result.Transcript,
	})
}

type regenerateRequest struct {
	Password       string `json:"password"`
	UserPrompt     string `json:"user_prompt"`
	CurrentSummary string `json:"current_summary"`
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := s.controller.Regenerate(r.Context(), req.Password, req.UserPrompt, req.CurrentSummary)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"summary": summary,
	})
}

type sendRequest struct {
	Password string `json:"password"`
	Summary  string `json:"summary"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.controller.Send(r.Context(), req.Password, req.Summary); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Summary sent to subscribers.",
	})
}

type credentialRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.controller.Cancel(req.Password); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "Success"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snapshot, err := s.controller.Status(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, snapshot)
}
