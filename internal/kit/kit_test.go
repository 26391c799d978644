package kit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSubscribe_NotConfigured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	tests := []struct {
		name string
		cfg  config.Kit
	}{
		{"缺少APISecret", config.Kit{BaseURL: server.URL, FormID: "123"}},
		{"缺少FormID", config.Kit{BaseURL: server.URL, APISecret: "secret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(&tt.cfg, nil)
			err := client.Subscribe(context.Background(), "alice@example.com")
			assert.ErrorIs(t, err, ErrNotConfigured)
		})
	}
	// 配置缺失不应触发任何网络调用
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubscribe_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/forms/123/subscribe", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "secret", body["api_secret"])
		assert.Equal(t, "alice@example.com", body["email"])
		json.NewEncoder(w).Encode(map[string]any{"subscription": map[string]any{"id": 1}})
	}))
	defer server.Close()

	client := NewClient(&config.Kit{BaseURL: server.URL, APISecret: "secret", FormID: "123"}, nil)
	err := client.Subscribe(context.Background(), "alice@example.com")
	assert.NoError(t, err)
}

func TestSubscribe_ErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"优先message字段", `{"message":"Email already subscribed.","error":"x","errors":["y"]}`, "Email already subscribed."},
		{"其次error字段", `{"error":"Invalid api secret.","errors":["y"]}`, "Invalid api secret."},
		{"再次errors首元素", `{"errors":["Form not found.","other"]}`, "Form not found."},
		{"最后通用回退", `{}`, "Unable to subscribe right now."},
		{"非法JSON按空对象处理", `<html>bad gateway</html>`, "Unable to subscribe right now."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(&config.Kit{BaseURL: server.URL, APISecret: "secret", FormID: "123"}, nil)
			err := client.Subscribe(context.Background(), "alice@example.com")

			var provErr *ProviderError
			assert.ErrorAs(t, err, &provErr)
			assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
			assert.Equal(t, tt.want, provErr.Message)
		})
	}
}

func TestSubscribe_MalformedSuccessBody(t *testing.T) {
	// 200 但响应体不可解析时仍视为成功
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(&config.Kit{BaseURL: server.URL, APISecret: "secret", FormID: "123"}, nil)
	err := client.Subscribe(context.Background(), "alice@example.com")
	assert.NoError(t, err)
}

func TestSendBroadcast_NotConfigured(t *testing.T) {
	client := NewClient(&config.Kit{BaseURL: "http://example.com"}, nil)
	err := client.SendBroadcast(context.Background(), "subject", "<p>hi</p>")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendBroadcast_NonNumericFormID(t *testing.T) {
	client := NewClient(&config.Kit{BaseURL: "http://example.com", APISecret: "secret", FormID: "abc"}, nil)
	err := client.SendBroadcast(context.Background(), "subject", "<p>hi</p>")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "FormID")
}

func TestSendBroadcast_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/broadcasts", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "secret", body["api_secret"])
		assert.Equal(t, "🚀 Weekly Recap", body["subject"])
		assert.Equal(t, "<p>summary</p>", body["content"])
		assert.Equal(t, true, body["public"])
		assert.Equal(t, []any{float64(123)}, body["send_to_form_ids"])
		assert.Equal(t, float64(456), body["email_layout_template_id"])
		assert.NotEmpty(t, body["send_at"])
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"broadcast": map[string]any{"id": 9}})
	}))
	defer server.Close()

	client := NewClient(&config.Kit{
		BaseURL:         server.URL,
		APISecret:       "secret",
		FormID:          "123",
		EmailTemplateID: "456",
	}, nil)
	err := client.SendBroadcast(context.Background(), "🚀 Weekly Recap", "<p>summary</p>")
	assert.NoError(t, err)
}

func TestSendBroadcast_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Authorization Failed"})
	}))
	defer server.Close()

	client := NewClient(&config.Kit{BaseURL: server.URL, APISecret: "bad", FormID: "123"}, nil)
	err := client.SendBroadcast(context.Background(), "subject", "<p>hi</p>")

	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
	assert.Equal(t, "Authorization Failed", provErr.Message)
}
