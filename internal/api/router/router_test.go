package router

import (
	"testing"

	"resume-extract-go/internal/api/handler"
	"resume-extract-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test_api_key"

func newTestEngine(t *testing.T) *server.Hertz {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.APIKeys = []string{testAPIKey}

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	RegisterRoutes(h, cfg, handler.NewSubmissionHandler(cfg, nil))
	return h
}

func TestHealthWithoutAPIKey(t *testing.T) {
	h := newTestEngine(t)

	// 健康检查不经过鉴权中间件
	resp := ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil)
	assert.Equal(t, 200, resp.Result().StatusCode())
	assert.Contains(t, string(resp.Result().Body()), "ok")
}

func TestAPIKeyRequired(t *testing.T) {
	h := newTestEngine(t)

	tests := []struct {
		name       string
		headers    []ut.Header
		wantStatus int
	}{
		{"缺少API Key", nil, 401},
		{"无效API Key", []ut.Header{{Key: "X-API-Key", Value: "wrong_key"}}, 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ut.PerformRequest(h.Engine, "GET", "/api/v1/submissions", nil, tt.headers...)
			assert.Equal(t, tt.wantStatus, resp.Result().StatusCode())
		})
	}
}

func TestUploadRequiresFile(t *testing.T) {
	h := newTestEngine(t)

	// 带合法Key但不带文件：鉴权通过，表单校验拒绝
	resp := ut.PerformRequest(h.Engine, "POST", "/api/v1/resume/upload", nil,
		ut.Header{Key: "X-API-Key", Value: testAPIKey})
	require.Equal(t, 400, resp.Result().StatusCode())
	assert.Contains(t, string(resp.Result().Body()), "文件未找到")
}
