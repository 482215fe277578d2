package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeTikaServer 构造一个模拟Tika行为的HTTP测试服务器
func newFakeTikaServer(t *testing.T, text string, metaJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		switch r.URL.Path {
		case "/tika":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(text))
		case "/meta":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(metaJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestTikaTextExtractorFromBytes(t *testing.T) {
	text := "JOHN SMITH\nEmail: john@example.com\nMobile: 9898989898"
	srv := newFakeTikaServer(t, text, `{"xmpTPg:NPages":"1","dc:title":"resume","x-custom":"ignored"}`)
	defer srv.Close()

	extractor := NewTikaTextExtractor(srv.URL)
	got, meta, err := extractor.ExtractTextFromBytes(context.Background(), []byte("%PDF-1.4 fake"), "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, text, got)

	// 精简元数据模式只保留白名单里的字段
	assert.Equal(t, "1", meta["xmpTPg:NPages"])
	assert.Equal(t, "resume", meta["dc:title"])
	assert.NotContains(t, meta, "x-custom")
	assert.Equal(t, len(text), meta["text_length"])
}

func TestTikaTextExtractorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	extractor := NewTikaTextExtractor(srv.URL)
	_, _, err := extractor.ExtractTextFromBytes(context.Background(), []byte("data"), "resume.docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "错误状态码")
}

func TestTikaTextExtractorFromReader(t *testing.T) {
	srv := newFakeTikaServer(t, "plain body", `{}`)
	defer srv.Close()

	extractor := NewTikaTextExtractor(srv.URL, WithMinimalMetadata(false))
	got, meta, err := extractor.ExtractTextFromReader(context.Background(), strings.NewReader("raw"), "resume.doc")
	require.NoError(t, err)
	assert.Equal(t, "plain body", got)
	assert.Equal(t, "resume.doc", meta["source_file_path"])
}

func TestContentTypeForURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"PDF扩展名", "a/b/resume.PDF", "application/pdf"},
		{"DOCX扩展名", "resume.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"未知扩展名", "resume.xyz", "application/octet-stream"},
		{"无扩展名", "resume", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentTypeForURI(tt.uri))
		})
	}
}
