package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"resume-extract-go/internal/config"
)

// TextExtractor 附件文本提取器接口
// 把简历附件（PDF、DOCX等）转成纯文本，供字段抽取引擎消费。
type TextExtractor interface {
	// ExtractFromFile 从本地文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据，uri用于日志和格式推断
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

// NewTextExtractor 根据配置构造文本提取器
// type为"eino"时使用本地PDF解析器（仅支持PDF），
// 其余情况走Tika服务器，支持PDF/DOCX/DOC等多种格式。
func NewTextExtractor(ctx context.Context, cfg *config.TikaConfig) (TextExtractor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("文本提取器配置不能为空")
	}

	if strings.EqualFold(cfg.Type, "eino") {
		return NewEinoPDFTextExtractor(ctx)
	}

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("tika server_url 配置不能为空")
	}

	opts := []TikaOption{}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(time.Duration(cfg.Timeout)*time.Second))
	}
	switch cfg.MetadataMode {
	case "full":
		opts = append(opts, WithFullMetadata(true), WithMinimalMetadata(false))
	case "none":
		opts = append(opts, WithFullMetadata(false), WithMinimalMetadata(false))
	default:
		// "minimal" 或留空
	}
	return NewTikaTextExtractor(cfg.ServerURL, opts...), nil
}

// contentTypeForURI 根据文件扩展名推断Content-Type
// 未知扩展名交给Tika自行探测。
func contentTypeForURI(uri string) string {
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".rtf":
		return "application/rtf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
