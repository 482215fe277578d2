package processor

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"resume-extract-go/internal/extractor"
	"resume-extract-go/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTextExtractor 返回固定文本的提取器mock
type MockTextExtractor struct {
	Text string
	Err  error
}

func (m *MockTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return m.Text, nil, m.Err
}

func (m *MockTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	return m.Text, nil, m.Err
}

func (m *MockTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	return m.Text, nil, m.Err
}

// 编译期检查mock满足接口
var _ TextExtractor = (*MockTextExtractor)(nil)

// 真实引擎也必须满足processor侧的接口定义
var _ FieldExtractionEngine = (*extractor.Engine)(nil)

func TestNewExtractionProcessorDefaults(t *testing.T) {
	comp := &Components{
		TextExtractor: &MockTextExtractor{},
		FieldEngine:   extractor.NewEngine(),
	}
	set := &Settings{}

	ep := NewExtractionProcessor(comp, set)
	require.NotNil(t, ep)

	// 未指定时回落到默认版本和默认logger
	assert.Equal(t, "heuristic-v1", ep.Config.ExtractorVersion)
	assert.NotNil(t, ep.Config.Logger)
	assert.False(t, ep.Config.Debug)
}

func TestNewExtractionProcessorOptions(t *testing.T) {
	comp := &Components{
		TextExtractor: &MockTextExtractor{},
		FieldEngine:   extractor.NewEngine(),
	}
	set := &Settings{}

	custom := log.New(io.Discard, "[测试] ", log.LstdFlags)
	ep := NewExtractionProcessor(comp, set,
		WithsetDebug(true),
		WithsetLogger(custom),
		WithsetExtractorversion("heuristic-v2"),
	)

	assert.True(t, ep.Config.Debug)
	assert.Same(t, custom, ep.Config.Logger)
	assert.Equal(t, "heuristic-v2", ep.Config.ExtractorVersion)
}

func TestProcessStagedAttachmentRequiresComponents(t *testing.T) {
	ep := &ExtractionProcessor{Config: ComponentConfig{Logger: log.New(io.Discard, "", 0)}}
	msg := storage.AttachmentStagedMessage{SubmissionUUID: "uuid-1", SourceFilename: "resume.pdf"}
	err := ep.ProcessStagedAttachment(context.Background(), msg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Storage")
}

func TestExtractionProcessErrorSemantics(t *testing.T) {
	err := NewParseError("uuid-1", "tika不可达")

	// errors.Is 能匹配到基础错误类型
	assert.True(t, errors.Is(err, ErrParseTextFailed))
	assert.False(t, errors.Is(err, ErrAttachmentDownloadFailed))

	var procErr *ExtractionProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "uuid-1", procErr.SubmissionUUID)
	assert.Equal(t, "parse", procErr.Op)
	assert.Contains(t, err.Error(), "tika不可达")
}

func TestFieldEngineThroughProcessorInterface(t *testing.T) {
	// 通过接口调用真实引擎，验证流水线拿到的字段记录形状正确
	var engine FieldExtractionEngine = extractor.NewEngine()
	record := engine.Extract("Name: Priya Sharma\nEmail: priya@example.com\nMobile: 9876543210")

	assert.Equal(t, "Priya Sharma", record.FullName)
	assert.Equal(t, "priya@example.com", record.Email)
	assert.Equal(t, "9876543210", record.Mobile)
	assert.Empty(t, record.Salary)
}
