// Package extractor 实现简历字段的级联启发式抽取引擎。
// 引擎完全无状态、无 I/O、确定性：同一输入永远得到同一 FieldRecord，
// 任何字段抽取失败都表现为该字段缺失，引擎本身从不返回错误。
package extractor

import (
	"io"
	"log"

	"resume-extract-go/internal/types"
)

// fieldRule 单个字段的抽取入口
type fieldRule struct {
	key types.FieldKey
	fn  func(ResumeText) string
}

// fieldRules 字段与抽取函数的绑定表，各字段相互独立
var fieldRules = []fieldRule{
	{types.FieldFullName, extractFullName},
	{types.FieldEmail, extractEmail},
	{types.FieldMobile, extractMobile},
	{types.FieldEducation, extractEducation},
	{types.FieldCurrentLocation, extractCurrentLocation},
	{types.FieldSalary, extractSalary},
	{types.FieldPreferredLocation, extractPreferredLocation},
}

// Engine 字段抽取引擎
// 零值不可用，必须经 NewEngine 构造；构造后可被任意多个
// goroutine 并发调用，调用之间不共享任何可变状态。
type Engine struct {
	logger *log.Logger
}

// Option 引擎配置选项
type Option func(*Engine)

// WithLogger 配置自定义日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine 构造抽取引擎，默认丢弃内部日志
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		logger: log.New(io.Discard, "[字段抽取] ", log.LstdFlags),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Extract 对一段纯文本执行完整抽取
// 空文本或无法识别的文本得到全缺失的 FieldRecord，不报错。
func (e *Engine) Extract(raw string) types.FieldRecord {
	text := NormalizeText(raw)
	if text.IsEmpty() {
		e.logger.Printf("输入为空，返回全缺失记录")
		return types.FieldRecord{}
	}

	var record types.FieldRecord
	found := 0
	for _, rule := range fieldRules {
		v := rule.fn(text)
		if v == "" {
			continue
		}
		found++
		switch rule.key {
		case types.FieldFullName:
			record.FullName = v
		case types.FieldEmail:
			record.Email = v
		case types.FieldMobile:
			record.Mobile = v
		case types.FieldEducation:
			record.Education = v
		case types.FieldCurrentLocation:
			record.CurrentLocation = v
		case types.FieldSalary:
			record.Salary = v
		case types.FieldPreferredLocation:
			record.PreferredLocation = v
		}
	}
	e.logger.Printf("抽取完成: %d/%d 个字段命中 (共 %d 行)", found, len(fieldRules), text.Len())
	return record
}
