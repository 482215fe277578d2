package processor

import (
	"fmt"
	"log"
	"time"

	"resume-extract-go/internal/storage"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithcompTextextractor 设置附件文本提取器组件
func WithcompTextextractor(extractor TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.TextExtractor = extractor
	}
}

// WithcompFieldengine 设置字段抽取引擎组件
func WithcompFieldengine(engine FieldExtractionEngine) ComponentOpt {
	return func(c *Components) {
		c.FieldEngine = engine
	}
}

// WithcompStorage 设置存储组件
func WithcompStorage(storage *storage.Storage) ComponentOpt {
	return func(c *Components) {
		c.Storage = storage
	}
}

// ----- 设置选项 -----

// WithsetDebug 设置调试模式
func WithsetDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger *log.Logger) SettingOpt {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		} else {
			// 提供一个 discard logger 以防万一
			s.Logger = log.New(log.Writer(), "[NilLoggerFallback] ", log.LstdFlags)
		}
	}
}

// WithsetExtractorversion 设置抽取器版本标识
func WithsetExtractorversion(version string) SettingOpt {
	return func(s *Settings) {
		s.ExtractorVersion = version
	}
}

// WithsetTimelocation 设置时区
func WithsetTimelocation(loc *time.Location) SettingOpt {
	return func(s *Settings) {
		if loc != nil {
			s.TimeLocation = loc
		} else {
			s.TimeLocation = time.Local
		}
	}
}

// ----- 统一的日志包装方法 -----

// logDebug 记录调试级别日志
func (ep *ExtractionProcessor) logDebug(format string, args ...interface{}) {
	if ep.Config.Debug && ep.Config.Logger != nil {
		ep.Config.Logger.Printf(format, args...)
	}
}

// logInfo 记录信息级别日志
func (ep *ExtractionProcessor) logInfo(format string, args ...interface{}) {
	if ep.Config.Logger != nil {
		ep.Config.Logger.Printf(format, args...)
	}
}

// logWarn 记录警告级别日志
func (ep *ExtractionProcessor) logWarn(format string, args ...interface{}) {
	if ep.Config.Logger != nil {
		ep.Config.Logger.Printf("[WARN] "+format, args...)
	}
}

// logError 记录错误级别日志
func (ep *ExtractionProcessor) logError(err error, format string, args ...interface{}) {
	if ep.Config.Logger != nil {
		if err != nil {
			format = fmt.Sprintf("ERROR: %v - %s", err, format)
		} else {
			format = "ERROR: " + format
		}
		ep.Config.Logger.Printf(format, args...)
	}
}
