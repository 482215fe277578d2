package constants

const (
	// DefaultExtractorVer 默认的抽取器版本标识，随提交记录落库
	DefaultExtractorVer = "heuristic-v1"

	// UnknownCandidateName 姓名未提取到时的占位值
	// 由持久化层写入，抽取引擎本身只返回缺失。
	UnknownCandidateName = "Unknown"
)

// 提交记录状态机
const (
	// StatusPendingExtraction 附件已暂存，等待抽取
	StatusPendingExtraction = "PENDING_EXTRACTION"
	// StatusExtractionInProgress 抽取进行中
	StatusExtractionInProgress = "EXTRACTION_IN_PROGRESS"
	// StatusExtractionCompleted 抽取完成，字段已入库
	StatusExtractionCompleted = "EXTRACTION_COMPLETED"
	// StatusExtractionFailed 文本提取或入库失败
	StatusExtractionFailed = "EXTRACTION_FAILED"
	// StatusDuplicateSkipped 文本MD5重复，跳过处理
	StatusDuplicateSkipped = "DUPLICATE_SKIPPED"
)
