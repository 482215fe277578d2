package storage

import "time"

// AttachmentStagedMessage 附件暂存完成消息
// 邮箱轮询器或API上传在把附件写入暂存桶后发布，由抽取消费者处理。
type AttachmentStagedMessage struct {
	// 与数据库表字段一致的主要字段
	SubmissionUUID      string    `json:"submission_uuid"`          // 提交UUID，主键
	SubmissionTimestamp time.Time `json:"submission_timestamp"`     // 提交时间戳
	SourceChannel       string    `json:"source_channel,omitempty"` // 来源渠道: "mailbox" 或 "api_upload"
	SenderEmail         string    `json:"sender_email,omitempty"`   // 发件人邮箱，失败时用于回滚去重标记
	SourceFilename      string    `json:"source_filename"`          // 原始附件文件名
	StagedFilePathOSS   string    `json:"staged_file_path_oss"`     // 暂存桶中的对象键
	RawFileMD5          string    `json:"raw_file_md5,omitempty"`   // 原始附件的MD5
}

// ExtractionCompletedMessage 字段抽取完成消息
// 抽取消费者入库后经发件箱中继发布，供下游系统订阅。
type ExtractionCompletedMessage struct {
	SubmissionUUID     string `json:"submission_uuid"`                 // 提交UUID
	CandidateID        string `json:"candidate_id,omitempty"`          // 关联的候选人ID
	ProcessingStatus   string `json:"processing_status,omitempty"`     // 终态: EXTRACTION_COMPLETED / DUPLICATE_SKIPPED
	ExtractedTextPath  string `json:"extracted_text_path,omitempty"`   // 抽取文本在MinIO中的对象键
	ExtractedTextMD5   string `json:"extracted_text_md5,omitempty"`    // 抽取文本MD5
	ArchiveFilePathOSS string `json:"archive_file_path_oss,omitempty"` // 归档桶中的对象键
	ExtractorVersion   string `json:"extractor_version,omitempty"`     // 抽取引擎版本
	ProcessingTime     int64  `json:"processing_time,omitempty"`       // 处理完成时间戳
	Error              string `json:"error,omitempty"`                 // 错误信息
}
