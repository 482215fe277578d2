package models

import (
	"time"

	"gorm.io/datatypes"
)

// Candidate 候选人主表
// 七个抽取字段逐列落库；抽取缺失的列保持空串，
// 两个例外: FullName 由持久化层以 "Unknown" 兜底，
// Email 缺失时落 NULL 而不是空串，否则第二个无联系方式的
// 候选人就会在唯一索引上撞 ('' == '')。
type Candidate struct {
	CandidateID       string    `gorm:"type:char(36);primaryKey"`
	FullName          string    `gorm:"type:varchar(255);not null"`
	Email             *string   `gorm:"type:varchar(255);uniqueIndex:idx_candidates_email_unique"`
	Mobile            string    `gorm:"type:varchar(50);index:idx_candidates_mobile"`
	Education         string    `gorm:"type:varchar(512)"`
	CurrentLocation   string    `gorm:"type:varchar(255)"`
	Salary            string    `gorm:"type:varchar(100)"`
	PreferredLocation string    `gorm:"type:varchar(255)"`
	SourceEmail       string    `gorm:"type:varchar(255);index:idx_candidates_source_email"`
	CreatedAt         time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt         time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// ResumeSubmission 简历提交/快照表
// 一封邮件附件对应一条提交记录，状态机:
// PENDING_EXTRACTION -> EXTRACTION_IN_PROGRESS -> EXTRACTION_COMPLETED
//
//	\-> EXTRACTION_FAILED / DUPLICATE_SKIPPED
type ResumeSubmission struct {
	SubmissionUUID      string         `gorm:"type:char(36);primaryKey"`
	CandidateID         *string        `gorm:"type:char(36);index:idx_rs_candidate_id"` // 抽取完成前为空
	SubmissionTimestamp time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	SourceChannel       string         `gorm:"type:varchar(100)"` // "mailbox" 或 "api_upload"
	SenderEmail         string         `gorm:"type:varchar(255);index:idx_rs_sender_email"`
	SourceFilename      string         `gorm:"type:varchar(255)"`
	StagedFilePathOSS   string         `gorm:"type:varchar(1024)"` // 暂存桶对象键
	ArchiveFilePathOSS  string         `gorm:"type:varchar(1024)"` // 归档桶对象键，搬运成功后回填
	ExtractedTextPath   string         `gorm:"type:varchar(1024)"` // 抽取文本对象键
	ExtractedTextMD5    string         `gorm:"type:char(32);index:idx_rs_extracted_text_md5"`
	ExtractedFieldsJSON datatypes.JSON `gorm:"type:json"` // 抽取出的 FieldRecord，空字段不出现
	ProcessingStatus    string         `gorm:"type:varchar(50);default:'PENDING_EXTRACTION';index:idx_rs_processing_status"`
	ExtractorVersion    string         `gorm:"type:varchar(50)"`
	ErrorMessage        string         `gorm:"type:text"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:CandidateID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// StringToJSON Helper function to convert string to datatypes.JSON
func StringToJSON(s string) datatypes.JSON {
	return datatypes.JSON(s)
}

// NullableString 空串转为NULL指针，用于带唯一索引的可缺失列
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
