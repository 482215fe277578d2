package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrAttachmentDownloadFailed = errors.New("下载暂存附件失败")
	ErrParseTextFailed          = errors.New("提取附件文本失败")
	ErrStoreTextFailed          = errors.New("上传抽取文本失败")
	ErrPromoteFailed            = errors.New("归档附件失败")
	ErrUpdateStatusFailed       = errors.New("更新提交状态失败")
	ErrDatabaseFailed           = errors.New("数据库操作失败")

	// ErrDuplicateContent 表示抽取文本与已有提交重复，属于正常流程而非故障
	ErrDuplicateContent = errors.New("抽取文本内容重复")
)

// ExtractionProcessError 包含详细错误信息的自定义错误
type ExtractionProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ExtractionProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ExtractionProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ExtractionProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewDownloadError(uuid, detail string) error {
	return &ExtractionProcessError{
		SubmissionUUID: uuid,
		Op:             "download",
		BaseErr:        ErrAttachmentDownloadFailed,
		Detail:         detail,
	}
}

func NewParseError(uuid, detail string) error {
	return &ExtractionProcessError{
		SubmissionUUID: uuid,
		Op:             "parse",
		BaseErr:        ErrParseTextFailed,
		Detail:         detail,
	}
}

func NewStoreError(uuid, detail string) error {
	return &ExtractionProcessError{
		SubmissionUUID: uuid,
		Op:             "store",
		BaseErr:        ErrStoreTextFailed,
		Detail:         detail,
	}
}

func NewPromoteError(uuid, detail string) error {
	return &ExtractionProcessError{
		SubmissionUUID: uuid,
		Op:             "promote",
		BaseErr:        ErrPromoteFailed,
		Detail:         detail,
	}
}

func NewUpdateError(uuid, detail string) error {
	return &ExtractionProcessError{
		SubmissionUUID: uuid,
		Op:             "update",
		BaseErr:        ErrUpdateStatusFailed,
		Detail:         detail,
	}
}

func NewDatabaseError(uuid, detail string) error {
	return &ExtractionProcessError{
		SubmissionUUID: uuid,
		Op:             "database",
		BaseErr:        ErrDatabaseFailed,
		Detail:         detail,
	}
}
