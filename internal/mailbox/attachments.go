package mailbox

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/emersion/go-message/mail"
)

// Attachment 从邮件中剥离出的单个附件
type Attachment struct {
	Filename string
	Data     []byte
}

// 简历附件允许的扩展名
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".rtf":  true,
	".txt":  true,
}

// isResumeAttachment 判断文件名是否像一份简历附件
func isResumeAttachment(filename string) bool {
	if filename == "" {
		return false
	}
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ParseAttachments 从原始RFC822邮件体中解出所有简历附件
// 超过sizeLimit字节的附件被跳过并记录在返回的skipped列表中。
func ParseAttachments(raw io.Reader, sizeLimit int64) (attachments []Attachment, skipped []string, err error) {
	mr, err := mail.CreateReader(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("解析邮件失败: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 单个part解析失败不终止整封邮件的处理
			continue
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, err := header.Filename()
		if err != nil || !isResumeAttachment(filename) {
			continue
		}

		// 限制读取大小，防止超大附件撑爆内存
		limited := io.LimitReader(part.Body, sizeLimit+1)
		data, err := io.ReadAll(limited)
		if err != nil {
			skipped = append(skipped, filename)
			continue
		}
		if int64(len(data)) > sizeLimit {
			skipped = append(skipped, filename)
			continue
		}

		attachments = append(attachments, Attachment{
			Filename: filename,
			Data:     data,
		})
	}

	return attachments, skipped, nil
}
