package mailbox

import (
	"strings"
	"testing"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleMail 构造一封带简历附件和干扰附件的multipart邮件
const sampleMail = "From: Priya Sharma <priya@example.com>\r\n" +
	"To: resumes@example.com\r\n" +
	"Subject: Application for Backend Engineer\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=BOUNDARY42\r\n" +
	"\r\n" +
	"--BOUNDARY42\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Please find my resume attached.\r\n" +
	"--BOUNDARY42\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=\"resume.pdf\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"JVBERi0xLjQ=\r\n" +
	"--BOUNDARY42\r\n" +
	"Content-Type: image/png\r\n" +
	"Content-Disposition: attachment; filename=\"photo.png\"\r\n" +
	"\r\n" +
	"notaresume\r\n" +
	"--BOUNDARY42--\r\n"

func TestParseAttachments(t *testing.T) {
	attachments, skipped, err := ParseAttachments(strings.NewReader(sampleMail), 1024*1024)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Empty(t, skipped)

	// 只有简历扩展名的附件被保留，图片被忽略
	assert.Equal(t, "resume.pdf", attachments[0].Filename)
	assert.Equal(t, "%PDF-1.4", string(attachments[0].Data))
}

func TestParseAttachmentsSizeLimit(t *testing.T) {
	// 4字节的上限会把解码后8字节的PDF内容挡掉
	attachments, skipped, err := ParseAttachments(strings.NewReader(sampleMail), 4)
	require.NoError(t, err)
	assert.Empty(t, attachments)
	require.Len(t, skipped, 1)
	assert.Equal(t, "resume.pdf", skipped[0])
}

func TestParseAttachmentsInvalidMail(t *testing.T) {
	_, _, err := ParseAttachments(strings.NewReader("not an email"), 1024)
	assert.Error(t, err)
}

func TestIsResumeAttachment(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"PDF附件", "resume.pdf", true},
		{"大写扩展名", "RESUME.PDF", true},
		{"Word文档", "简历.docx", true},
		{"旧版Word", "cv.doc", true},
		{"RTF文档", "cv.rtf", true},
		{"纯文本", "resume.txt", true},
		{"图片不是简历", "photo.png", false},
		{"压缩包不是简历", "files.zip", false},
		{"无扩展名", "resume", false},
		{"空文件名", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isResumeAttachment(tt.filename))
		})
	}
}

func TestExtractSender(t *testing.T) {
	t.Run("优先取From地址", func(t *testing.T) {
		env := &imap.Envelope{
			From:   []imap.Address{{Mailbox: "Priya.Sharma", Host: "Example.COM"}},
			Sender: []imap.Address{{Mailbox: "other", Host: "example.com"}},
		}
		// 地址统一转小写，去重集合才不会被大小写绕过
		assert.Equal(t, "priya.sharma@example.com", extractSender(env))
	})

	t.Run("From为空回落到Sender", func(t *testing.T) {
		env := &imap.Envelope{
			Sender: []imap.Address{{Mailbox: "hr", Host: "example.com"}},
		}
		assert.Equal(t, "hr@example.com", extractSender(env))
	})

	t.Run("空信封返回空串", func(t *testing.T) {
		assert.Equal(t, "", extractSender(nil))
		assert.Equal(t, "", extractSender(&imap.Envelope{}))
	})
}
