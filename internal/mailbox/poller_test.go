package mailbox

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// fakeDeduper 记录去重调用，便于断言调用次序和次数
type fakeDeduper struct {
	calls  []string
	exists bool
	err    error
}

func (f *fakeDeduper) CheckAndAddSenderEmail(_ context.Context, email string) (bool, error) {
	f.calls = append(f.calls, email)
	return f.exists, f.err
}

func newTestPoller(dedup senderDeduper) *Poller {
	return &Poller{
		dedup: dedup,
		log:   zerolog.Nop(),
	}
}

func TestAdmitMessage(t *testing.T) {
	ctx := context.Background()
	sample := []Attachment{{Filename: "resume.pdf", Data: []byte("%PDF-1.4")}}

	t.Run("无附件的邮件不消耗去重名额", func(t *testing.T) {
		dedup := &fakeDeduper{}
		p := newTestPoller(dedup)

		assert.False(t, p.admitMessage(ctx, "priya@example.com", nil))
		// 纯文本邮件被拒时去重集合不能被写入，
		// 否则同一发件人补发带附件的邮件会被误拦
		assert.Empty(t, dedup.calls)
	})

	t.Run("有附件的新发件人放行并登记", func(t *testing.T) {
		dedup := &fakeDeduper{exists: false}
		p := newTestPoller(dedup)

		assert.True(t, p.admitMessage(ctx, "priya@example.com", sample))
		assert.Equal(t, []string{"priya@example.com"}, dedup.calls)
	})

	t.Run("去重窗口内的发件人被拦下", func(t *testing.T) {
		dedup := &fakeDeduper{exists: true}
		p := newTestPoller(dedup)

		assert.False(t, p.admitMessage(ctx, "priya@example.com", sample))
	})

	t.Run("去重检查出错时按未重复处理", func(t *testing.T) {
		dedup := &fakeDeduper{err: errors.New("redis: connection refused")}
		p := newTestPoller(dedup)

		assert.True(t, p.admitMessage(ctx, "priya@example.com", sample))
	})

	t.Run("未配置Redis时直接放行", func(t *testing.T) {
		p := newTestPoller(nil)

		assert.True(t, p.admitMessage(ctx, "priya@example.com", sample))
	})
}
