package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"resume-extract-go/internal/config"
	"resume-extract-go/internal/constants"
	"resume-extract-go/internal/logger"
	"resume-extract-go/internal/storage"
	"resume-extract-go/internal/storage/models"
	"resume-extract-go/internal/tracing"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var pollerTracer = otel.Tracer("resume-extract-go/mailbox")

const (
	defaultPollInterval   = time.Minute
	defaultAttachmentMB   = 10
	mailboxLockExpiration = 5 * time.Minute
)

// senderDeduper 发件人去重检查，生产实现是Redis集合
type senderDeduper interface {
	CheckAndAddSenderEmail(ctx context.Context, email string) (bool, error)
}

// Poller 周期性轮询IMAP邮箱，把新邮件里的简历附件送入抽取流水线
// 多实例部署时通过Redis分布式锁保证同一邮箱同一时刻只有一个轮询者。
type Poller struct {
	cfg     *config.Config
	storage *storage.Storage
	dedup   senderDeduper
	log     zerolog.Logger

	pollInterval time.Duration
	sizeLimit    int64
	done         chan struct{}
}

// NewPoller 创建邮箱轮询器
func NewPoller(cfg *config.Config, storageManager *storage.Storage) (*Poller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if cfg.IMAP.Address == "" {
		return nil, fmt.Errorf("IMAP地址未配置")
	}
	if storageManager == nil || storageManager.MinIO == nil || storageManager.MySQL == nil {
		return nil, fmt.Errorf("邮箱轮询器依赖MinIO和MySQL存储")
	}

	interval := defaultPollInterval
	if cfg.IMAP.PollInterval != "" {
		parsed, err := time.ParseDuration(cfg.IMAP.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("解析轮询间隔失败 (%s): %w", cfg.IMAP.PollInterval, err)
		}
		interval = parsed
	}

	maxMB := cfg.IMAP.MaxAttachmentMB
	if maxMB <= 0 {
		maxMB = defaultAttachmentMB
	}

	p := &Poller{
		cfg:          cfg,
		storage:      storageManager,
		log:          logger.WithComponent("mailbox-poller"),
		pollInterval: interval,
		sizeLimit:    int64(maxMB) * 1024 * 1024,
		done:         make(chan struct{}),
	}
	if storageManager.Redis != nil {
		p.dedup = storageManager.Redis
	}
	return p, nil
}

// Start 启动轮询循环，直到Stop被调用
func (p *Poller) Start(ctx context.Context) {
	p.log.Info().
		Str("address", p.cfg.IMAP.Address).
		Str("mailbox", p.mailboxName()).
		Dur("interval", p.pollInterval).
		Msg("邮箱轮询器启动")

	ticker := time.NewTicker(p.pollInterval)
	go func() {
		// 启动后立即跑一轮，不等第一个tick
		p.pollOnce(ctx)
		for {
			select {
			case <-p.done:
				ticker.Stop()
				p.log.Info().Msg("邮箱轮询器已停止")
				return
			case <-ctx.Done():
				ticker.Stop()
				p.log.Info().Msg("上下文取消，邮箱轮询器退出")
				return
			case <-ticker.C:
				p.pollOnce(ctx)
			}
		}
	}()
}

// Stop 优雅地停止轮询器
func (p *Poller) Stop() {
	close(p.done)
}

func (p *Poller) mailboxName() string {
	if p.cfg.IMAP.Mailbox != "" {
		return p.cfg.IMAP.Mailbox
	}
	return "INBOX"
}

// pollOnce 执行一轮完整的邮箱扫描
// 所有错误都在本轮内消化，不会让轮询循环退出。
func (p *Poller) pollOnce(ctx context.Context) {
	// 分布式锁防止多实例重复拉取同一邮箱
	lockKey := storage.MailboxLockKey(p.mailboxName())
	var lockValue string
	if p.storage.Redis != nil {
		value, err := p.storage.Redis.AcquireLock(ctx, lockKey, mailboxLockExpiration)
		if err != nil {
			p.log.Warn().Err(err).Msg("获取邮箱轮询锁失败，本轮跳过")
			return
		}
		if value == "" {
			p.log.Debug().Msg("邮箱轮询锁被其他实例持有，本轮跳过")
			return
		}
		lockValue = value
		defer func() {
			if _, err := p.storage.Redis.ReleaseLock(ctx, lockKey, lockValue); err != nil {
				p.log.Warn().Err(err).Msg("释放邮箱轮询锁失败")
			}
		}()
	}

	ctx, span := pollerTracer.Start(ctx, "Poller.pollOnce")
	defer span.End()

	processed, err := p.fetchAndStage(ctx)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeIMAP)
		p.log.Error().Err(err).Msg("邮箱扫描失败")
		return
	}
	span.SetAttributes(attribute.Int("mailbox.messages_processed", processed))
	if processed > 0 {
		p.log.Info().Int("count", processed).Msg("本轮邮箱扫描完成")
	}
}

// fetchAndStage 连接IMAP服务器，拉取未读邮件并暂存其中的简历附件
func (p *Poller) fetchAndStage(ctx context.Context) (int, error) {
	client, err := p.dial()
	if err != nil {
		return 0, fmt.Errorf("连接IMAP服务器失败: %w", err)
	}
	defer client.Close()

	if err := client.Login(p.cfg.IMAP.Username, p.cfg.IMAP.Password).Wait(); err != nil {
		return 0, fmt.Errorf("IMAP登录失败: %w", err)
	}
	defer func() {
		_ = client.Logout().Wait()
	}()

	if _, err := client.Select(p.mailboxName(), nil).Wait(); err != nil {
		return 0, fmt.Errorf("选择邮箱目录失败: %w", err)
	}

	// 只拉取未读邮件，处理完置为已读
	searchData, err := client.UIDSearch(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("搜索未读邮件失败: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return 0, nil
	}
	p.log.Debug().Int("unseen", len(uids)).Msg("发现未读邮件")

	processed := 0
	for _, uid := range uids {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		if err := p.handleMessage(ctx, client, uid); err != nil {
			p.log.Warn().Err(err).Uint32("uid", uint32(uid)).Msg("处理邮件失败，保留未读状态")
			continue
		}
		processed++
	}

	return processed, nil
}

func (p *Poller) dial() (*imapclient.Client, error) {
	if p.cfg.IMAP.UseTLS {
		return imapclient.DialTLS(p.cfg.IMAP.Address, nil)
	}
	return imapclient.DialInsecure(p.cfg.IMAP.Address, nil)
}

// handleMessage 处理单封邮件：附件解析、发件人去重、暂存入库、发布消息、置已读
func (p *Poller) handleMessage(ctx context.Context, client *imapclient.Client, uid imap.UID) error {
	uidSet := imap.UIDSetNum(uid)
	bodySection := &imap.FetchItemBodySection{}
	messages, err := client.Fetch(uidSet, &imap.FetchOptions{
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}).Collect()
	if err != nil {
		return fmt.Errorf("拉取邮件失败: %w", err)
	}
	if len(messages) == 0 {
		return fmt.Errorf("邮件UID %d 不存在", uid)
	}

	msg := messages[0]
	senderEmail := extractSender(msg.Envelope)
	if senderEmail == "" {
		p.log.Debug().Uint32("uid", uint32(uid)).Msg("邮件缺少发件人，置已读跳过")
		return p.markSeen(client, uidSet)
	}

	raw := msg.FindBodySection(bodySection)
	if raw == nil {
		return fmt.Errorf("邮件UID %d 缺少正文", uid)
	}

	attachments, skipped, err := ParseAttachments(bytes.NewReader(raw), p.sizeLimit)
	if err != nil {
		return fmt.Errorf("解析邮件附件失败: %w", err)
	}
	for _, name := range skipped {
		p.log.Warn().Str("filename", name).Str("sender", senderEmail).Msg("附件超过大小上限，跳过")
	}

	if !p.admitMessage(ctx, senderEmail, attachments) {
		return p.markSeen(client, uidSet)
	}

	subject := ""
	if msg.Envelope != nil {
		subject = tracing.TruncateString(msg.Envelope.Subject, tracing.MaxMailSubjectLength)
	}
	p.log.Info().
		Str("sender", senderEmail).
		Str("subject", subject).
		Int("attachments", len(attachments)).
		Msg("开始暂存简历附件")

	for _, attachment := range attachments {
		if err := p.stageAttachment(ctx, senderEmail, attachment); err != nil {
			// 暂存失败保留未读，下一轮重试整封邮件
			return fmt.Errorf("暂存附件 %s 失败: %w", attachment.Filename, err)
		}
	}

	return p.markSeen(client, uidSet)
}

// admitMessage 决定一封邮件是否进入暂存流程
// 先确认有简历附件，再消耗发件人去重名额：
// 纯文本邮件不占用去重窗口，发件人补发附件时不会被误拦。
func (p *Poller) admitMessage(ctx context.Context, senderEmail string, attachments []Attachment) bool {
	if len(attachments) == 0 {
		p.log.Debug().Str("sender", senderEmail).Msg("邮件不含简历附件，置已读跳过")
		return false
	}
	if p.dedup == nil {
		return true
	}
	exists, err := p.dedup.CheckAndAddSenderEmail(ctx, senderEmail)
	if err != nil {
		p.log.Warn().Err(err).Str("sender", senderEmail).Msg("发件人去重检查失败，按未重复处理")
		return true
	}
	if exists {
		p.log.Info().Str("sender", senderEmail).Msg("发件人在去重窗口内已投递，跳过")
		return false
	}
	return true
}

// stageAttachment 把单个附件写入暂存桶、登记提交记录并发布暂存消息
func (p *Poller) stageAttachment(ctx context.Context, senderEmail string, attachment Attachment) error {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	submissionUUID := newUUID.String()
	fileExt := strings.ToLower(filepath.Ext(attachment.Filename))

	stagedKey, fileMD5, err := p.storage.MinIO.StageAttachment(ctx, submissionUUID, fileExt,
		bytes.NewReader(attachment.Data), int64(len(attachment.Data)))
	if err != nil {
		return fmt.Errorf("写入暂存桶失败: %w", err)
	}

	now := time.Now()
	submission := models.ResumeSubmission{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		SourceChannel:       "mailbox",
		SenderEmail:         senderEmail,
		SourceFilename:      attachment.Filename,
		StagedFilePathOSS:   stagedKey,
		ProcessingStatus:    constants.StatusPendingExtraction,
		ExtractorVersion:    p.cfg.ActiveExtractorVersion,
	}
	if err := p.storage.MySQL.CreateResumeSubmission(ctx, &submission); err != nil {
		return fmt.Errorf("登记提交记录失败: %w", err)
	}

	stagedMessage := storage.AttachmentStagedMessage{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		SourceChannel:       "mailbox",
		SenderEmail:         senderEmail,
		SourceFilename:      attachment.Filename,
		StagedFilePathOSS:   stagedKey,
		RawFileMD5:          fileMD5,
	}
	if p.storage.RabbitMQ != nil {
		if err := p.storage.RabbitMQ.PublishJSON(ctx,
			p.cfg.RabbitMQ.ResumeEventsExchange,
			p.cfg.RabbitMQ.StagedRoutingKey,
			stagedMessage, true); err != nil {
			return fmt.Errorf("发布暂存消息失败: %w", err)
		}
	}

	p.log.Info().
		Str("submission_uuid", submissionUUID).
		Str("sender", senderEmail).
		Str("filename", attachment.Filename).
		Str("staged_key", stagedKey).
		Msg("附件已暂存并入队")
	return nil
}

func (p *Poller) markSeen(client *imapclient.Client, uidSet imap.UIDSet) error {
	cmd := client.Store(uidSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Flags:  []imap.Flag{imap.FlagSeen},
		Silent: true,
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("标记邮件已读失败: %w", err)
	}
	return nil
}

// extractSender 从信封中取发件人地址，优先 From，回落到 Sender
func extractSender(envelope *imap.Envelope) string {
	if envelope == nil {
		return ""
	}
	if len(envelope.From) > 0 {
		return strings.ToLower(envelope.From[0].Addr())
	}
	if len(envelope.Sender) > 0 {
		return strings.ToLower(envelope.Sender[0].Addr())
	}
	return ""
}
