package outbox

import (
	"context"
	"log"
	"time"

	"resume-extract-go/internal/storage"
	"resume-extract-go/internal/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPollingInterval = 5 * time.Second // 默认轮询数据库中 outbox 表的间隔
	defaultBatchSize       = 10              // 每次轮询处理的消息批量大小
	maxRetryCount          = 5               // 消息发布失败的最大重试次数
)

// MessageRelay 轮询 outbox 表并将消息发布到消息代理。
// 抽取流水线的事件先在业务事务内落到 outbox 表，由中继保证至少一次投递。
type MessageRelay struct {
	db              *storage.MySQL    // MySQL存储层，提供发件箱批量读取和状态更新
	publisher       *storage.RabbitMQ // 使用现有的RabbitMQ客户端作为消息发布器
	logger          *log.Logger       // 用于记录中继服务自身日志的记录器
	pollingInterval time.Duration     // 轮询间隔
	batchSize       int               // 批量大小
	done            chan struct{}     // 用于优雅地停止服务的通道
	tracer          trace.Tracer      // OpenTelemetry追踪器
}

// RelayOption 中继服务配置选项
type RelayOption func(*MessageRelay)

// WithPollingInterval 设置轮询间隔
func WithPollingInterval(interval time.Duration) RelayOption {
	return func(r *MessageRelay) {
		if interval > 0 {
			r.pollingInterval = interval
		}
	}
}

// WithBatchSize 设置批量大小
func WithBatchSize(size int) RelayOption {
	return func(r *MessageRelay) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

// NewMessageRelay 创建一个新的 MessageRelay 实例。
func NewMessageRelay(db *storage.MySQL, publisher *storage.RabbitMQ, logger *log.Logger, opts ...RelayOption) *MessageRelay {
	relay := &MessageRelay{
		db:              db,
		publisher:       publisher,
		logger:          logger,
		pollingInterval: defaultPollingInterval,
		batchSize:       defaultBatchSize,
		done:            make(chan struct{}),
		tracer:          otel.Tracer("outbox-relay"),
	}
	for _, opt := range opts {
		opt(relay)
	}
	return relay
}

// Start 开始消息中继的轮询过程。
func (r *MessageRelay) Start() {
	r.logger.Println("MessageRelay starting...")
	ticker := time.NewTicker(r.pollingInterval)

	go func() {
		for {
			select {
			case <-r.done:
				ticker.Stop()
				r.logger.Println("MessageRelay stopped.")
				return
			case <-ticker.C:
				if err := r.processPendingMessages(context.Background()); err != nil {
					r.logger.Printf("Error processing pending messages: %v", err)
				}
			}
		}
	}()
}

// Stop 优雅地停止消息中继服务。
func (r *MessageRelay) Stop() {
	r.logger.Println("MessageRelay stopping...")
	close(r.done)
}

// processPendingMessages 获取并处理一批来自 outbox 表的待处理消息。
func (r *MessageRelay) processPendingMessages(ctx context.Context) error {
	// 启动一个数据库事务，以确保获取和更新消息的原子性。
	// 注意：这里的查询没有包含在追踪Span内，这是故意的，以避免为空轮询创建Span。
	tx := r.db.DB().WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback() // 延迟执行回滚。如果事务被提交，回滚是无操作的。

	// 获取一批待处理的消息，FOR UPDATE SKIP LOCKED 让多实例互不阻塞。
	messages, err := r.db.FetchPendingOutboxMessages(tx, r.batchSize)
	if err != nil {
		r.logger.Printf("Failed to fetch pending outbox messages: %v", err)
		return err
	}

	// 只有在找到要处理的消息时，才开始追踪
	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(
			attribute.Int("messaging.batch.message_count", len(messages)),
		),
	)
	defer span.End()

	r.logger.Printf("Fetched %d pending messages to process.", len(messages))

	for i := range messages {
		msg := &messages[i]
		// 调用发布器将消息发送到消息队列
		publishErr := r.publisher.PublishMessage(
			ctx,
			msg.TargetExchange,
			msg.TargetRoutingKey,
			[]byte(msg.Payload),
			true, // 设置消息为持久化
		)

		var updateErr error
		if publishErr != nil {
			r.logger.Printf("Failed to publish message ID %d (AggregateID: %s): %v. Retries: %d", msg.ID, msg.AggregateID, publishErr, msg.RetryCount+1)
			tracing.RecordRabbitMQNack(span, msg.AggregateID, publishErr.Error())
			updateErr = r.db.MarkOutboxMessageFailed(tx, msg, maxRetryCount, publishErr.Error())
		} else {
			updateErr = r.db.MarkOutboxMessageSent(tx, msg.ID)
		}

		if updateErr != nil {
			r.logger.Printf("Failed to update outbox message ID %d: %v", msg.ID, updateErr)
			// 更新失败则整个事务回滚，这批消息将在下一次轮询中被重新拾取。
			return updateErr
		}
	}

	return tx.Commit().Error
}
