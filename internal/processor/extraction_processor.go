package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"resume-extract-go/internal/config"
	"resume-extract-go/internal/constants"
	"resume-extract-go/internal/extractor"
	"resume-extract-go/internal/parser"
	"resume-extract-go/internal/storage"
	"resume-extract-go/internal/storage/models"
	"resume-extract-go/internal/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("resume-extract-go/processor")

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	// 核心组件接口
	TextExtractor TextExtractor         // 附件文本提取接口
	FieldEngine   FieldExtractionEngine // 字段抽取引擎接口

	// 存储层依赖
	Storage *storage.Storage // 聚合的存储服务
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Debug            bool           // 是否开启调试模式
	Logger           *log.Logger    // 日志记录器
	TimeLocation     *time.Location // 时区设置
	ExtractorVersion string         // 抽取器版本标识，随提交记录落库
}

// ComponentConfig 组件配置
type ComponentConfig struct {
	Debug            bool        // 是否开启调试模式
	Logger           *log.Logger // 日志记录器
	ExtractorVersion string      // 抽取器版本标识
}

// ExtractionProcessor 抽取流水线组件聚合类
// 消费暂存附件消息，完成 下载→文本提取→去重→字段抽取→入库→归档 的完整链路。
type ExtractionProcessor struct {
	// 核心组件接口
	TextExtractor TextExtractor         // 附件文本提取接口
	FieldEngine   FieldExtractionEngine // 字段抽取引擎接口

	// 存储层依赖
	Storage *storage.Storage // 存储服务

	// 配置
	Config ComponentConfig // 组件配置
}

// NewExtractionProcessor 创建新的抽取处理器，使用明确分离的组件和设置
func NewExtractionProcessor(comp *Components, set *Settings, opts ...SettingOpt) *ExtractionProcessor {
	// 应用额外的设置选项
	for _, opt := range opts {
		opt(set)
	}

	// 确保必要的默认值
	if set.Logger == nil {
		set.Logger = log.New(os.Stdout, "[Processor] ", log.LstdFlags)
	}
	if set.TimeLocation == nil {
		set.TimeLocation = time.Local
	}
	if set.ExtractorVersion == "" {
		set.ExtractorVersion = constants.DefaultExtractorVer
	}

	processor := &ExtractionProcessor{
		TextExtractor: comp.TextExtractor,
		FieldEngine:   comp.FieldEngine,
		Storage:       comp.Storage,

		Config: ComponentConfig{
			Debug:            set.Debug,
			Logger:           set.Logger,
			ExtractorVersion: set.ExtractorVersion,
		},
	}

	// 验证关键组件
	if processor.Storage == nil {
		processor.Config.Logger.Println("警告: ExtractionProcessor 的 Storage 依赖未初始化。某些功能可能受限。")
	}

	return processor
}

// CreateProcessorFromConfig 根据应用配置构造完整的抽取处理器
func CreateProcessorFromConfig(ctx context.Context, cfg *config.Config, storageManager *storage.Storage) (*ExtractionProcessor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	textExtractor, err := parser.NewTextExtractor(ctx, &cfg.Tika)
	if err != nil {
		return nil, fmt.Errorf("创建文本提取器失败: %w", err)
	}

	var engineOpts []extractor.Option
	if cfg.Extractor.DebugLog {
		engineOpts = append(engineOpts, extractor.WithLogger(log.New(os.Stderr, "[字段抽取] ", log.LstdFlags)))
	}
	engine := extractor.NewEngine(engineOpts...)

	comp := &Components{
		TextExtractor: textExtractor,
		FieldEngine:   engine,
		Storage:       storageManager,
	}
	set := &Settings{
		Debug:            cfg.Extractor.DebugLog,
		ExtractorVersion: cfg.ActiveExtractorVersion,
	}

	return NewExtractionProcessor(comp, set), nil
}

// ProcessStagedAttachment 处理一条暂存附件消息
// 整个入库过程在单个数据库事务内完成；归档搬运在事务提交后执行，
// 搬运本身幂等，消息重复投递不会产生副作用。
func (ep *ExtractionProcessor) ProcessStagedAttachment(ctx context.Context, message storage.AttachmentStagedMessage, cfg *config.Config) error {
	if ep.Storage == nil {
		return fmt.Errorf("ExtractionProcessor: Storage is not initialized")
	}
	if ep.TextExtractor == nil {
		return fmt.Errorf("ExtractionProcessor: TextExtractor is not initialized")
	}
	if ep.FieldEngine == nil {
		return fmt.Errorf("ExtractionProcessor: FieldEngine is not initialized")
	}

	ctx, span := tracer.Start(ctx, "ExtractionProcessor.ProcessStagedAttachment")
	defer span.End()
	span.SetAttributes(attribute.String("submission.uuid", message.SubmissionUUID))

	fileExt := filepath.Ext(message.SourceFilename)
	var candidateID string
	var duplicate bool

	err := ep.Storage.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 更新初始状态为 EXTRACTION_IN_PROGRESS
		if err := tx.Model(&models.ResumeSubmission{}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			Update("processing_status", constants.StatusExtractionInProgress).Error; err != nil {
			ep.logDebug("更新提交 %s 状态为 %s 失败: %v", message.SubmissionUUID, constants.StatusExtractionInProgress, err)
			return NewUpdateError(message.SubmissionUUID, fmt.Sprintf("更新状态为%s失败", constants.StatusExtractionInProgress))
		}

		// 2. 下载附件、提取文本并去重
		text, textMD5Hex, err := ep.extractAndDeduplicate(ctx, tx, message)
		if err != nil {
			if errors.Is(err, ErrDuplicateContent) {
				duplicate = true
				return nil // 内容重复是正常流程，提交状态更新并返回nil，事务将提交
			}
			return err
		}

		// 3. 上传抽取文本到MinIO
		textObjectKey, err := ep.Storage.MinIO.UploadExtractedText(ctx, message.SubmissionUUID, text)
		if err != nil {
			ep.logDebug("上传抽取文本到MinIO失败 (提交 %s): %v", message.SubmissionUUID, err)
			return NewStoreError(message.SubmissionUUID, err.Error())
		}
		ep.logDebug("提交 %s 的抽取文本已上传到MinIO: %s", message.SubmissionUUID, textObjectKey)

		// 4. 运行字段抽取引擎
		record := ep.FieldEngine.Extract(text)
		fieldsJSON, err := json.Marshal(record)
		if err != nil {
			return NewUpdateError(message.SubmissionUUID, "序列化抽取字段失败")
		}

		// 5. 关联或创建候选人
		candidate, err := ep.Storage.MySQL.FindOrCreateCandidate(ctx, tx, record, message.SenderEmail)
		if err != nil {
			return NewDatabaseError(message.SubmissionUUID, err.Error())
		}
		candidateID = candidate.CandidateID
		archiveKey := storage.ArchiveObjectKey(candidateID, fileExt)

		// 6. [Outbox] 将抽取完成事件写入发件箱，由中继异步发布
		completedMessage := storage.ExtractionCompletedMessage{
			SubmissionUUID:     message.SubmissionUUID,
			CandidateID:        candidateID,
			ProcessingStatus:   constants.StatusExtractionCompleted,
			ExtractedTextPath:  textObjectKey,
			ExtractedTextMD5:   textMD5Hex,
			ArchiveFilePathOSS: archiveKey,
			ExtractorVersion:   ep.Config.ExtractorVersion,
			ProcessingTime:     time.Now().Unix(),
		}
		payloadBytes, err := json.Marshal(completedMessage)
		if err != nil {
			ep.logDebug("ProcessStagedAttachment: 序列化 outbox payload 失败 for %s: %v", message.SubmissionUUID, err)
			return NewUpdateError(message.SubmissionUUID, "序列化 outbox payload 失败")
		}

		outboxEntry := models.OutboxMessage{
			AggregateID:      message.SubmissionUUID,
			EventType:        "resume.extracted",
			Payload:          string(payloadBytes),
			TargetExchange:   cfg.RabbitMQ.ProcessingEventsExchange,
			TargetRoutingKey: cfg.RabbitMQ.ExtractedRoutingKey,
		}
		if err := tx.Create(&outboxEntry).Error; err != nil {
			ep.logDebug("ProcessStagedAttachment: 插入 outbox 记录失败 for %s: %v", message.SubmissionUUID, err)
			return NewUpdateError(message.SubmissionUUID, "插入 outbox 记录失败")
		}

		// 7. 更新提交记录
		if err := tx.Model(&models.ResumeSubmission{}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			Updates(map[string]interface{}{
				"candidate_id":          candidateID,
				"extracted_text_path":   textObjectKey,
				"extracted_text_md5":    textMD5Hex,
				"extracted_fields_json": models.StringToJSON(string(fieldsJSON)),
				"archive_file_path_oss": archiveKey,
				"processing_status":     constants.StatusExtractionCompleted,
				"extractor_version":     ep.Config.ExtractorVersion,
			}).Error; err != nil {
			ep.logDebug("更新提交 %s 数据库记录失败: %v", message.SubmissionUUID, err)
			return NewUpdateError(message.SubmissionUUID, "更新数据库失败")
		}

		return nil
	})

	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		if updateErr := ep.Storage.MySQL.MarkSubmissionFailed(ctx, message.SubmissionUUID, err.Error()); updateErr != nil {
			ep.logDebug("在事务失败后更新状态为失败时出错 (提交 %s): %v", message.SubmissionUUID, updateErr)
		}
		// 回滚发件人去重标记，同一发件人修复后可以重新投递
		if message.SenderEmail != "" && ep.Storage.Redis != nil {
			if remErr := ep.Storage.Redis.RemoveSenderEmail(ctx, message.SenderEmail); remErr != nil {
				ep.logDebug("回滚发件人去重标记失败 (提交 %s): %v", message.SubmissionUUID, remErr)
			}
		}
		return err
	}

	// 事务提交后的对象搬运阶段
	if duplicate {
		// 重复内容：清掉暂存对象即可，不归档
		if delErr := ep.Storage.MinIO.DeleteStaged(ctx, message.StagedFilePathOSS); delErr != nil {
			ep.logWarn("删除重复提交的暂存对象失败 (提交 %s): %v", message.SubmissionUUID, delErr)
		}
		span.SetAttributes(attribute.Bool("submission.duplicate", true))
		ep.logInfo("提交 %s 内容重复，已跳过", message.SubmissionUUID)
		return nil
	}

	// 归档搬运失败不回滚事务：暂存桶生命周期规则是最终兜底，
	// 消息重投时 PromoteAttachment 幂等可重入。
	if _, promoteErr := ep.Storage.MinIO.PromoteAttachment(ctx, message.StagedFilePathOSS, candidateID, fileExt); promoteErr != nil {
		ep.logWarn("归档附件失败 (提交 %s): %v", message.SubmissionUUID, promoteErr)
		span.RecordError(promoteErr)
	}

	span.SetStatus(codes.Ok, "")
	ep.logDebug("暂存附件 (提交 %s) 的抽取处理已成功完成。", message.SubmissionUUID)
	return nil
}

// extractAndDeduplicate 下载暂存附件、提取纯文本并做内容级去重
// 文本内容重复时返回 ErrDuplicateContent。
func (ep *ExtractionProcessor) extractAndDeduplicate(ctx context.Context, tx *gorm.DB, message storage.AttachmentStagedMessage) (string, string, error) {
	ctx, span := tracer.Start(ctx, "ExtractionProcessor.extractAndDeduplicate")
	defer span.End()

	// 步骤 1: 从MinIO下载暂存附件
	attachmentBytes, err := ep.Storage.MinIO.DownloadStaged(ctx, message.StagedFilePathOSS)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeMinIO)
		ep.logDebug("从MinIO下载附件 %s 失败: %v", message.SubmissionUUID, err)
		return "", "", NewDownloadError(message.SubmissionUUID, err.Error())
	}
	span.AddEvent("attachment downloaded")
	ep.logDebug("附件 %s 从MinIO下载成功，大小: %d bytes", message.SubmissionUUID, len(attachmentBytes))

	// 步骤 2: 使用注入的 TextExtractor 提取文本
	text, _, err := ep.TextExtractor.ExtractTextFromBytes(ctx, attachmentBytes, message.SourceFilename)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		ep.logDebug("ProcessStagedAttachment: 提取附件文本失败 for %s: %v", message.SubmissionUUID, err)
		return "", "", NewParseError(message.SubmissionUUID, err.Error())
	}
	span.AddEvent("text extracted")
	ep.logDebug("ProcessStagedAttachment: 成功提取文本 for %s, 长度: %d", message.SubmissionUUID, len(text))

	// 步骤 3: 计算抽取文本的MD5并去重
	sum := md5.Sum([]byte(text))
	textMD5Hex := hex.EncodeToString(sum[:])
	ep.logDebug("ProcessStagedAttachment: 计算得到文本MD5 %s for %s", textMD5Hex, message.SubmissionUUID)

	exists, existingUUID, err := ep.Storage.Redis.CheckAndSetTextMD5(ctx, textMD5Hex, message.SubmissionUUID)
	if err != nil {
		ep.logDebug("ProcessStagedAttachment: 使用Redis原子操作检查文本MD5失败 for %s: %v, 将继续处理，但文本去重可能失效", message.SubmissionUUID, err)
	} else if exists && existingUUID != message.SubmissionUUID {
		ep.logDebug("ProcessStagedAttachment: 检测到重复的文本MD5 %s for %s (已关联 %s)，标记为重复内容", textMD5Hex, message.SubmissionUUID, existingUUID)
		updates := map[string]interface{}{
			"processing_status":  constants.StatusDuplicateSkipped,
			"extracted_text_md5": textMD5Hex,
		}
		if existingUUID != "" {
			updates["error_message"] = fmt.Sprintf("与提交 %s 内容重复", existingUUID)
		}
		if err := tx.Model(&models.ResumeSubmission{}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			Updates(updates).Error; err != nil {
			return "", "", NewUpdateError(message.SubmissionUUID, "更新重复内容状态失败")
		}
		return "", "", ErrDuplicateContent
	}
	ep.logDebug("ProcessStagedAttachment: 文本MD5 %s 首次出现, 继续处理 for %s", textMD5Hex, message.SubmissionUUID)

	return text, textMD5Hex, nil
}
