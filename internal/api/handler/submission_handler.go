package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"resume-extract-go/internal/config"
	"resume-extract-go/internal/constants"
	"resume-extract-go/internal/logger"
	"resume-extract-go/internal/storage"
	"resume-extract-go/internal/storage/models"
	"resume-extract-go/internal/types"

	"github.com/gofrs/uuid/v5"
	"gorm.io/gorm"
)

// SubmissionHandler 简历提交处理器，承接API侧的手工上传和查询
type SubmissionHandler struct {
	cfg     *config.Config
	storage *storage.Storage
}

// NewSubmissionHandler 创建一个新的提交处理器
func NewSubmissionHandler(cfg *config.Config, storage *storage.Storage) *SubmissionHandler {
	return &SubmissionHandler{
		cfg:     cfg,
		storage: storage,
	}
}

// UploadResponse 简历上传响应
type UploadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
}

// SubmissionDetail 单条提交的查询响应
type SubmissionDetail struct {
	SubmissionUUID   string             `json:"submission_uuid"`
	CandidateID      string             `json:"candidate_id,omitempty"`
	SourceChannel    string             `json:"source_channel"`
	SenderEmail      string             `json:"sender_email,omitempty"`
	SourceFilename   string             `json:"source_filename,omitempty"`
	ProcessingStatus string             `json:"processing_status"`
	ExtractorVersion string             `json:"extractor_version,omitempty"`
	ErrorMessage     string             `json:"error_message,omitempty"`
	SubmittedAt      time.Time          `json:"submitted_at"`
	Fields           *types.FieldRecord `json:"fields,omitempty"`
}

// HandleResumeUpload 处理手工上传的简历文件
// 与邮箱通道共用同一条暂存流水线：暂存对象、登记提交、发布暂存消息。
func (h *SubmissionHandler) HandleResumeUpload(ctx context.Context, reader io.Reader, fileSize int64,
	filename string, sourceChannel string) (*UploadResponse, error) {

	// reader只能读一次，先整体读入再交给MinIO
	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}
	if len(fileBytes) == 0 {
		return nil, fmt.Errorf("上传文件为空")
	}

	uuidV7, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	submissionUUID := uuidV7.String()

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".pdf" // 默认为PDF
	}
	if sourceChannel == "" {
		sourceChannel = "api_upload"
	}

	stagedKey, fileMD5, err := h.storage.MinIO.StageAttachment(ctx, submissionUUID, ext,
		bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return nil, fmt.Errorf("暂存简历文件失败: %w", err)
	}

	now := time.Now()
	submission := models.ResumeSubmission{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		SourceChannel:       sourceChannel,
		SourceFilename:      filename,
		StagedFilePathOSS:   stagedKey,
		ProcessingStatus:    constants.StatusPendingExtraction,
		ExtractorVersion:    h.cfg.ActiveExtractorVersion,
	}
	if err := h.storage.MySQL.CreateResumeSubmission(ctx, &submission); err != nil {
		return nil, fmt.Errorf("登记提交记录失败: %w", err)
	}

	message := storage.AttachmentStagedMessage{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		SourceChannel:       sourceChannel,
		SourceFilename:      filename,
		StagedFilePathOSS:   stagedKey,
		RawFileMD5:          fileMD5,
	}
	if err := h.storage.RabbitMQ.PublishJSON(
		ctx,
		h.cfg.RabbitMQ.ResumeEventsExchange,
		h.cfg.RabbitMQ.StagedRoutingKey,
		message,
		true, // 持久化
	); err != nil {
		return nil, fmt.Errorf("发布暂存消息到RabbitMQ失败: %w", err)
	}

	logger.Info().
		Str("submission_uuid", submissionUUID).
		Str("filename", filename).
		Str("source_channel", sourceChannel).
		Msg("简历已通过API上传并入队")

	return &UploadResponse{
		SubmissionUUID: submissionUUID,
		Status:         constants.StatusPendingExtraction,
	}, nil
}

// GetSubmission 查询单条提交的处理状态和抽取结果
func (h *SubmissionHandler) GetSubmission(ctx context.Context, submissionUUID string) (*SubmissionDetail, error) {
	submission, err := h.storage.MySQL.GetResumeSubmission(ctx, submissionUUID)
	if err != nil {
		return nil, err
	}

	detail := &SubmissionDetail{
		SubmissionUUID:   submission.SubmissionUUID,
		SourceChannel:    submission.SourceChannel,
		SenderEmail:      submission.SenderEmail,
		SourceFilename:   submission.SourceFilename,
		ProcessingStatus: submission.ProcessingStatus,
		ExtractorVersion: submission.ExtractorVersion,
		ErrorMessage:     submission.ErrorMessage,
		SubmittedAt:      submission.SubmissionTimestamp,
	}
	if submission.CandidateID != nil {
		detail.CandidateID = *submission.CandidateID
	}
	if len(submission.ExtractedFieldsJSON) > 0 {
		var record types.FieldRecord
		if err := json.Unmarshal(submission.ExtractedFieldsJSON, &record); err != nil {
			// 字段JSON损坏不阻断状态查询
			logger.Warn().
				Err(err).
				Str("submission_uuid", submissionUUID).
				Msg("解析已抽取字段JSON失败")
		} else {
			detail.Fields = &record
		}
	}
	return detail, nil
}

// GetCandidate 查询候选人主数据
func (h *SubmissionHandler) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	return h.storage.MySQL.GetCandidate(ctx, candidateID)
}

// ListSubmissions 按状态分页列出最近的提交，返回轻量摘要
func (h *SubmissionHandler) ListSubmissions(ctx context.Context, status string, limit, offset int) ([]types.SubmissionBrief, error) {
	submissions, err := h.storage.MySQL.ListRecentSubmissions(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}

	briefs := make([]types.SubmissionBrief, 0, len(submissions))
	for _, s := range submissions {
		brief := types.SubmissionBrief{
			SubmissionUUID: s.SubmissionUUID,
			Status:         s.ProcessingStatus,
			SenderEmail:    s.SenderEmail,
			SourceFilename: s.SourceFilename,
		}
		if len(s.ExtractedFieldsJSON) > 0 {
			var fields map[string]string
			if err := json.Unmarshal(s.ExtractedFieldsJSON, &fields); err == nil {
				brief.Fields = fields
			}
		}
		briefs = append(briefs, brief)
	}
	return briefs, nil
}

// IsNotFound 判断查询错误是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
