package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"resume-extract-go/internal/config"
)

// ObjectStorage 对象存储接口
// 附件走两阶段流转：先进暂存桶，字段抽取入库拿到持久标识后，
// 再服务端拷贝进归档桶并删除暂存对象。
type ObjectStorage interface {
	// StageAttachment 把附件字节流写入暂存桶，同时计算MD5
	// 返回: 暂存对象键, md5Hex, error
	StageAttachment(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, string, error)

	// PromoteAttachment 把暂存对象搬入归档桶（CopyObject + RemoveObject）
	// 幂等：归档对象已存在时直接成功，暂存对象缺失不报错。
	PromoteAttachment(ctx context.Context, stagedKey, candidateID, fileExt string) (string, error)

	// DownloadStaged 下载暂存桶中的对象
	DownloadStaged(ctx context.Context, objectKey string) ([]byte, error)

	// UploadExtractedText 把抽取出的纯文本写入归档桶
	UploadExtractedText(ctx context.Context, submissionUUID string, text string) (string, error)

	// GetExtractedText 读取归档桶中的抽取文本
	GetExtractedText(ctx context.Context, objectKey string) (string, error)

	// GetPresignedURL 获取归档对象的预签名URL
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)

	// DeleteStaged 删除暂存对象
	DeleteStaged(ctx context.Context, objectKey string) error
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client        *minio.Client
	cfg           *config.MinIOConfig
	stagingBucket string
	archiveBucket string
	logger        *log.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing MinIO client with endpoint: %s, stagingBucket: %s, archiveBucket: %s", cfg.Endpoint, cfg.StagingBucket, cfg.ArchiveBucket)

	// 创建MinIO客户端
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Printf("[MinIO] Initialization failed: %v", err)
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	// 设置存储桶名称
	stagingBucket := cfg.StagingBucket
	if stagingBucket == "" {
		stagingBucket = "resume-staging" // 默认值
	}
	archiveBucket := cfg.ArchiveBucket
	if archiveBucket == "" {
		archiveBucket = "resume-archive" // 默认值
	}

	m := &MinIO{
		client:        client,
		cfg:           cfg,
		stagingBucket: stagingBucket,
		archiveBucket: archiveBucket,
		logger:        logger,
	}

	// 确保存储桶存在
	err = m.ensureBucketExists(stagingBucket, cfg.Location)
	if err != nil {
		logger.Printf("[MinIO] Failed to ensure staging bucket %s exists: %v", stagingBucket, err)
		return nil, fmt.Errorf("确保暂存存储桶 %s 存在失败: %w", stagingBucket, err)
	}

	err = m.ensureBucketExists(archiveBucket, cfg.Location)
	if err != nil {
		logger.Printf("[MinIO] Failed to ensure archive bucket %s exists: %v", archiveBucket, err)
		return nil, fmt.Errorf("确保归档存储桶 %s 存在失败: %w", archiveBucket, err)
	}

	// 设置生命周期规则
	if cfg.StagedFileExpireDays > 0 || cfg.ArchiveFileExpireDays > 0 {
		err = m.setupLifecycleRules(context.Background())
		if err != nil {
			logger.Printf("[MinIO] Warning: Failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	m.logger.Printf("[MinIO] Ensuring bucket exists: %s (Location: %s)", bucketName, location)
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		m.logger.Printf("[MinIO] Error checking if bucket %s exists: %v", bucketName, err)
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		m.logger.Printf("[MinIO] Bucket %s does not exist, attempting to create...", bucketName)
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			m.logger.Printf("[MinIO] Error creating bucket %s: %v", bucketName, err)
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] Bucket %s created successfully.", bucketName)
	} else {
		m.logger.Printf("[MinIO] Bucket %s already exists.", bucketName)
	}
	return nil
}

// setupLifecycleRules 设置对象生命周期规则
// 暂存桶的过期规则兜底清理被搬运失败遗留的对象。
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	m.logger.Printf("[MinIO] Setting up lifecycle rules...")
	if m.cfg.StagedFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.stagingBucket, "expire-staged", m.cfg.StagedFileExpireDays); err != nil {
			return fmt.Errorf("为暂存存储桶 %s 设置生命周期失败: %w", m.stagingBucket, err)
		}
	}
	if m.cfg.ArchiveFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.archiveBucket, "expire-archive", m.cfg.ArchiveFileExpireDays); err != nil {
			return fmt.Errorf("为归档存储桶 %s 设置生命周期失败: %w", m.archiveBucket, err)
		}
	}
	m.logger.Printf("[MinIO] Lifecycle rules setup completed.")
	return nil
}

// setupBucketLifecycle 为指定存储桶设置生命周期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	m.logger.Printf("[MinIO] Setting lifecycle rule for bucket %s: ID=%s, ExpiryDays=%d", bucketName, ruleID, expiryDays)
	config := lifecycle.NewConfiguration()
	config.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}

	err := m.client.SetBucketLifecycle(ctx, bucketName, config)
	if err != nil {
		m.logger.Printf("[MinIO] Error setting lifecycle for bucket %s: %v", bucketName, err)
		return err
	}
	m.logger.Printf("[MinIO] Successfully set lifecycle for bucket %s.", bucketName)
	return nil
}

// StageAttachment 把附件写入暂存桶并同时计算MD5
// 对象键形如 staged/{submissionUUID}/original{ext}
func (m *MinIO) StageAttachment(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, string, error) {
	objectName := StagedObjectKey(submissionUUID, fileExt)
	contentType := getContentType(fileExt)

	// 使用TeeReader边上传边计算MD5
	md5Hash := md5.New()
	teeReader := io.TeeReader(reader, md5Hash)

	if m.testLogging() {
		m.logger.Printf("[MinIO-StageAttachment] Staging: SubmissionUUID='%s', FileExt='%s', ObjectName='%s', Bucket='%s'",
			submissionUUID, fileExt, objectName, m.stagingBucket)
	}

	info, err := m.client.PutObject(ctx, m.stagingBucket, objectName, teeReader,
		fileSize, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("暂存附件到MinIO失败 (%s/%s): %w", m.stagingBucket, objectName, err)
	}

	md5Hex := hex.EncodeToString(md5Hash.Sum(nil))

	if m.testLogging() {
		m.logger.Printf("[MinIO-StageAttachment] Successfully staged %s, ETag: %s, Size: %d, MD5: %s",
			objectName, info.ETag, info.Size, md5Hex)
	}

	return objectName, md5Hex, nil
}

// PromoteAttachment 把暂存对象搬入归档桶，以候选人标识为键
// 归档键形如 candidate/{candidateID}/original{ext}
// 幂等语义保证重试安全：
//   - 归档对象已存在 -> 跳过拷贝
//   - 暂存对象已被上一次重试删除 -> 只要归档对象在，视为成功
func (m *MinIO) PromoteAttachment(ctx context.Context, stagedKey, candidateID, fileExt string) (string, error) {
	archiveKey := ArchiveObjectKey(candidateID, fileExt)
	m.logger.Printf("[MinIO] Promoting staged object %s -> %s/%s", stagedKey, m.archiveBucket, archiveKey)

	// 先查归档对象，重试时可能已经搬运完成
	_, statErr := m.client.StatObject(ctx, m.archiveBucket, archiveKey, minio.StatObjectOptions{})
	if statErr == nil {
		m.logger.Printf("[MinIO] Archive object %s already exists, skipping copy.", archiveKey)
	} else {
		if !isObjectNotFound(statErr) {
			return "", fmt.Errorf("检查归档对象 %s 状态失败: %w", archiveKey, statErr)
		}

		_, err := m.client.CopyObject(ctx,
			minio.CopyDestOptions{Bucket: m.archiveBucket, Object: archiveKey},
			minio.CopySrcOptions{Bucket: m.stagingBucket, Object: stagedKey},
		)
		if err != nil {
			// 源对象缺失 + 归档对象不存在才算真失败；这里归档确认不存在，直接报错
			return "", fmt.Errorf("拷贝暂存对象 %s 到归档桶失败: %w", stagedKey, err)
		}
	}

	// 清理暂存对象；对象不存在视为已清理
	err := m.client.RemoveObject(ctx, m.stagingBucket, stagedKey, minio.RemoveObjectOptions{})
	if err != nil && !isObjectNotFound(err) {
		// 归档已成功，暂存清理失败交给生命周期规则兜底，不让整个提升失败
		m.logger.Printf("[MinIO] Warning: failed to remove staged object %s: %v", stagedKey, err)
	}

	if m.testLogging() {
		m.logger.Printf("[MinIO-PromoteAttachment] Promoted %s -> %s", stagedKey, archiveKey)
	}
	return archiveKey, nil
}

// DownloadStaged 下载暂存桶中的对象
func (m *MinIO) DownloadStaged(ctx context.Context, objectKey string) ([]byte, error) {
	return m.downloadObject(ctx, m.stagingBucket, objectKey)
}

// downloadObject 从指定桶读取整个对象
func (m *MinIO) downloadObject(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	m.logger.Printf("[MinIO] Downloading object: Bucket=%s, ObjectKey=%s", bucketName, objectKey)

	obj, err := m.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectKey, err)
	}
	defer obj.Close()

	// 检查对象状态，确认对象存在且可访问
	stat, err := obj.Stat()
	if err != nil {
		m.logger.Printf("[MinIO] Failed to stat object %s/%s after GetObject: %v", bucketName, objectKey, err)
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, objectKey, err)
	}
	m.logger.Printf("[MinIO] Object %s/%s stats: Size=%d, ContentType=%s", bucketName, objectKey, stat.Size, stat.ContentType)

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, objectKey, err)
	}
	if m.testLogging() {
		m.logger.Printf("[MinIO-Download] Successfully downloaded %d bytes from %s/%s.", len(data), bucketName, objectKey)
	}
	return data, nil
}

// UploadExtractedText 把抽取出的纯文本写入归档桶
func (m *MinIO) UploadExtractedText(ctx context.Context, submissionUUID string, text string) (string, error) {
	objectName := fmt.Sprintf("submission/%s/extracted_text.txt", submissionUUID)

	if m.testLogging() {
		m.logger.Printf("[MinIO-UploadExtractedText] Uploading: SubmissionUUID='%s', ObjectName='%s', Bucket='%s', TextLength=%d", submissionUUID, objectName, m.archiveBucket, len(text))
	}

	_, err := m.client.PutObject(ctx, m.archiveBucket, objectName, bytes.NewReader([]byte(text)), int64(len(text)), minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return "", fmt.Errorf("上传抽取文本 %s 到存储桶 %s 失败: %w", objectName, m.archiveBucket, err)
	}
	return objectName, nil
}

// GetExtractedText 读取归档桶中的抽取文本
func (m *MinIO) GetExtractedText(ctx context.Context, objectKey string) (string, error) {
	data, err := m.downloadObject(ctx, m.archiveBucket, objectKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetPresignedURL 获取归档对象的预签名URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	m.logger.Printf("[MinIO] Generating presigned URL for: %s, Expiry: %s", objectName, expiry)

	presignedURL, err := m.client.PresignedGetObject(ctx, m.archiveBucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成MinIO预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}

// DeleteStaged 删除暂存对象
func (m *MinIO) DeleteStaged(ctx context.Context, objectKey string) error {
	m.logger.Printf("[MinIO] Deleting staged object: %s", objectKey)

	err := m.client.RemoveObject(ctx, m.stagingBucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("删除暂存对象 %s 失败: %w", objectKey, err)
	}
	return nil
}

// StatObject 暴露底层的StatObject方法，用于测试或特定场景
func (m *MinIO) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return m.client.StatObject(ctx, bucketName, objectName, opts)
}

// StagedObjectKey 暂存对象键的统一构造
func StagedObjectKey(submissionUUID, fileExt string) string {
	return fmt.Sprintf("staged/%s/original%s", submissionUUID, fileExt)
}

// ArchiveObjectKey 归档对象键的统一构造
func ArchiveObjectKey(candidateID, fileExt string) string {
	return fmt.Sprintf("candidate/%s/original%s", candidateID, fileExt)
}

// isObjectNotFound MinIO错误是否表示对象不存在
func isObjectNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
	}
	return false
}

// testLogging 是否输出详细的操作日志
func (m *MinIO) testLogging() bool {
	return m.cfg.EnableTestLogging && m.logger != nil && m.logger.Writer() != io.Discard
}

// 获取内容类型
func getContentType(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
