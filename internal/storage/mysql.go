package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"resume-extract-go/internal/config"
	"resume-extract-go/internal/constants"
	"resume-extract-go/internal/storage/models"
	"resume-extract-go/internal/tracing"
	"resume-extract-go/internal/types"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("resume-extract-go/storage/mysql")

// GormTracingPlugin 是一个GORM插件，用于向OpenTelemetry中添加数据库操作的追踪点
type GormTracingPlugin struct {
	tracer         trace.Tracer
	dbName         string
	dbSystem       string
	disableErrSkip bool
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	// 为各种操作类型注册回调
	cb := db.Callback()

	// 为所有CRUD操作注册Before和After回调
	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}

	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}

	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}

	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}

	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}

	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}

	return nil
}

// before 返回在GORM操作之前执行的回调函数
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		// 如果是错误跳过且DisableErrSkip为true，则跳过追踪
		if p.disableErrSkip && db.Statement.SkipHooks {
			return
		}

		// 从DB获取上下文
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		// 获取操作表名，如果为空则使用"unknown"
		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		// 创建一个新的span
		spanName := fmt.Sprintf("%s %s", operation, tableName)
		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}

		// 获取SQL语句（如果有），超长SQL截断后再上报
		sqlStatement := db.Statement.SQL.String()
		if sqlStatement != "" {
			opts = append(opts, trace.WithAttributes(
				attribute.String("db.statement", tracing.SafeSQL(sqlStatement)),
			))
		}

		newCtx, span := p.tracer.Start(ctx, spanName, opts...)

		// 将span保存在DB上下文中，以便在after回调中使用
		db.Statement.Context = context.WithValue(newCtx, "otel-span", span)
	}
}

// after 返回在GORM操作之后执行的回调函数
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		// 从DB上下文中获取span
		span, ok := db.Statement.Context.Value("otel-span").(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		// 添加额外的属性
		if db.Statement.RowsAffected > 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		} else {
			span.SetAttributes(attribute.Int64("db.rows_affected", 0))
		}

		// 记录错误（如果有），但正确处理ErrRecordNotFound
		if db.Error != nil {
			if db.Error == gorm.ErrRecordNotFound {
				// ErrRecordNotFound 是业务逻辑正常情况的一部分，不应作为错误处理
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				// 真正的错误情况
				span.SetAttributes(attribute.String("error.type", "database_error"))
				span.SetAttributes(attribute.String("error.message", db.Error.Error()))
				span.RecordError(db.Error)
				span.SetStatus(codes.Error, db.Error.Error())
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// NewGormTracingPlugin 创建一个新的GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer:         mysqlTracer,
		dbName:         dbName,
		dbSystem:       "mysql",
		disableErrSkip: true, // 默认禁用错误跳过，减少误报错误
	}
}

// WithDisableErrSkip 设置是否禁用错误跳过
func (p *GormTracingPlugin) WithDisableErrSkip(disable bool) *GormTracingPlugin {
	p.disableErrSkip = disable
	return p
}

// Database 关系数据库接口
type Database interface {
	// DB 返回GORM数据库连接实例
	DB() *gorm.DB

	// Close 关闭数据库连接
	Close() error

	// GetByID 通过ID获取记录
	GetByID(id interface{}, dest interface{}) error

	// Find 通过条件查询记录
	Find(dest interface{}, query interface{}, args ...interface{}) error

	// Save 保存/更新记录
	Save(value interface{}) error

	// Delete 删除记录
	Delete(value interface{}, query interface{}, args ...interface{}) error
}

// 确保MySQL实现了Database接口
var _ Database = (*MySQL)(nil)

// MySQL 提供关系数据库功能
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	// 构建DSN，添加超时设置
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	// 配置GORM日志级别
	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	case 4:
		logLevel = logger.Info
	default:
		logLevel = logger.Info // 默认Info级别
	}

	// GORM配置增强
	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,                             // 禁用自动外键创建
		Logger:                                   logger.Default.LogMode(logLevel), // 设置日志级别
		PrepareStmt:                              true,                             // 开启预编译语句缓存
		NowFunc: func() time.Time {
			return time.Now().Local() // 使用本地时间作为默认时间
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)                                           // 最大空闲连接数
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)                                           // 最大打开连接数
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute) // 连接最大生命周期
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute) // 空闲连接最大生命周期

	m := &MySQL{
		db:  db,
		cfg: cfg,
	}

	// 注册OpenTelemetry追踪插件
	tracingPlugin := NewGormTracingPlugin(cfg.Database).WithDisableErrSkip(true)
	if err := db.Use(tracingPlugin); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	// 使用 GORM 的 AutoMigrate 功能自动迁移表结构
	if err := m.autoMigrateSchema(); err != nil {
		sqlDB, _ := db.DB() // 尝试获取底层 *sql.DB 以关闭
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 使用GORM自动迁移数据库表结构
func (m *MySQL) autoMigrateSchema() error {
	// 保存当前的日志级别
	currentLogger := m.db.Logger

	// 创建一个静默的logger以关闭SQL日志打印
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent, // 设置为Silent级别，关闭所有SQL日志
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// 创建一个使用静默日志记录器的DB会话
	silentDB := m.db.Session(&gorm.Session{Logger: silentLogger})

	// 列出所有需要迁移的模型
	err := silentDB.AutoMigrate(
		&models.Candidate{},
		&models.ResumeSubmission{},
		&models.OutboxMessage{},
	)

	// 恢复原来的日志记录器
	m.db = m.db.Session(&gorm.Session{Logger: currentLogger})

	if err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	log.Println("GORM数据库结构迁移成功")
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// GetByID 泛型查询方法 - 通过ID获取记录
func (m *MySQL) GetByID(id interface{}, dest interface{}) error {
	return m.db.First(dest, "id = ?", id).Error
}

// Find 泛型查询方法 - 通过条件查询记录
func (m *MySQL) Find(dest interface{}, query interface{}, args ...interface{}) error {
	return m.db.Where(query, args...).Find(dest).Error
}

// Save 泛型创建/更新方法
func (m *MySQL) Save(value interface{}) error {
	return m.db.Save(value).Error
}

// Delete 泛型删除方法
func (m *MySQL) Delete(value interface{}, query interface{}, args ...interface{}) error {
	return m.db.Where(query, args...).Delete(value).Error
}

// BatchInsertResumeSubmissions 批量插入简历提交记录
// 主键冲突时做无实际意义的自更新，重复投递同一批消息不会报错。
func (m *MySQL) BatchInsertResumeSubmissions(ctx context.Context, submissions []models.ResumeSubmission) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.BatchInsertResumeSubmissions",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.name", m.cfg.Database),
		attribute.String("db.operation", "INSERT_ON_DUPLICATE"),
		attribute.String("db.sql.table", "resume_submissions"),
		attribute.Int("batch.size", len(submissions)),
	)

	if len(submissions) == 0 {
		span.SetStatus(codes.Ok, "no submissions to insert")
		return nil
	}

	err := m.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_uuid"}},            // 主键列
			DoUpdates: clause.AssignmentColumns([]string{"submission_uuid"}), // 执行无实际意义的更新
		}).Create(&submissions).Error

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("db.rows_affected", len(submissions)))
	span.SetStatus(codes.Ok, "")
	return nil
}

// CreateResumeSubmission 插入单条简历提交记录
func (m *MySQL) CreateResumeSubmission(ctx context.Context, submission *models.ResumeSubmission) error {
	return m.BatchInsertResumeSubmissions(ctx, []models.ResumeSubmission{*submission})
}

// UpdateResumeProcessingStatus 更新简历处理状态
func (m *MySQL) UpdateResumeProcessingStatus(ctx context.Context, submissionUUID string, status string) error {
	return m.db.WithContext(ctx).Model(&models.ResumeSubmission{}).Where("submission_uuid = ?", submissionUUID).Update("processing_status", status).Error
}

// MarkSubmissionFailed 将提交记录置为失败状态并记录错误原因
func (m *MySQL) MarkSubmissionFailed(ctx context.Context, submissionUUID string, reason string) error {
	updates := map[string]interface{}{
		"processing_status": constants.StatusExtractionFailed,
		"error_message":     reason,
	}
	return m.db.WithContext(ctx).Model(&models.ResumeSubmission{}).Where("submission_uuid = ?", submissionUUID).Updates(updates).Error
}

// UpdateResumeTextMD5 回填抽取文本的MD5
func (m *MySQL) UpdateResumeTextMD5(ctx context.Context, submissionUUID string, textMD5 string) error {
	if textMD5 == "" {
		return nil // 如果MD5为空，则不更新
	}
	return m.db.WithContext(ctx).Model(&models.ResumeSubmission{}).Where("submission_uuid = ?", submissionUUID).Update("extracted_text_md5", textMD5).Error
}

// UpdateResumeSubmissionFields 更新 ResumeSubmission 表的多个字段 (在事务中执行)
func (m *MySQL) UpdateResumeSubmissionFields(tx *gorm.DB, submissionUUID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&models.ResumeSubmission{}).Where("submission_uuid = ?", submissionUUID).Updates(updates).Error
}

// GetResumeSubmission 通过SubmissionUUID获取提交记录
func (m *MySQL) GetResumeSubmission(ctx context.Context, submissionUUID string) (*models.ResumeSubmission, error) {
	var submission models.ResumeSubmission
	if err := m.db.WithContext(ctx).Where("submission_uuid = ?", submissionUUID).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetSubmissionByTextMD5 通过抽取文本MD5查找已有提交，用于内容级去重
func (m *MySQL) GetSubmissionByTextMD5(ctx context.Context, textMD5 string) (*models.ResumeSubmission, error) {
	var submission models.ResumeSubmission
	err := m.db.WithContext(ctx).
		Where("extracted_text_md5 = ? AND processing_status = ?", textMD5, constants.StatusExtractionCompleted).
		Order("submission_timestamp DESC").
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetCandidate 通过CandidateID获取候选人记录
func (m *MySQL) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := m.db.WithContext(ctx).Where("candidate_id = ?", candidateID).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

// ListRecentSubmissions 按提交时间倒序分页列出提交记录
func (m *MySQL) ListRecentSubmissions(ctx context.Context, status string, limit, offset int) ([]models.ResumeSubmission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := m.db.WithContext(ctx).Model(&models.ResumeSubmission{})
	if status != "" {
		query = query.Where("processing_status = ?", status)
	}
	var submissions []models.ResumeSubmission
	err := query.Order("submission_timestamp DESC").Limit(limit).Offset(offset).Find(&submissions).Error
	return submissions, err
}

// FindOrCreateCandidate 查找或创建候选人
// 先按邮箱、再按手机号查找，命中则用本次抽取的非空字段补全已有记录；
// 两个标识都缺失时不做合并，直接新建。
// 姓名缺失时落库为 "Unknown"，抽取层本身从不产生这个值。
func (m *MySQL) FindOrCreateCandidate(ctx context.Context, tx *gorm.DB, record types.FieldRecord, senderEmail string) (*models.Candidate, error) {
	ctx, span := mysqlTracer.Start(ctx, "FindOrCreateCandidate", trace.WithAttributes(
		attribute.String("candidate.email", tracing.MaskPII(record.Email)),
		attribute.String("candidate.mobile", tracing.MaskPII(record.Mobile)),
	))
	defer span.End()

	db := m.db
	if tx != nil {
		db = tx // 如果在事务中，使用事务的 db handle
	}

	// 1. 尝试通过邮箱或手机号查找候选人
	var candidate models.Candidate
	var err error
	if record.Email != "" || record.Mobile != "" {
		query := db.WithContext(ctx).Model(&models.Candidate{})
		switch {
		case record.Email != "" && record.Mobile != "":
			query = query.Where("email = ?", record.Email).Or("mobile = ?", record.Mobile)
		case record.Email != "":
			query = query.Where("email = ?", record.Email)
		default:
			query = query.Where("mobile = ?", record.Mobile)
		}
		err = query.First(&candidate).Error
	} else {
		err = gorm.ErrRecordNotFound
	}

	if err == nil {
		// 命中已有候选人，用本次非空字段补全空列
		span.SetAttributes(attribute.Bool("candidate.found", true), attribute.String("candidate.id", candidate.CandidateID))
		updates := mergeCandidateUpdates(&candidate, record)
		if len(updates) > 0 {
			if uerr := db.WithContext(ctx).Model(&models.Candidate{}).
				Where("candidate_id = ?", candidate.CandidateID).Updates(updates).Error; uerr != nil {
				span.RecordError(uerr)
				span.SetStatus(codes.Error, "failed to merge candidate fields")
				return nil, fmt.Errorf("补全候选人字段失败: %w", uerr)
			}
		}
		return &candidate, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		// 发生了除"未找到记录"之外的其它数据库错误
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query candidate")
		return nil, fmt.Errorf("查询候选人失败: %w", err)
	}

	// 2. 如果未找到，创建新的候选人
	span.SetAttributes(attribute.Bool("candidate.found", false))

	newCandidate, err := newCandidateRecord(record, senderEmail)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build candidate record")
		return nil, err
	}

	if err := db.WithContext(ctx).Create(newCandidate).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create candidate")
		return nil, fmt.Errorf("创建新候选人失败: %w", err)
	}

	span.SetAttributes(attribute.String("candidate.id", newCandidate.CandidateID))
	return newCandidate, nil
}

// newCandidateRecord 从抽取结果构造一条新的候选人记录
// 姓名缺失时兜底为 "Unknown"；邮箱缺失时落 NULL，
// 保证多个无联系方式的候选人不会在邮箱唯一索引上互相冲突。
func newCandidateRecord(record types.FieldRecord, senderEmail string) (*models.Candidate, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}

	fullName := record.FullName
	if fullName == "" {
		fullName = constants.UnknownCandidateName
	}

	return &models.Candidate{
		CandidateID:       newUUID.String(),
		FullName:          fullName,
		Email:             models.NullableString(record.Email),
		Mobile:            record.Mobile,
		Education:         record.Education,
		CurrentLocation:   record.CurrentLocation,
		Salary:            record.Salary,
		PreferredLocation: record.PreferredLocation,
		SourceEmail:       senderEmail,
	}, nil
}

// mergeCandidateUpdates 计算合并已有候选人时需要补全的列
// 只填充空列，从不覆盖已有值；"Unknown" 姓名可被真实姓名替换。
func mergeCandidateUpdates(existing *models.Candidate, record types.FieldRecord) map[string]interface{} {
	updates := make(map[string]interface{})
	if record.FullName != "" && (existing.FullName == "" || existing.FullName == constants.UnknownCandidateName) {
		updates["full_name"] = record.FullName
	}
	if record.Email != "" && (existing.Email == nil || *existing.Email == "") {
		updates["email"] = record.Email
	}
	if record.Mobile != "" && existing.Mobile == "" {
		updates["mobile"] = record.Mobile
	}
	if record.Education != "" && existing.Education == "" {
		updates["education"] = record.Education
	}
	if record.CurrentLocation != "" && existing.CurrentLocation == "" {
		updates["current_location"] = record.CurrentLocation
	}
	if record.Salary != "" && existing.Salary == "" {
		updates["salary"] = record.Salary
	}
	if record.PreferredLocation != "" && existing.PreferredLocation == "" {
		updates["preferred_location"] = record.PreferredLocation
	}
	return updates
}

// CreateOutboxMessage 向发件箱写入一条待发布消息 (在事务中执行)
func (m *MySQL) CreateOutboxMessage(tx *gorm.DB, msg *models.OutboxMessage) error {
	return tx.Create(msg).Error
}

// FetchPendingOutboxMessages 拉取一批待发布的发件箱消息
// FOR UPDATE SKIP LOCKED 让多个中继实例互不阻塞地瓜分队列。
func (m *MySQL) FetchPendingOutboxMessages(tx *gorm.DB, batchSize int) ([]models.OutboxMessage, error) {
	var messages []models.OutboxMessage
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", "PENDING").
		Order("created_at ASC").
		Limit(batchSize).
		Find(&messages).Error
	return messages, err
}

// MarkOutboxMessageSent 标记发件箱消息发布成功
func (m *MySQL) MarkOutboxMessageSent(tx *gorm.DB, id uint64) error {
	now := time.Now()
	return tx.Model(&models.OutboxMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       "SENT",
		"processed_at": &now,
	}).Error
}

// MarkOutboxMessageFailed 记录发件箱消息的一次发布失败
// 超过最大重试次数后转入 FAILED 终态，等待人工排查。
func (m *MySQL) MarkOutboxMessageFailed(tx *gorm.DB, msg *models.OutboxMessage, maxRetries int, reason string) error {
	updates := map[string]interface{}{
		"retry_count":   msg.RetryCount + 1,
		"error_message": reason,
	}
	if msg.RetryCount+1 >= maxRetries {
		updates["status"] = "FAILED"
	}
	return tx.Model(&models.OutboxMessage{}).Where("id = ?", msg.ID).Updates(updates).Error
}
