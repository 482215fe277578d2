package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-extract-go/internal/api/handler"
	"resume-extract-go/internal/api/router"
	"resume-extract-go/internal/config"
	appCoreLogger "resume-extract-go/internal/logger"
	"resume-extract-go/internal/mailbox"
	"resume-extract-go/internal/outbox"
	"resume-extract-go/internal/processor"
	"resume-extract-go/internal/storage"
	"resume-extract-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 链路追踪
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
		if err != nil {
			glog.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := shutdownTracing(shutdownCtx); err != nil {
				glog.Warnf("关闭链路追踪Provider失败: %v", err)
			}
		}()
		glog.Info("链路追踪初始化成功")
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	// 声明交换机、队列和绑定关系
	if storageManager.RabbitMQ != nil {
		if err := storageManager.RabbitMQ.SetupResumeTopology(); err != nil {
			glog.Fatalf("声明RabbitMQ拓扑失败: %v", err)
		}
		glog.Info("RabbitMQ拓扑声明成功")
	}

	// 抽取处理器
	extractionProcessor, err := processor.CreateProcessorFromConfig(ctx, cfg, storageManager)
	if err != nil {
		glog.Fatalf("初始化抽取处理器失败: %v", err)
	}
	glog.Info("抽取处理器初始化成功")

	// 暂存附件消费者
	if storageManager.RabbitMQ != nil {
		prefetch := cfg.RabbitMQ.PrefetchCount
		if workers, ok := cfg.RabbitMQ.ConsumerWorkers["extraction_consumer_workers"]; ok && workers > 0 {
			prefetch = workers
		}
		glog.Infof("启动暂存附件消费者，队列: %s, 预取数: %d", cfg.RabbitMQ.StagedAttachmentQueue, prefetch)
		_, err = storageManager.RabbitMQ.StartConsumer(cfg.RabbitMQ.StagedAttachmentQueue, prefetch, func(data []byte) bool {
			var message storage.AttachmentStagedMessage
			if err := json.Unmarshal(data, &message); err != nil {
				appCoreLogger.Error().Err(err).Msg("解析暂存附件消息失败，丢弃")
				return true // 消息格式损坏，重投也无济于事
			}
			if err := extractionProcessor.ProcessStagedAttachment(ctx, message, cfg); err != nil {
				appCoreLogger.Error().
					Err(err).
					Str("submission_uuid", message.SubmissionUUID).
					Msg("处理暂存附件失败")
				return false
			}
			return true
		})
		if err != nil {
			glog.Fatalf("启动暂存附件消费者失败: %v", err)
		}
	}

	// 发件箱消息中继
	relayLogger := log.New(appCoreLogger.Logger, "[MessageRelay] ", log.LstdFlags|log.Lshortfile)
	messageRelay := outbox.NewMessageRelay(storageManager.MySQL, storageManager.RabbitMQ, relayLogger)
	messageRelay.Start()
	glog.Info("发件箱消息中继已启动")

	// IMAP邮箱轮询器
	var poller *mailbox.Poller
	if cfg.IMAP.Address != "" && cfg.IMAP.Username != "" {
		poller, err = mailbox.NewPoller(cfg, storageManager)
		if err != nil {
			glog.Fatalf("初始化邮箱轮询器失败: %v", err)
		}
		poller.Start(ctx)
		glog.Info("邮箱轮询器已启动")
	} else {
		glog.Warn("IMAP未配置，邮箱通道不启用")
	}

	// HTTP服务器
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	submissionHandler := handler.NewSubmissionHandler(cfg, storageManager)
	router.RegisterRoutes(h, cfg, submissionHandler)
	glog.Infof("HTTP服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	if poller != nil {
		poller.Stop()
	}
	messageRelay.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog全局日志，并把Hertz的hlog桥接到同一输出
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
}
