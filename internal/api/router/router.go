package router

import (
	"context"
	"strconv"

	"resume-extract-go/internal/api/handler"
	"resume-extract-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册 API 路由
// 健康检查不鉴权，其余接口经 X-API-Key 头校验。
func RegisterRoutes(h *server.Hertz, cfg *config.Config, submissionHandler *handler.SubmissionHandler) {
	h.GET("/api/v1/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")
	if len(cfg.Server.APIKeys) > 0 {
		api.Use(apiKeyMiddleware(cfg.Server.APIKeys))
	}

	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}
		sourceChannel := ctx.PostForm("source_channel")

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := submissionHandler.HandleResumeUpload(
			c,
			file,
			fileHeader.Size,
			fileHeader.Filename,
			sourceChannel,
		)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/submissions/:uuid", func(c context.Context, ctx *app.RequestContext) {
		submissionUUID := ctx.Param("uuid")
		detail, err := submissionHandler.GetSubmission(c, submissionUUID)
		if err != nil {
			if handler.IsNotFound(err) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "提交记录不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, detail)
	})

	api.GET("/submissions", func(c context.Context, ctx *app.RequestContext) {
		status := ctx.Query("status")
		limit, _ := strconv.Atoi(ctx.Query("limit"))
		offset, _ := strconv.Atoi(ctx.Query("offset"))

		briefs, err := submissionHandler.ListSubmissions(c, status, limit, offset)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"submissions": briefs, "count": len(briefs)})
	})

	api.GET("/candidates/:id", func(c context.Context, ctx *app.RequestContext) {
		candidateID := ctx.Param("id")
		candidate, err := submissionHandler.GetCandidate(c, candidateID)
		if err != nil {
			if handler.IsNotFound(err) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "候选人不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, candidate)
	})
}

// apiKeyMiddleware 基于 X-API-Key 请求头的鉴权中间件
func apiKeyMiddleware(apiKeys []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		allowed[key] = struct{}{}
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:X-API-Key", ""),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			_, ok := allowed[key]
			return ok, nil
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.JSON(consts.StatusUnauthorized, utils.H{"error": "无效的API Key"})
			c.Abort()
		}),
	)
}
