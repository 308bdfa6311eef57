package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/projectnuraya/tilawah-tracker/config"
	"github.com/projectnuraya/tilawah-tracker/internal/api/handler"
	"github.com/projectnuraya/tilawah-tracker/internal/api/middleware"
	"github.com/projectnuraya/tilawah-tracker/internal/metrics"
	"github.com/projectnuraya/tilawah-tracker/pkg/jwt"
)

// maxBodyBytes 批量添加 100 名参与者也远小于该值
const maxBodyBytes = 1 << 20

// Deps 路由依赖；Revocation、Limiter、Metrics、Ping 均可为 nil
type Deps struct {
	JWT        *jwt.Manager
	Revocation middleware.RevocationChecker
	Limiter    middleware.Limiter
	Metrics    *metrics.Metrics
	// Ping 健康检查时探测数据库
	Ping   func(ctx context.Context) error
	Logger *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	r := gin.New()
	rl := cfg.RateLimit

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Prometheus 指标 ──
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证），按 IP 严格限流
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(deps.Limiter, "auth", rl.Auth, rl.AuthBlock))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 公开只读视图
		public := v1.Group("/public/:token")
		public.Use(middleware.RateLimit(deps.Limiter, "public", rl.Public, rl.Window))
		{
			public.GET("", h.Public.Overview)
			public.GET("/periods/:periodId", h.Public.Period)
			public.GET("/calendar.ics", h.Public.Calendar)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Revocation, deps.Logger))
		authorized.Use(middleware.RateLimitByMethod(deps.Limiter, rl.Read, rl.Write, rl.Window))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 组模块
			groups := authorized.Group("/groups")
			{
				groups.GET("", h.Group.List)
				groups.POST("", h.Group.Create)
				groups.GET("/:id", h.Group.Get)
				groups.PUT("/:id", h.Group.Update)
				groups.DELETE("/:id", h.Group.Delete)

				groups.GET("/:id/participants", h.Participant.List)
				groups.POST("/:id/participants", h.Participant.Create)
				groups.POST("/:id/participants/bulk",
					middleware.RateLimit(deps.Limiter, "bulk", rl.Bulk, rl.Window),
					h.Participant.BulkCreate)

				groups.GET("/:id/periods", h.Period.List)
				groups.POST("/:id/periods", h.Period.Open)
				groups.GET("/:id/export", h.Export.ExportGroup)
			}

			// 参与者模块
			participants := authorized.Group("/participants")
			{
				participants.GET("/:id", h.Participant.Get)
				participants.PUT("/:id", h.Participant.Update)
				participants.POST("/:id/deactivate", h.Participant.Deactivate)
				participants.POST("/:id/reactivate", h.Participant.Reactivate)
			}

			// 周期模块
			periods := authorized.Group("/periods")
			{
				periods.GET("/:id", h.Period.Get)
				periods.POST("/:id/lock", h.Period.Lock)
				periods.POST("/:id/share", h.Share.ShareText)
				periods.GET("/:id/reminders", h.Share.Reminders)
				periods.GET("/:id/export", h.Export.ExportPeriod)
			}

			// 进度模块
			assignments := authorized.Group("/assignments")
			{
				assignments.PATCH("/:id", h.Progress.UpdateStatus)
				assignments.PUT("/:id/slot", h.Progress.UpdateSlot)
			}
		}
	}

	return r
}
