// Package router 提供 HTTP 路由配置
package router

import (
	"vision-architect-api/internal/application/director"
	"vision-architect-api/internal/application/loop"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/infrastructure/persistence/redis"
	"vision-architect-api/internal/interfaces/http/handler"
	"vision-architect-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies 路由依赖
type Dependencies struct {
	Director  *director.Service
	Loop      *loop.Service
	Redis     *redis.Client
	RateLimit middleware.RateLimiter
}

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
	deps   Dependencies
}

// New 创建新的路由器
func New(cfg *config.Config, deps Dependencies) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine: engine,
		cfg:    cfg,
		deps:   deps,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// 限流中间件
	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerMinute: r.cfg.Security.RateLimit.RequestsPerMinute,
	}, r.deps.RateLimit))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	healthHandler := handler.NewHealthHandler(r.deps.Redis)
	r.engine.GET("/health", healthHandler.Health)
	r.engine.GET("/ready", healthHandler.Ready)
	r.engine.GET("/live", healthHandler.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 业务路由
	directorHandler := handler.NewDirectorHandler(r.cfg, r.deps.Director)
	videoPlanHandler := handler.NewVideoPlanHandler(r.cfg, r.deps.Director)
	loopCycleHandler := handler.NewLoopCycleHandler(r.cfg, r.deps.Loop)
	modelsHandler := handler.NewModelsHandler()

	api := r.engine.Group("/api")
	{
		api.POST("/director", directorHandler.Handle)
		api.POST("/generate-video-plan", videoPlanHandler.Generate)
		api.POST("/generate-loop-cycle", loopCycleHandler.Generate)
		api.GET("/models", modelsHandler.List)
	}
}
