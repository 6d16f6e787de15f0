package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maintdesk/internal/config"
	"maintdesk/internal/handlers"
	"maintdesk/internal/models"
	"maintdesk/internal/observability"
	"maintdesk/internal/services"
	"maintdesk/pkg/genai"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// 读取配置文件（默认 ./config.yml）并初始化日志
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := config.InitLogger(cfg); err != nil {
		logrus.Warnf("init logger: %v", err)
	}
	appLogger := logrus.StandardLogger()

	// 初始化链路追踪
	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg)
	if err != nil {
		appLogger.Warnf("Failed to setup tracing: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	// 连接数据库
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if cfg.Monitoring.Tracing.Enabled {
		if err := observability.InstrumentDatabase(db); err != nil {
			appLogger.Warnf("Failed to instrument database: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	// 自动迁移（生产可改为条件控制）
	if err := db.AutoMigrate(
		&models.Asset{}, &models.Technician{}, &models.PreventivePlan{}, &models.PlanTask{},
		&models.MaintenanceTicket{}, &models.ChecklistItem{}, &models.TicketActivity{},
		&models.UsedPart{}, &models.TimeLog{}, &models.PlanExecution{},
	); err != nil {
		appLogger.Fatalf("Failed to migrate database: %v", err)
	}

	// 可选的文本生成服务
	var textGen services.TextGenerator
	if cfg.GenAI.Enabled {
		textGen = genai.NewClient(&genai.Config{
			BaseURL: cfg.GenAI.BaseURL,
			APIKey:  cfg.GenAI.APIKey,
			Model:   cfg.GenAI.Model,
			Timeout: cfg.GenAI.Timeout,
		}, appLogger)
	}

	// 初始化业务服务
	wsHub := services.NewWebSocketHub()
	go wsHub.Run()

	assetService := services.NewAssetService(db, appLogger)
	technicianService := services.NewTechnicianService(db, appLogger)
	planService := services.NewPlanService(db, appLogger, textGen)
	ticketService := services.NewTicketService(db, appLogger, wsHub)
	notificationService := services.NewNotificationService(wsHub, appLogger)
	schedulerService := services.NewSchedulerService(
		db, appLogger, planService, ticketService, technicianService,
		notificationService, wsHub, cfg.Scheduler.Assignment,
	)

	// 启动预防性维护调度循环
	if cfg.Scheduler.Enabled {
		if err := schedulerService.Start(cfg.Scheduler.Interval); err != nil {
			appLogger.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	// 初始化 Gin
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	if cfg.Security.CORS.Enabled {
		r.Use(corsMiddleware())
	}
	if cfg.Monitoring.Tracing.Enabled {
		r.Use(otelgin.Middleware("maintdesk"))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC(), "version": "v1.0.0"})
	})

	// 实时变更通道
	r.GET("/ws", wsHub.HandleWebSocket)

	// API 路由组
	api := r.Group("/api")
	handlers.RegisterAssetRoutes(api, handlers.NewAssetHandler(assetService, appLogger))
	handlers.RegisterTechnicianRoutes(api, handlers.NewTechnicianHandler(technicianService, appLogger))
	handlers.RegisterPlanRoutes(api, handlers.NewPlanHandler(planService, appLogger))
	handlers.RegisterTicketRoutes(api, handlers.NewTicketHandler(ticketService, appLogger))
	handlers.RegisterSchedulerRoutes(api, handlers.NewSchedulerHandler(schedulerService, appLogger))

	// 启动服务器
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: r}
	go func() {
		appLogger.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	if cfg.Scheduler.Enabled {
		schedulerService.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		appLogger.Warnf("Tracing shutdown: %v", err)
	}
	appLogger.Info("Server exited")
}

// corsMiddleware CORS 中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
