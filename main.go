package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/boot"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/copyright"
	"github.com/Joker-Pro-Max/Pineapple/pkg/database"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"
	"github.com/Joker-Pro-Max/Pineapple/pkg/metrics"
	"github.com/Joker-Pro-Max/Pineapple/pkg/version"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// checkFatalErr 用于统一处理错误检查并中断流程。
func checkFatalErr(err error, message string) {
	if err != nil {
		logger.Fatal("%s: %v", message, err)
	}
}

func main() {
	if version.BuildTime == "unknown" {
		version.BuildTime = time.Now().Format(time.RFC3339)
	}

	configPath := os.Getenv("PINEAPPLE_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 加载配置文件（Configuration）
	cfg, err := boot.InitConfig(configPath)
	checkFatalErr(err, "Failed to load config")

	gin.SetMode(cfg.Server.Mode)

	// 初始化关系型数据库（PostgreSQL / MySQL）
	db, err := boot.InitDB(cfg)
	checkFatalErr(err, "Failed to connect to database")

	sqlDB, err := db.DB()
	checkFatalErr(err, "Failed to get underlying *sql.DB")
	defer sqlDB.Close()

	// 初始化 MongoDB 连接，未配置时不提供文件服务
	var mongodb *database.MongoClient
	if cfg.MongoDB.URI != "" {
		mongodb, err = boot.InitMongo(ctx, &cfg.MongoDB)
		checkFatalErr(err, "Failed to connect to MongoDB")
		defer mongodb.Close(context.Background())
	} else {
		logger.Warn("mongodb.uri is empty, file service disabled")
	}

	// 初始化 Redis 客户端（令牌注销列表）
	redisClient, err := boot.InitRedis(&cfg.Redis)
	checkFatalErr(err, "Failed to connect to Redis")
	defer redisClient.Close()

	repos := boot.InitRepositories(db, mongodb)

	var blobs repository.BlobStore
	if mongodb != nil {
		blobs, err = boot.InitBlobStore(ctx, mongodb, cfg.MongoDB.Bucket, repos.FileRepo)
		checkFatalErr(err, "Failed to init file storage")
	}

	// 初始化审计组件，判定结果同时送往审计和指标
	auditComponents, err := boot.InitAudit(&cfg.Audit)
	checkFatalErr(err, "Failed to init audit components")
	defer auditComponents.Close()

	m := metrics.New()
	observers := []service.DecisionObserver{m}
	if auditComponents != nil {
		observers = append(observers, auditComponents.Recorder)
		go auditComponents.WebSocketServer.Start(ctx)
	}

	services, err := boot.InitServices(cfg, repos, blobs, redisClient, observers...)
	checkFatalErr(err, "Failed to init services")

	adminUser, adminPass, isNewAdmin, err := services.SuperuserService.EnsureSuperuser(ctx)
	checkFatalErr(err, "Failed to init superuser")

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	boot.InitRouter(engine, services, boot.InitHandlers(services, auditComponents), auditComponents, m)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	userCount, _ := repos.UserRepo.Count(ctx)
	status := copyright.SystemStatus{
		Version:        version.Get().String(),
		Addr:           addr,
		DatabaseDriver: cfg.Database.Driver,
		DatabaseStatus: sqlDB.PingContext(ctx) == nil,
		RedisStatus:    redisClient.Healthy(ctx),
		MongoDBStatus:  mongodb != nil && mongodb.Ping(ctx) == nil,
		JWTAlgorithm:   cfg.JWT.Algorithm,
		UserCount:      userCount,
		NewAdmin:       isNewAdmin,
		AdminUser:      adminUser,
		AdminPass:      adminPass,
	}
	if auditComponents != nil {
		status.AuditPartitions, _ = auditComponents.Reader.Partitions()
	}
	copyright.PrintCopyright(status)

	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown server: %v", err)
		}
	}()

	logger.Info("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server: %v", err)
	}
	logger.Info("Server stopped")
}
