// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grouphub-go/internal/config"
	"grouphub-go/internal/handler"
	"grouphub-go/internal/middleware"
	"grouphub-go/internal/pipeline"
	"grouphub-go/internal/repository"
	"grouphub-go/internal/service"
	"grouphub-go/pkg/database"
	"grouphub-go/pkg/kafka"
	"grouphub-go/pkg/log"
	"grouphub-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// 4. 初始化 Repository
	groupRepo := repository.NewGroupRepository(database.DB)
	officerRepo := repository.NewOfficerRepository(database.DB)
	ballotRepo := repository.NewBallotRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.DB)
	changeLogRepo := repository.NewChangeLogRepository(database.DB)
	memberRepo := repository.NewMemberRepository(database.DB, database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenExpireHours)
	producer := kafka.NewProducer(cfg.Kafka)
	treeQuery := service.NewTreeQuery(groupRepo)
	rollup := service.NewPermissionRollup(service.DefaultRollupPolicy())
	groupService := service.NewGroupService(groupRepo, officerRepo, ballotRepo, sessionRepo, changeLogRepo, treeQuery, rollup, producer)
	officerService := service.NewOfficerService(officerRepo, groupRepo, treeQuery, producer)

	// 6. 启动后台 Kafka 消费者，把变更事件落成审计记录
	processor := pipeline.NewProcessor(changeLogRepo)
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 7. 种子根组：数据库为空时按配置创建唯一的根节点（幂等）
	if err := groupService.EnsureRoot(cfg.Root.Name, cfg.Root.Symbol); err != nil {
		log.Fatalf("根组初始化失败: %v", err)
	}

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	groupHandler := handler.NewGroupHandler(groupService)
	officerHandler := handler.NewOfficerHandler(officerService)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(jwtManager, memberRepo))
	{
		// Group 路由组
		groups := apiV1.Group("/groups")
		{
			groups.GET("", groupHandler.List)
			groups.GET("/tree", groupHandler.Tree)
			groups.POST("", groupHandler.Create)
			groups.PATCH("", groupHandler.Update)
			groups.DELETE("", groupHandler.Remove)
			// 变更审计记录，仅限根组官员查询
			groups.GET("/changelog", middleware.RootOfficerMiddleware(groupRepo, officerRepo), groupHandler.Changelog)
		}

		// Officer 路由组：读操作全局可用，写操作限定在指定工作组的子树内
		apiV1.GET("/officers", officerHandler.List)
		officers := apiV1.Group("/working-groups/:wgId/officers")
		{
			officers.POST("", officerHandler.Create)
			officers.PATCH("", officerHandler.Update)
			officers.DELETE("", officerHandler.Remove)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Warnf("Kafka 生产者关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
