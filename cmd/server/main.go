package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/handlers"
	"blogicum/internal/middleware"
	"blogicum/internal/router"
	"blogicum/internal/storage"
	"blogicum/internal/view"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Seed(gdb); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	// 登录限流，未配置 Redis 时关闭
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("redis unavailable, login rate limit disabled: %v", err)
			redisClient = nil
		}
	}

	// 文章图片存储，未配置桶时不允许上传
	var images storage.ImageStore
	if cfg.S3BucketName != "" {
		store, err := storage.NewS3Store(cfg)
		if err != nil {
			log.Fatalf("init image store: %v", err)
		}
		images = store
	}

	templates, err := view.Load(cfg.TemplatesDir, cfg.Location)
	if err != nil {
		log.Fatalf("load templates: %v", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.CustomRecovery(handlers.Recover))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.HTMLRender = templates
	r.Static("/static", cfg.StaticDir)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 14 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("blogicum_session", store))
	r.Use(middleware.LoadUser(gdb))
	r.Use(middleware.CSRF(cfg.CSRFSecret, handlers.CSRFFailure))

	router.RegisterRoutes(r, router.Deps{
		DB:              gdb,
		Images:          images,
		Redis:           redisClient,
		Location:        cfg.Location,
		SiteURL:         cfg.SiteURL,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Blogicum server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
}
