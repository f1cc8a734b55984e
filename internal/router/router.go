package router

import (
	"net/http"
	"time"

	"blogicum/internal/handlers"
	"blogicum/internal/middleware"
	"blogicum/internal/services"
	"blogicum/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps 构建处理器所需的共享资源
type Deps struct {
	DB       *gorm.DB
	Images   storage.ImageStore // 可选
	Redis    *redis.Client      // 可选，配置后启用登录限流
	Location *time.Location
	SiteURL  string

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	posts := services.NewPosts(deps.DB)
	listing := services.NewPostListing(deps.DB)
	users := services.NewUsers(deps.DB)

	// 处理器
	listingHandler := handlers.NewListingHandler(listing)
	postHandler := handlers.NewPostHandler(posts, deps.Images, deps.Location)
	commentHandler := handlers.NewCommentHandler(posts)
	profileHandler := handlers.NewProfileHandler(listing, users)
	authHandler := handlers.NewAuthHandler(users)
	feedHandler := handlers.NewFeedHandler(listing, deps.SiteURL)

	// 公共路由 (Public Routes)
	r.GET("/", listingHandler.Index)                  // 首页
	r.GET("/category/:slug/", listingHandler.Category) // 分类文章列表
	r.GET("/posts/:id/", postHandler.Detail)           // 文章详情页
	r.GET("/profile/:username/", profileHandler.Profile)

	// SEO 相关
	r.GET("/robots.txt", feedHandler.RobotsTxt)
	r.GET("/sitemap.xml", feedHandler.SitemapXML)
	r.GET("/feed.xml", feedHandler.RSSFeed)

	// 评论创建先校验文章公开可见，再校验登录
	r.GET("/posts/:id/comment/", commentHandler.ShowCreate)
	r.POST("/posts/:id/comment/", commentHandler.Create)

	// 认证 (Auth)
	auth := r.Group("/auth")
	{
		auth.GET("/login/", authHandler.ShowLogin)
		auth.POST("/login/",
			middleware.RateLimit(deps.Redis, deps.LoginRateLimit, deps.LoginRateWindow, http.MethodPost),
			authHandler.Login)
		auth.GET("/logout/", authHandler.Logout)
		auth.GET("/registration/", authHandler.ShowRegistration)
		auth.POST("/registration/", authHandler.Registration)
	}

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/posts/create/", postHandler.ShowCreate)
		authorized.POST("/posts/create/", postHandler.Create)
		authorized.GET("/posts/:id/edit/", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit/", postHandler.Update)
		authorized.GET("/posts/:id/delete/", postHandler.ShowDelete)
		authorized.POST("/posts/:id/delete/", postHandler.Delete)

		authorized.GET("/posts/:id/comment/:comment_id/edit/", commentHandler.ShowEdit)
		authorized.POST("/posts/:id/comment/:comment_id/edit/", commentHandler.Update)
		authorized.GET("/posts/:id/comment/:comment_id/delete/", commentHandler.ShowDelete)
		authorized.POST("/posts/:id/comment/:comment_id/delete/", commentHandler.Delete)

		authorized.GET("/profile/edit/", profileHandler.ShowEdit)
		authorized.POST("/profile/edit/", profileHandler.Update)
	}

	r.NoRoute(handlers.NotFound)
}
