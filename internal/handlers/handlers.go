package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"memestash/api/internal/cache"
	"memestash/api/internal/config"
	"memestash/api/internal/middleware"
	"memestash/api/internal/repository"
	"memestash/api/internal/service"
	"memestash/api/internal/storage"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	auth       *service.AuthService
	memes      *service.MemeService
	shares     *service.ShareService
	categories *service.CategoryService
	tags       *service.TagService
	users      *repository.UserRepository
	db         *pgxpool.Pool
	redis      *redis.Client
	store      *storage.ObjectStore
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	memeRepo := repository.NewMemeRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	metadataCache := cache.NewMetadataCache(cache.NewRedisKV(redisClient), cfg.Share.MetadataTTL)

	return HandlerSet{
		log:  log,
		cfg:  cfg,
		auth: service.NewAuthService(userRepo, cfg.Security.JWTSecret, cfg.Security.JWTTTL, log),
		memes: service.NewMemeService(
			memeRepo, categoryRepo, tagRepo, store, metadataCache, cfg.Upload.MaxBytes, log),
		shares: service.NewShareService(
			linkRepo, memeRepo, store, metadataCache, cfg.BaseURL, cfg.Share.DefaultTTL, log),
		categories: service.NewCategoryService(categoryRepo),
		tags:       service.NewTagService(tagRepo),
		users:      userRepo,
		db:         db,
		redis:      redisClient,
		store:      store,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authRequired := middleware.Auth(h.cfg.Security.JWTSecret, h.users)
	authOptional := middleware.OptionalAuth(h.cfg.Security.JWTSecret, h.users)

	auth := router.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)
	auth.GET("/profile", authRequired, h.Profile)

	memes := router.Group("/memes")
	memes.GET("/:id/metadata", h.MemeMetadata)
	memes.Use(authRequired)
	memes.POST("", h.UploadMeme)
	memes.GET("", h.ListMemes)
	memes.GET("/:id", h.GetMeme)
	memes.PUT("/:id", h.UpdateMeme)
	memes.DELETE("/:id", h.DeleteMeme)
	memes.GET("/:id/file", h.GetMemeFile)
	memes.POST("/:id/share", h.CreateShareLink)
	memes.GET("/:id/share", h.ListShareLinks)

	share := router.Group("/share")
	share.GET("/:token", authOptional, h.ResolveShareLink)
	share.GET("/:token/file", authOptional, h.ResolveShareLinkFile)
	share.DELETE("/:token", authRequired, h.RevokeShareLink)

	categories := router.Group("/categories", authRequired)
	categories.POST("", h.CreateCategory)
	categories.GET("", h.ListCategories)
	categories.GET("/:id", h.GetCategory)
	categories.PUT("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)
	categories.GET("/:id/memes", h.ListMemesByCategory)

	tags := router.Group("/tags", authRequired)
	tags.POST("", h.CreateTag)
	tags.GET("", h.ListTags)
	tags.GET("/:id", h.GetTag)
	tags.PUT("/:id", h.UpdateTag)
	tags.DELETE("/:id", h.DeleteTag)
	tags.GET("/:id/memes", h.ListMemesByTag)
}
