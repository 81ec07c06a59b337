package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/config"
	"github.com/hadracha/guides-portal/internal/handler"
	"github.com/hadracha/guides-portal/internal/middleware"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/internal/service"
	"github.com/hadracha/guides-portal/pkg/database"
	"github.com/hadracha/guides-portal/pkg/logger"
	"github.com/hadracha/guides-portal/pkg/preview"
	"github.com/hadracha/guides-portal/pkg/sms"
	"github.com/hadracha/guides-portal/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	db := database.Connect()
	if err := migrate(db); err != nil {
		appLog.Fatal("migration failed", "err", err)
	}
	if err := seedTargetAudiences(db); err != nil {
		appLog.Fatal("failed to seed target audiences", "err", err)
	}
	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db, appLog); err != nil {
			appLog.Fatal("failed to seed admin user", "err", err)
		}
	}

	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisOpt, err := redis.ParseURL(redisURL)
	if err != nil {
		appLog.Fatal("invalid REDIS_URL", "err", err)
	}
	rdb := redis.NewClient(redisOpt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLog.Fatal("failed to connect redis", "err", err)
	}

	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		appLog.Fatal("failed to initialize cloudinary storage", "err", err)
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchIndexer := service.NewMeiliSearchService(meiliClient, appLog)

	smsSender, err := sms.New(sms.ConfigFromEnv())
	if err != nil {
		if cfg.AppEnv != "development" {
			appLog.Fatal("failed to initialize sms gateway", "err", err)
		}
		appLog.Warn("sms gateway not configured, codes will be logged instead", "err", err)
		smsSender = devSMSSender{log: appLog}
	}

	previewGen, err := preview.New(preview.ConfigFromEnv())
	if err != nil {
		appLog.Warn("preview service not configured, materials will have no preview", "err", err)
		previewGen = nil
	}

	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	pendingRepo := repository.NewPendingTopicRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	audienceRepo := repository.NewAudienceRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	otpStore := service.NewRedisOTPStore(rdb)
	authService := service.NewAuthService(userRepo, otpStore, smsSender, service.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		OTPCodeTTL:   cfg.OTPCodeTTL,
		OTPRateLimit: cfg.OTPRateLimit,
	}, appLog)
	authHandler := handler.NewAuthHandler(authService, appLog)

	topicService := service.NewTopicService(db, topicRepo, pendingRepo, materialRepo, appLog)
	topicHandler := handler.NewTopicHandler(topicService, appLog)

	materialService := service.NewMaterialService(db, materialRepo, topicRepo, pendingRepo, audienceRepo, likeRepo, fileStorage, previewGen, searchIndexer, appLog)
	materialHandler := handler.NewMaterialHandler(materialService, appLog)

	approvalService := service.NewApprovalService(materialRepo, pendingRepo, userRepo, appLog)
	approvalHandler := handler.NewApprovalHandler(approvalService, appLog)

	userService := service.NewUserService(userRepo, appLog)
	userHandler := handler.NewUserHandler(userService, appLog)

	interactionService := service.NewInteractionService(likeRepo, commentRepo, userRepo)
	interactionHandler := handler.NewInteractionHandler(interactionService, appLog)

	router := gin.Default()
	router.MaxMultipartMemory = service.MaxUploadSize
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/otp/request", authHandler.RequestOTP)
		auth.POST("/otp/verify", authHandler.VerifyOTP)
		auth.POST("/login", authHandler.Login)
	}

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/topics", topicHandler.ListMainTopics)
		api.GET("/topics/:id/subtopics", topicHandler.ListSubTopics)

		api.POST("/materials", materialHandler.Upload)
		api.GET("/materials", materialHandler.List)
		api.GET("/materials/:id", materialHandler.Get)
		api.DELETE("/materials/:id", materialHandler.Delete)

		api.POST("/materials/:id/like", interactionHandler.ToggleLike(model.TargetMaterial))
		api.POST("/materials/:id/comments", interactionHandler.AddComment(model.TargetMaterial))
		api.GET("/materials/:id/comments", interactionHandler.GetComments(model.TargetMaterial))
		api.POST("/topics/:id/like", interactionHandler.ToggleLike(model.TargetMainTopic))
		api.POST("/topics/:id/comments", interactionHandler.AddComment(model.TargetMainTopic))
		api.GET("/topics/:id/comments", interactionHandler.GetComments(model.TargetMainTopic))

		moderation := api.Group("/moderation")
		moderation.Use(authMiddleware.RequireModerator())
		{
			moderation.GET("/counts", approvalHandler.GetCounts)

			moderation.GET("/topics/pending", topicHandler.GetPendingTopics)
			moderation.PATCH("/topics/pending/:id/approve", topicHandler.ApprovePendingTopic)
			moderation.PATCH("/topics/pending/:id/reject", topicHandler.RejectPendingTopic)
			moderation.POST("/topics/pending/bulk-approve", topicHandler.BulkApprove)
			moderation.POST("/topics/pending/bulk-reject", topicHandler.BulkReject)

			moderation.GET("/materials/pending", materialHandler.ListForApproval)
			moderation.PATCH("/materials/:id/approve", materialHandler.Approve)
			moderation.PATCH("/materials/:id/reject", materialHandler.Reject)

			moderation.GET("/users", userHandler.ListAll)
			moderation.GET("/users/pending", userHandler.ListPendingActivation)
			moderation.PATCH("/users/:id/activate", userHandler.Activate)
		}

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/topics", topicHandler.CreateMainTopic)
			admin.POST("/topics/:id/subtopics", topicHandler.CreateSubTopic)
			admin.DELETE("/topics/:id", topicHandler.DeleteMainTopic)
			admin.DELETE("/subtopics/:id", topicHandler.DeleteSubTopic)
			admin.PATCH("/topics/pending/:id/reassign", topicHandler.ReassignTopic)
			admin.PATCH("/users/:id/deactivate", userHandler.Deactivate)
		}
	}

	appLog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
	if err := router.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("server exited with error", "err", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.MainTopic{},
		&model.SubTopic{},
		&model.PendingTopic{},
		&model.Material{},
		&model.TargetAudience{},
		&model.Like{},
		&model.Comment{},
	)
}

func seedTargetAudiences(db *gorm.DB) error {
	defaults := []string{"א-ג", "ד-ו", "ז-ט", "י-יב", "צוות הדרכה"}

	for _, name := range defaults {
		var count int64
		if err := db.Model(&model.TargetAudience{}).
			Where("name = ?", name).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&model.TargetAudience{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB, appLog *logger.Logger) error {
	const adminPhone = "0500000000"

	var count int64
	if err := db.Model(&model.User{}).
		Where("phone = ?", adminPhone).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Phone:        adminPhone,
		FullName:     "מנהל מערכת",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	appLog.Info("admin user seeded", "phone", adminPhone)
	return nil
}

// devSMSSender replaces the real gateway in development so the OTP flow can
// be exercised without credentials.
type devSMSSender struct {
	log *logger.Logger
}

func (d devSMSSender) Send(_ context.Context, phone, message string) error {
	d.log.Info("sms (dev mode)", "phone", phone, "message", message)
	return nil
}
