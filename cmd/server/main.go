// cmd/server/main.go - DevTogether Backend Server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Внутренние пакеты проекта
	"devtogether-backend/internal/config"
	"devtogether-backend/internal/database"
	"devtogether-backend/internal/handlers"
	"devtogether-backend/internal/middleware"
	"devtogether-backend/internal/models"
	"devtogether-backend/internal/services"
	"devtogether-backend/pkg/auth"
	"devtogether-backend/pkg/validator"

	// Внешние зависимости
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	serverStartTime = time.Now()

	// Версия приложения
	appVersion = "1.0.0"
	buildTime  = "unknown"
	gitCommit  = "unknown"
)

func main() {
	// Загружаем конфигурацию (.env подхватывается внутри Load)
	cfg := config.Load()

	setupLogging(cfg)
	printStartupInfo(cfg)

	// Подключаемся к MongoDB
	logrus.Info("🔌 Connecting to MongoDB...")
	db, err := database.NewMongoDB(cfg)
	if err != nil {
		logrus.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.Warnf("⚠️  Error disconnecting from MongoDB: %v", err)
		} else {
			logrus.Info("✅ Disconnected from MongoDB")
		}
	}()

	// Создаем индексы в MongoDB
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		logrus.Warnf("⚠️  Failed to create some indexes: %v", err)
	}
	indexCancel()

	// Инициализируем валидатор
	validator.Init()

	// Инициализируем JWT менеджер
	jwtManager := auth.NewJWTManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpiration)*time.Hour,
		time.Duration(cfg.RefreshTokenExpiration)*time.Hour,
	)

	collections := getCollections(db.Database)

	// WebSocket Hub - транспорт live-доставки уведомлений и сообщений
	hub := handlers.NewHub()
	go hub.Run()

	// Сервисы
	notificationService := services.NewNotificationService(
		cfg,
		collections["notification_events"],
		collections["notifications"],
		hub,
	)
	assistantService := services.NewAssistantService(cfg)
	imageService := services.NewImageSearchService(cfg)
	fileService := services.NewFileService(cfg)

	// Фоновый диспетчер outbox-событий уведомлений
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	go notificationService.RunDispatcher(dispatcherCtx)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(collections["users"], jwtManager)
	usersHandler := handlers.NewUsersHandler(collections["users"], fileService)
	projectHandler := handlers.NewProjectHandler(
		collections["projects"],
		collections["users"],
		notificationService,
		imageService,
	)
	applicationHandler := handlers.NewApplicationHandler(
		collections["project_applications"],
		collections["projects"],
		collections["users"],
		notificationService,
	)
	submissionHandler := handlers.NewSubmissionHandler(
		db.Client,
		collections["project_submissions"],
		collections["projects"],
		collections["users"],
		notificationService,
	)
	messageHandler := handlers.NewMessageHandler(
		collections["messages"],
		collections["projects"],
		notificationService,
		hub,
	)
	commentHandler := handlers.NewCommentHandler(
		collections["project_comments"],
		collections["projects"],
		collections["users"],
		notificationService,
		hub,
	)
	notificationHandler := handlers.NewNotificationHandler(collections["notifications"])
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	wsHandler := handlers.NewWebSocketHandler(jwtManager, hub)

	router := setupRouter(cfg, hub, jwtManager, routeHandlers{
		auth:         authHandler,
		users:        usersHandler,
		project:      projectHandler,
		application:  applicationHandler,
		submission:   submissionHandler,
		message:      messageHandler,
		comment:      commentHandler,
		notification: notificationHandler,
		assistant:    assistantHandler,
		websocket:    wsHandler,
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Запускаем сервер в горутине
	go func() {
		logrus.Infof("🚀 DevTogether Backend Server v%s starting...", appVersion)
		logrus.Infof("🌐 Server running on http://%s:%s", cfg.Host, cfg.Port)
		logrus.Infof("📡 WebSocket endpoint: ws://%s:%s/ws", cfg.Host, cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Shutting down server...")

	// Останавливаем диспетчер уведомлений
	stopDispatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Warnf("⚠️  Server forced to shutdown: %v", err)
	} else {
		logrus.Info("✅ Server gracefully stopped")
	}

	logrus.Info("👋 DevTogether Backend exited")
}

// setupLogging настраивает логирование в зависимости от окружения
func setupLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		gin.SetMode(gin.DebugMode)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// printStartupInfo выводит информацию о запуске сервера
func printStartupInfo(cfg *config.Config) {
	logrus.Info("================================================================================")
	logrus.Info("🤝 DevTogether Backend Server")
	logrus.Infof("📌 Version: %s | Build: %s | Commit: %s", appVersion, buildTime, gitCommit)
	logrus.Infof("🌍 Environment: %s", cfg.Environment)
	logrus.Info("🔧 Configuration:")
	logrus.Infof("   • Host: %s", cfg.Host)
	logrus.Infof("   • Port: %s", cfg.Port)
	logrus.Infof("   • Database: %s", cfg.DatabaseName)
	logrus.Infof("   • CORS Origins: %v", cfg.AllowedOrigins)
	if cfg.RateLimitEnabled {
		logrus.Infof("   • Rate Limit: %d requests per %ds", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if cfg.AssistantAPIURL != "" {
		logrus.Infof("   • Assistant: %s (%s)", cfg.AssistantAPIURL, cfg.AssistantModel)
	}
	logrus.Info("================================================================================")
}

// getCollections возвращает все коллекции MongoDB
func getCollections(db *mongo.Database) map[string]*mongo.Collection {
	return map[string]*mongo.Collection{
		"users":                db.Collection("users"),
		"projects":             db.Collection("projects"),
		"project_applications": db.Collection("project_applications"),
		"project_submissions":  db.Collection("project_submissions"),
		"project_comments":     db.Collection("project_comments"),
		"messages":             db.Collection("messages"),
		"notifications":        db.Collection("notifications"),
		"notification_events":  db.Collection("notification_events"),
	}
}

type routeHandlers struct {
	auth         *handlers.AuthHandler
	users        *handlers.UsersHandler
	project      *handlers.ProjectHandler
	application  *handlers.ApplicationHandler
	submission   *handlers.SubmissionHandler
	message      *handlers.MessageHandler
	comment      *handlers.CommentHandler
	notification *handlers.NotificationHandler
	assistant    *handlers.AssistantHandler
	websocket    *handlers.WebSocketHandler
}

// setupRouter настраивает все маршруты
func setupRouter(cfg *config.Config, hub *handlers.Hub, jwtManager *auth.JWTManager, h routeHandlers) *gin.Engine {
	router := gin.New()

	// Глобальные middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	// CORS настройки для поддержки frontend
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	if cfg.RateLimitEnabled {
		router.Use(middleware.RateLimit(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindow)*time.Second))
	}

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(10 << 20)) // 10 MB

	// Статические файлы (логотипы организаций)
	router.Static("/uploads", cfg.UploadDir)

	// WebSocket endpoint, авторизация по токену в query
	router.GET("/ws", h.websocket.HandleWebSocket)

	setupHealthRoutes(router, hub)

	v1 := router.Group("/api/v1")
	{
		setupPublicRoutes(v1, h)
		setupProtectedRoutes(v1, h, jwtManager)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":  "Method not allowed",
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
	})

	return router
}

// setupHealthRoutes настраивает маршруты health check
func setupHealthRoutes(router *gin.Engine, hub *handlers.Hub) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(serverStartTime).String(),
			"version":   appVersion,
			"build": gin.H{
				"time":   buildTime,
				"commit": gitCommit,
			},
			"stats": gin.H{
				"websocket_connections": hub.GetConnectionsCount(),
			},
		})
	})

	// Readiness/liveness для Kubernetes
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ready": true})
	})
	router.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})
}

// setupPublicRoutes настраивает публичные маршруты
func setupPublicRoutes(v1 *gin.RouterGroup, h routeHandlers) {
	// Авторизация и регистрация
	v1.POST("/auth/register", h.auth.Register)
	v1.POST("/auth/login", h.auth.Login)
	v1.POST("/auth/refresh", h.auth.RefreshToken)

	// Публичный каталог проектов
	v1.GET("/projects", h.project.GetProjects)
	v1.GET("/projects/:id", h.project.GetProject)
	v1.GET("/projects/:id/comments", h.comment.GetProjectComments)

	// Публичные профили
	v1.GET("/users/:id", h.users.GetUserByID)
	v1.GET("/developers", h.users.GetDevelopers)
}

// setupProtectedRoutes настраивает защищенные маршруты
func setupProtectedRoutes(v1 *gin.RouterGroup, h routeHandlers, jwtManager *auth.JWTManager) {
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))

	// Профиль пользователя
	protected.GET("/users/me", h.users.GetProfile)
	protected.PUT("/users/me", h.users.UpdateProfile)
	protected.PUT("/users/me/password", h.users.ChangePassword)

	// Логотип организации
	protected.POST("/users/me/logo",
		middleware.RequireAnyRole(string(models.RoleOrganization)),
		h.users.UploadLogo)

	// Проекты: управление доступно организациям
	protected.POST("/projects",
		middleware.RequirePermission(string(models.PermissionCreateProject)),
		h.project.CreateProject)
	protected.PUT("/projects/:id",
		middleware.RequireAnyRole(string(models.RoleOrganization)),
		h.project.UpdateProject)
	protected.DELETE("/projects/:id",
		middleware.RequireAnyRole(string(models.RoleOrganization)),
		h.project.DeleteProject)
	protected.PUT("/projects/:id/status",
		middleware.RequireAnyRole(string(models.RoleOrganization)),
		h.project.UpdateProjectStatus)
	protected.GET("/projects/my", h.project.GetMyProjects)

	// Заявки
	protected.POST("/projects/:id/applications",
		middleware.RequirePermission(string(models.PermissionApplyToProject)),
		h.application.Apply)
	protected.GET("/projects/:id/applications",
		middleware.RequireAnyRole(string(models.RoleOrganization)),
		h.application.GetProjectApplications)
	protected.PUT("/applications/:id/review",
		middleware.RequirePermission(string(models.PermissionReviewApplication)),
		h.application.ReviewApplication)
	protected.PUT("/applications/:id/withdraw", h.application.WithdrawApplication)
	protected.GET("/applications/my", h.application.GetMyApplications)

	// Сдача работы и рецензия
	protected.POST("/projects/:id/submissions",
		middleware.RequirePermission(string(models.PermissionSubmitWork)),
		h.submission.CreateSubmission)
	protected.GET("/projects/:id/submissions", h.submission.GetProjectSubmissions)
	protected.PUT("/submissions/:id/review",
		middleware.RequirePermission(string(models.PermissionReviewSubmission)),
		h.submission.ReviewSubmission)

	// Чат проекта
	protected.POST("/projects/:id/messages", h.message.SendMessage)
	protected.GET("/projects/:id/messages", h.message.GetProjectMessages)
	protected.PUT("/projects/:id/messages/read", h.message.MarkMessagesRead)
	protected.GET("/messages/unread-count", h.message.GetUnreadCount)

	// Комментарии append-only, удаления нет
	protected.POST("/projects/:id/comments", h.comment.CreateComment)

	// Уведомления
	protected.GET("/notifications", h.notification.GetNotifications)
	protected.GET("/notifications/unread-count", h.notification.GetUnreadCount)
	protected.PUT("/notifications/:id/read", h.notification.MarkAsRead)
	protected.PUT("/notifications/read-all", h.notification.MarkAllAsRead)
	protected.DELETE("/notifications/:id", h.notification.DeleteNotification)
	protected.DELETE("/notifications", h.notification.ClearAll)

	// Ассистент создания проекта, доступен организациям
	assistant := protected.Group("/assistant")
	assistant.Use(middleware.RequireAnyRole(string(models.RoleOrganization)))
	{
		assistant.POST("/chat", h.assistant.Chat)
		assistant.POST("/finalize", h.assistant.Finalize)
		assistant.GET("/technologies", h.assistant.GetAllowedTechnologies)
	}
}
