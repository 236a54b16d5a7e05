package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rajanagg1105/testmaxx-sub000/internal/config"
	"github.com/rajanagg1105/testmaxx-sub000/internal/handler"
	"github.com/rajanagg1105/testmaxx-sub000/internal/middleware"
	pgrepo "github.com/rajanagg1105/testmaxx-sub000/internal/repository/postgres"
	redisrepo "github.com/rajanagg1105/testmaxx-sub000/internal/repository/redis"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service"
	"github.com/rajanagg1105/testmaxx-sub000/internal/websocket"
	"github.com/rajanagg1105/testmaxx-sub000/pkg/auth"
	"github.com/rajanagg1105/testmaxx-sub000/pkg/database"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "путь к файлу конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	isProduction := os.Getenv("GIN_MODE") == "release"

	// --- Инфраструктура ---

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("Ошибка подключения к PostgreSQL: %v", err)
	}
	if err := database.MigrateDB(db); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer redisClient.Close()

	// --- Репозитории ---

	userRepo := pgrepo.NewUserRepo(db)
	testRepo := pgrepo.NewTestRepo(db)
	questionRepo := pgrepo.NewQuestionRepo(db)
	attemptRepo := pgrepo.NewAttemptRepo(db)
	materialRepo := pgrepo.NewMaterialRepo(db)
	videoRepo := pgrepo.NewVideoRepo(db)

	cacheRepo, err := redisrepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Fatalf("Ошибка создания кеш-репозитория: %v", err)
	}

	// --- Сервисы ---

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cfg.JWT.WSTicketExpirySec)
	if err != nil {
		log.Fatalf("Ошибка создания JWT-сервиса: %v", err)
	}

	authService, err := service.NewAuthService(userRepo, jwtService)
	if err != nil {
		log.Fatalf("Ошибка создания сервиса аутентификации: %v", err)
	}
	userService := service.NewUserService(userRepo)
	testService := service.NewTestService(testRepo, questionRepo, cacheRepo)
	attemptService := service.NewAttemptService(attemptRepo, testRepo, userRepo)
	materialService := service.NewMaterialService(materialRepo, videoRepo)

	var emailService service.EmailService
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Fatalf("Ошибка создания email-сервиса: %v", err)
		}
	} else {
		emailService = &service.NoopEmailService{}
	}

	hub := websocket.NewHub()
	wsManager := websocket.NewManager(hub)

	sessionManager := service.NewSessionManager(
		testRepo, attemptRepo, userRepo, cacheRepo,
		wsManager, emailService, nil,
	)

	// --- Обработчики и middleware ---

	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	authHandler := handler.NewAuthHandler(authService, userService, jwtService)
	testHandler := handler.NewTestHandler(testService, userService)
	sessionHandler := handler.NewSessionHandler(sessionManager)
	attemptHandler := handler.NewAttemptHandler(attemptService)
	materialHandler := handler.NewMaterialHandler(materialService)
	wsHandler := handler.NewWSHandler(wsManager, jwtService, sessionManager, cfg.Server.AllowedOrigins)

	// --- Роутер ---

	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(rateLimiter.LimitByIP(middleware.DefaultAPIRateLimitConfig()))
	{
		// Публичные маршруты аутентификации со строгим лимитом
		authGroup := api.Group("/auth")
		{
			strict := rateLimiter.LimitByIP(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strict, authHandler.Register)
			authGroup.POST("/login", strict, authHandler.Login)
			authGroup.POST("/ws-ticket", authMiddleware.RequireAuth(), authHandler.CreateWSTicket)
		}

		// Маршруты для аутентифицированных пользователей
		authed := api.Group("/")
		authed.Use(authMiddleware.RequireAuth())
		{
			authed.GET("/users/me", authHandler.Me)
			authed.PUT("/users/me", authHandler.UpdateProfile)

			authed.GET("/tests", testHandler.ListActiveTests)
			authed.GET("/tests/:id", middleware.ExtractUintParam("id", "testID"), testHandler.GetTest)

			// Сессия прохождения теста
			sessions := authed.Group("/sessions")
			sessions.Use(rateLimiter.Limit(middleware.SessionRateLimitConfig()))
			{
				sessions.POST("", sessionHandler.Start)
				sessions.GET("/current", sessionHandler.Current)
				sessions.GET("/current/questions", sessionHandler.Questions)
				sessions.POST("/current/answer", sessionHandler.Answer)
				sessions.POST("/current/navigate", sessionHandler.Navigate)
				sessions.POST("/current/flag", sessionHandler.ToggleFlag)
				sessions.POST("/current/submit", sessionHandler.RequestSubmit)
				sessions.POST("/current/submit/cancel", sessionHandler.CancelSubmit)
				sessions.POST("/current/submit/confirm", sessionHandler.ConfirmSubmit)
				sessions.DELETE("/current", sessionHandler.Abandon)
			}

			authed.GET("/attempts", attemptHandler.MyAttempts)
			authed.GET("/attempts/:id", middleware.ExtractUintParam("id", "attemptID"), attemptHandler.GetAttempt)

			authed.GET("/materials", materialHandler.ListMaterials)
			authed.GET("/materials/:id", middleware.ExtractUintParam("id", "materialID"), materialHandler.GetMaterial)
			authed.GET("/videos", materialHandler.ListVideos)
			authed.GET("/videos/:id", middleware.ExtractUintParam("id", "videoID"), materialHandler.GetVideo)
		}

		// Административные маршруты
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/students", authHandler.ListStudents)

			admin.POST("/tests", testHandler.CreateTest)
			admin.GET("/tests", testHandler.ListTests)

			adminTest := admin.Group("/tests/:id", middleware.ExtractUintParam("id", "testID"))
			{
				adminTest.GET("", testHandler.GetTestWithAnswers)
				adminTest.PUT("", testHandler.UpdateTest)
				adminTest.DELETE("", testHandler.DeleteTest)
				adminTest.PATCH("/active", testHandler.SetActive)
				adminTest.POST("/questions", testHandler.AddQuestions)
				adminTest.GET("/attempts", attemptHandler.TestAttempts)
				adminTest.GET("/attempts/export", attemptHandler.ExportAttempts)
			}

			adminQuestion := admin.Group("/questions/:id", middleware.ExtractUintParam("id", "questionID"))
			{
				adminQuestion.PUT("", testHandler.UpdateQuestion)
				adminQuestion.DELETE("", testHandler.DeleteQuestion)
			}

			admin.POST("/materials", materialHandler.CreateMaterial)
			adminMaterial := admin.Group("/materials/:id", middleware.ExtractUintParam("id", "materialID"))
			{
				adminMaterial.PUT("", materialHandler.UpdateMaterial)
				adminMaterial.DELETE("", materialHandler.DeleteMaterial)
			}

			admin.POST("/videos", materialHandler.CreateVideo)
			adminVideo := admin.Group("/videos/:id", middleware.ExtractUintParam("id", "videoID"))
			{
				adminVideo.PUT("", materialHandler.UpdateVideo)
				adminVideo.DELETE("", materialHandler.DeleteVideo)
			}
		}
	}

	// WebSocket: аутентификация по тикету в query, см. WSHandler
	router.GET("/ws", wsHandler.HandleConnection)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Сначала глушим живые сессии и соединения, потом HTTP-сервер
	sessionManager.Shutdown()
	hub.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
