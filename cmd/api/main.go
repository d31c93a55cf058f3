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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Hazratqul21/alif-24-sub000/internal/config"
	"github.com/Hazratqul21/alif-24-sub000/internal/handler"
	"github.com/Hazratqul21/alif-24-sub000/internal/middleware"
	pgRepo "github.com/Hazratqul21/alif-24-sub000/internal/repository/postgres"
	redisRepo "github.com/Hazratqul21/alif-24-sub000/internal/repository/redis"
	"github.com/Hazratqul21/alif-24-sub000/internal/service"
	ws "github.com/Hazratqul21/alif-24-sub000/internal/websocket"
	"github.com/Hazratqul21/alif-24-sub000/pkg/auth"
	"github.com/Hazratqul21/alif-24-sub000/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	participantRepo := pgRepo.NewParticipantRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)
	coinSink := pgRepo.NewCoinSink(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT-сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем websocket-хаб и сервисы
	hub := ws.NewHub()

	codeGenerator := service.NewJoinCodeGenerator(quizRepo, cacheRepo, cfg.Quiz.JoinCodeAttempts)
	settlementService := service.NewSettlementService(participantRepo, coinSink, cacheRepo, hub)
	quizService := service.NewQuizService(quizRepo, questionRepo, participantRepo, answerRepo, codeGenerator, settlementService, hub, cfg.Quiz.MaxParticipants)
	playerService := service.NewPlayerService(quizRepo, questionRepo, participantRepo, answerRepo, hub)

	// Инициализируем обработчики
	quizHandler := handler.NewQuizHandler(quizService)
	playerHandler := handler.NewPlayerHandler(playerService)
	wsHandler := handler.NewWSHandler(hub, jwtService, quizRepo, participantRepo)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	isProduction := gin.Mode() == gin.ReleaseMode

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

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://alif24.tj", "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Websocket-подключения аутентифицируются токеном в query
	router.GET("/ws", wsHandler.Connect)

	// Настраиваем маршруты API
	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		quizzes := api.Group("/quizzes")
		{
			// Подключение игрока идет по коду, без идентификатора викторины
			quizzes.POST("/join", playerHandler.Join)

			// Операции ведущего
			host := quizzes.Group("", authMiddleware.HostOnly())
			{
				host.POST("", quizHandler.CreateQuiz)
				host.GET("", quizHandler.ListQuizzes)
			}

			byID := quizzes.Group("/:id", middleware.ExtractIDParam("id", "quizID"))
			{
				hostByID := byID.Group("", authMiddleware.HostOnly())
				{
					hostByID.GET("", quizHandler.GetQuiz)
					hostByID.DELETE("", quizHandler.DeleteQuiz)
					hostByID.POST("/questions", quizHandler.AddQuestions)
					hostByID.POST("/lobby", quizHandler.OpenLobby)
					hostByID.GET("/lobby", quizHandler.LobbyStatus)
					hostByID.POST("/start", quizHandler.StartQuiz)
					hostByID.GET("/current", quizHandler.CurrentQuestion)
					hostByID.POST("/next", quizHandler.NextQuestion)
					hostByID.GET("/questions/:qid/stats", middleware.ExtractIDParam("qid", "questionID"), quizHandler.QuestionResults)
					hostByID.GET("/leaderboard", quizHandler.Leaderboard)
					hostByID.POST("/end", quizHandler.EndQuiz)
					hostByID.POST("/cancel", quizHandler.CancelQuiz)
					hostByID.GET("/export", quizHandler.ExportLeaderboard)
				}

				// Операции игрока внутри викторины
				player := byID.Group("/player")
				{
					player.GET("/current", playerHandler.CurrentQuestion)
					player.POST("/answer", playerHandler.SubmitAnswer)
					player.GET("/result", playerHandler.Result)
				}
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
