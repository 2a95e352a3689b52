package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"match-go/internal/config"
	"match-go/internal/handlers/apiserver"
	appKafka "match-go/internal/kafka"
	"match-go/internal/matchtypes"
	"match-go/internal/middleware"
	appRedis "match-go/internal/redis"
	"match-go/internal/services"
	"match-go/internal/storage"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("API server configuration loaded.")

	// 2. Initialize database
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("Failed to migrate database tables: %v", err)
	}
	log.Println("API server database ready.")

	// 3. Initialize Redis client and token blacklist
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	tokenBlacklist := appRedis.NewRedisTokenBlacklist(redisClient)
	log.Println("Connected to Redis.")

	// 4. Initialize repositories
	userRepo := storage.NewGormUserRepository(db)
	interestRepo := storage.NewGormInterestRepository(db)
	msgRepo := storage.NewGormMessageRepository(db)

	// 5. Initialize Kafka producer for notification events
	kfkProducer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("Failed to create Kafka producer: %v", err)
	}
	defer kfkProducer.Close()
	log.Println("Kafka producer initialized (API server).")

	// 6. Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	interestService := services.NewInterestService(userRepo, interestRepo, kfkProducer, cfg.Kafka)
	messageService := services.NewMessageService(userRepo, msgRepo, kfkProducer, cfg.Kafka)

	// 6.1 Avatar storage
	var storageService matchtypes.StorageService
	storageBaseURL := "/uploads"
	if cfg.Storage.Type == "local" {
		storageService, err = storage.NewLocalStorageService(cfg.Storage, storageBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
	} else {
		log.Fatalf("Unsupported storage type: %s", cfg.Storage.Type)
	}

	// 7. Initialize handlers
	authHandler := apiserver.NewAuthHandler(authService, tokenBlacklist)
	userHandler := apiserver.NewUserHandler(userService)
	interestHandler := apiserver.NewInterestHandler(interestService)
	chatHandler := apiserver.NewChatHandler(messageService)
	uploadHandler := apiserver.NewUploadHandler(storageService, userService, cfg.Storage)

	// 8. Routes
	r := mux.NewRouter()

	// 8.1 Public auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/signup", authHandler.SignupHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.LoginHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/token/refresh", authHandler.RefreshHandler).Methods(http.MethodPost)

	// 8.2 Authenticated API routes
	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	apiRouter.HandleFunc("/auth/logout", authHandler.LogoutHandler).Methods(http.MethodPost)

	apiRouter.HandleFunc("/users", userHandler.ListUsersHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{userID:[0-9]+}", userHandler.GetUserProfileHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me/avatar", uploadHandler.UploadAvatarHandler).Methods(http.MethodPost)

	interestRouter := apiRouter.PathPrefix("/interests").Subrouter()
	interestRouter.HandleFunc("", interestHandler.SendInterestHandler).Methods(http.MethodPost)
	interestRouter.HandleFunc("/received", interestHandler.ListReceivedPendingHandler).Methods(http.MethodGet)
	interestRouter.HandleFunc("/accepted", interestHandler.ListAcceptedConnectionsHandler).Methods(http.MethodGet)
	interestRouter.HandleFunc("/{interestID:[0-9]+}/respond", interestHandler.RespondToInterestHandler).Methods(http.MethodPatch)

	apiRouter.HandleFunc("/chat/{username}", chatHandler.ListConversationHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/chat/{username}", chatHandler.SendMessageHandler).Methods(http.MethodPost)

	// 8.3 Static serving of uploaded avatars
	if cfg.Storage.Type == "local" {
		staticPath := strings.TrimSuffix(storageBaseURL, "/") + "/"
		localDir := http.Dir(cfg.Storage.LocalPath)
		r.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(localDir)))
		log.Printf("Serving uploaded files at %s -> %s", staticPath, cfg.Storage.LocalPath)
	}

	// 9. CORS wrapper from configuration
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	// 10. Start HTTP server with graceful shutdown
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	}

	go func() {
		log.Printf("API server listening on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, stopping API server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("API server forced to shut down: %v", err)
	}

	log.Println("API server stopped.")
}
