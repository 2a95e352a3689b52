package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"match-go/internal/config"
	"match-go/internal/handlers/notifyserver"
	appKafka "match-go/internal/kafka"
	appRedis "match-go/internal/redis"
	"match-go/internal/websocket"

	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("Notify server configuration loaded.")

	// 2. Redis token blacklist, shared with the API server for logout
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

	// 3. WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	wsHandler := notifyserver.NewWebSocketHandler(hub, cfg, tokenBlacklist)

	// 4. Kafka consumers for interest and message events
	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()

	interestConsumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("Failed to create interest events consumer: %v", err)
	}
	defer interestConsumer.Close()

	messageConsumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("Failed to create message events consumer: %v", err)
	}
	defer messageConsumer.Close()

	go func() {
		topics := []string{cfg.Kafka.InterestEventsTopic}
		if err := interestConsumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, wsHandler.HandleInterestEvent); err != nil {
			log.Printf("Interest events consumer stopped with error: %v", err)
		}
	}()

	go func() {
		topics := []string{cfg.Kafka.MessageEventsTopic}
		if err := messageConsumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup+"-messages", wsHandler.HandleMessageEvent); err != nil {
			log.Printf("Message events consumer stopped with error: %v", err)
		}
	}()

	// 5. HTTP server exposing the WebSocket endpoint
	r := mux.NewRouter()
	r.HandleFunc(cfg.Server.WebSocketPath, wsHandler.ServeWsHandler).Methods(http.MethodGet)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Printf("Notify server listening on %s (WebSocket path: %s)", serverAddr, cfg.Server.WebSocketPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Notify server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, stopping notify server...")

	cancelConsumers()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Notify server forced to shut down: %v", err)
	}

	log.Println("Notify server stopped.")
}
