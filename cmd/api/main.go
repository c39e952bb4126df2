package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/recruit-notes/internal/config"
	"github.com/recruit-notes/internal/infrastructure/awscfg"
	"github.com/recruit-notes/internal/infrastructure/cache"
	"github.com/recruit-notes/internal/infrastructure/dynamo"
	"github.com/recruit-notes/internal/infrastructure/gemini"
	jwtinfra "github.com/recruit-notes/internal/infrastructure/jwt"
	"github.com/recruit-notes/internal/infrastructure/push"
	s3infra "github.com/recruit-notes/internal/infrastructure/s3"
	"github.com/recruit-notes/internal/infrastructure/sns"
	"github.com/recruit-notes/internal/pkg/realtime"
	transporthttp "github.com/recruit-notes/internal/transport/http"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiry)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	deviceRepo := dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices)
	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		CandidateRepo:    dynamo.NewCandidateRepo(dynamoClient, cfg.DynamoTables.Candidates),
		NoteRepo:         dynamo.NewNoteRepo(dynamoClient, cfg.DynamoTables.Notes),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		DeviceRepo:       deviceRepo,
		Resumes:          s3infra.NewStore(s3infra.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.S3BucketName),
		JWTProvider:      jwtProvider,
	}

	// Cache and live events. Without Redis the process keeps its own cache
	// and events stay on this instance.
	hub := realtime.NewHub()
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("WARN: redis not reachable at %s, cache operations will fail open: %v", cfg.Redis.Addr, err)
		}
		bridge := realtime.NewBridge(rdb, cfg.Redis.Channel, hub)
		go bridge.Run(ctx)
		deps.Cache = cache.NewRedis(rdb)
		deps.Broker = bridge
	} else {
		log.Println("WARN: redis disabled, using in-process cache")
		deps.Cache = cache.NewMemory()
		deps.Broker = hub
	}

	if cfg.SNSTopicARN != "" {
		deps.Events = sns.NewPublisher(sns.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.SNSTopicARN)
	} else {
		log.Println("WARN: SNS_TOPIC_ARN not set, domain events are not published")
	}

	if cfg.FirebaseCredentialsPath != "" {
		if fcm, err := push.NewFCM(ctx, cfg.FirebaseCredentialsPath, deviceRepo); err == nil {
			deps.Push = fcm
		} else {
			log.Printf("WARN: push disabled: %v", err)
		}
	}

	if cfg.GeminiAPIKey != "" {
		if gen, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err == nil {
			deps.Generator = gen
		} else {
			log.Printf("WARN: AI summaries disabled: %v", err)
		}
	} else {
		log.Println("WARN: GEMINI_API_KEY not set, AI summaries return the fallback")
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		// Open event streams end when ctx is cancelled at shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
