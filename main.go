package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"membersCardAPI/handlers"
	"membersCardAPI/internal/config"
	"membersCardAPI/internal/line"
	"membersCardAPI/internal/logger"
	"membersCardAPI/internal/storage"
	"membersCardAPI/middleware"
	"membersCardAPI/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	zapLogger := logger.New(cfg.LoggerLevel)
	defer zapLogger.Sync()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		zapLogger.Fatal("unable to load AWS SDK config", zap.Error(err))
	}
	db := dynamodb.NewFromConfig(awsCfg)

	members := storage.NewMemberStore(db, cfg.MembersTable)
	products := storage.NewProductStore(db, cfg.ProductsTable)
	tokens := storage.NewTokenStore(db, cfg.TokensTable)
	lineClient := line.NewClient()

	service := services.NewMembersCardService(
		members, products, tokens, lineClient,
		cfg.OAChannelID, cfg.LiffID, zapLogger)
	handler := handlers.NewMembersCardHandler(service, lineClient, cfg.LiffChannelID, zapLogger)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler.HandleLambda)
		return
	}

	runServer(cfg, zapLogger, handler)
}

// runServer is the local development harness: same handler as the Lambda,
// wrapped in CORS, rate limiting and Prometheus metrics.
func runServer(cfg *config.Config, zapLogger *zap.Logger, handler *handlers.MembersCardHandler) {
	middleware.InitPrometheus()
	go middleware.CleanupVisitors()

	r := mux.NewRouter()
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "members-card-api"}`))
	}).Methods("GET")

	r.HandleFunc("/api/v1/members-card", handler.HandleMembersCard).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zapLogger.Info("starting server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("error starting server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown error", zap.Error(err))
	}
	zapLogger.Info("server shutdown complete")
}
