package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/fr4ncode/order-system/internal/handlers"
	"github.com/fr4ncode/order-system/internal/platform/auth"
	"github.com/fr4ncode/order-system/internal/platform/config"
	"github.com/fr4ncode/order-system/internal/platform/events"
	pfirestore "github.com/fr4ncode/order-system/internal/platform/firestore"
	"github.com/fr4ncode/order-system/internal/platform/observability"
	platformstorage "github.com/fr4ncode/order-system/internal/platform/storage"
	firestoreRepo "github.com/fr4ncode/order-system/internal/repositories/firestore"
	"github.com/fr4ncode/order-system/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("configuration is incomplete", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		if err := firestoreProvider.Close(); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	storageClient, err := cloudstorage.NewClient(ctx)
	if err != nil {
		logger.Fatal("failed to initialise storage client", zap.Error(err))
	}
	defer func() {
		if err := storageClient.Close(); err != nil {
			logger.Warn("storage close error", zap.Error(err))
		}
	}()

	uploader, err := platformstorage.NewUploader(storageClient, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialise image uploader", zap.Error(err))
	}

	publisher, pubsubClient, err := buildEventPublisher(ctx, cfg.PubSub)
	if err != nil {
		logger.Fatal("failed to initialise event publisher", zap.Error(err))
	}
	if pubsubClient != nil {
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier,
		auth.WithGuestCheckout(cfg.Features.GuestCheckout),
	)

	categoryRepo, err := firestoreRepo.NewCategoryRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise category repository", zap.Error(err))
	}
	productRepo, err := firestoreRepo.NewProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}
	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	imageRepo, err := firestoreRepo.NewImageRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise image repository", zap.Error(err))
	}
	unitOfWork, err := firestoreRepo.NewUnitOfWork(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise unit of work", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:     orderRepo,
		Products:   productRepo,
		UnitOfWork: unitOfWork,
		Events:     publisher,
		Clock:      time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products:   productRepo,
		Categories: categoryRepo,
		UnitOfWork: unitOfWork,
		Clock:      time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	imageService, err := services.NewImageService(services.ImageServiceDeps{
		Products: productRepo,
		Images:   imageRepo,
		Store:    uploader,
		Clock:    time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise image service", zap.Error(err))
	}

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("firestore", firestoreReadinessCheck(firestoreClient)),
	)

	catalogHandlers := handlers.NewCatalogHandlers(catalogService, imageService)
	orderHandlers := handlers.NewOrderHandlers(authenticator, orderService)
	adminHandlers := handlers.NewAdminHandlers(authenticator, catalogService, imageService)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("order api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildEventPublisher returns a no-op publisher when no topics are configured,
// so local development needs no Pub/Sub emulator.
func buildEventPublisher(ctx context.Context, cfg config.PubSubConfig) (events.Publisher, *pubsub.Client, error) {
	orderTopicName := strings.TrimSpace(cfg.OrderEventTopic)
	stockTopicName := strings.TrimSpace(cfg.StockEventTopic)
	if orderTopicName == "" && stockTopicName == "" {
		return events.NopPublisher{}, nil, nil
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub client: %w", err)
	}

	var orderTopic, stockTopic *pubsub.Topic
	if orderTopicName != "" {
		orderTopic = client.Topic(orderTopicName)
	}
	if stockTopicName != "" {
		stockTopic = client.Topic(stockTopicName)
	}

	publisher, err := events.NewPubSubPublisher(orderTopic, stockTopic)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return publisher, client, nil
}

func firestoreReadinessCheck(client *firestore.Client) handlers.ReadinessCheck {
	return func(ctx context.Context) error {
		iter := client.Collections(ctx)
		_, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		return err
	}
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}
