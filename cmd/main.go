package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"shop-lab/auth"
	"shop-lab/observability"
	"shop-lab/repositories"
	"shop-lab/runtime"
	"shop-lab/runtime/workers"
	"shop-lab/services"
	"shop-lab/storage"
	"shop-lab/transport"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before exit.
func run() error {
	// 1. Configuration & Logger
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Databases (BadgerDB + Bluge catalog index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing catalog index...")
		_ = blugeWriter.Close()
	}()

	// 3. Storage & Repositories
	store := storage.New(db, log, config.CommitRetries)
	userRepository := repositories.NewUserRepository(db)
	productRepository := repositories.NewProductRepository(db)
	orderRepository := repositories.NewOrderRepository(db)
	productIndex := repositories.NewProductIndex(blugeWriter)

	// 4. Presence engine
	registry := runtime.NewRegistry()
	broadcaster := workers.NewBroadcaster(log, registry,
		config.BroadcastBufferSize, config.DeliveryTimeout)

	tokens := auth.NewTokenManager([]byte(config.JWTSecret), config.AuthTokenDuration)
	authenticator := auth.NewConnectionAuthenticator(tokens, userRepository, log)
	lifecycle := runtime.NewConnectionLifecycle(log, authenticator, registry,
		broadcaster, config.ConnectionBufferSize)
	feed := transport.NewFeedServer(log, lifecycle,
		fmt.Sprintf("%s:%d", config.Host, config.FeedPort))

	// 5. Services, handed to the API layer mounted on the gRPC server
	container := services.Container{
		Orders: services.NewOrderService(store, productRepository,
			orderRepository, broadcaster, log),
		Auth:     services.NewAuthService(userRepository, tokens),
		Products: services.NewProductService(productRepository, productIndex, log),
	}

	sampler, err := observability.NewStatsSampler()
	if err != nil {
		return fmt.Errorf("stats sampler init failed: %w", err)
	}
	reporter := workers.NewReporter(log, sampler, registry, config.StatsInterval)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Supervised workers: broadcaster, stats reporter, realtime feed
	sup := workers.NewSupervisor(log)
	sup.Add(broadcaster, reporter, feed)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 8. API server: auth interceptor mounted for the generated API
	// stubs the platform registers; health endpoint for probes.
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	api := transport.NewAPIServer(tokens, container)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting API server", "address", address)
		if err := api.Serve(listener); err != nil && err != grpc.ErrServerStopped {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	api.GracefulStop()
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
