package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mathfrancisco/phishing-detector/internal/core"
	"github.com/mathfrancisco/phishing-detector/internal/di"
	"github.com/mathfrancisco/phishing-detector/internal/factory"
	"github.com/mathfrancisco/phishing-detector/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	service *core.ClassifierService,
	storeFactory *factory.StoreFactory,
	emailFilter ports.EmailFilter,
	artifactStore core.ArtifactStore,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	// Load the model artifact before accepting any mail
	version := storeFactory.ArtifactVersion()
	if err := service.LoadArtifact(context.Background(), version); err != nil {
		logger.Fatal("Failed to load model artifact",
			zap.Error(err),
			zap.String("version", version))
		return err
	}

	// Start the filter
	if err := emailFilter.Start(); err != nil {
		logger.Fatal("Failed to start filter", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the filter
	if err := emailFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := artifactStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close artifact store", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
