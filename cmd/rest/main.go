package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/bootstrap"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/config"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/server"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/tracer"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// 4. Start Background Services
	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(bgCtx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	go func() {
		log.Println("Background: Starting Retry Scheduler...")
		container.RetryScheduler.Run(bgCtx)
	}()
	go func() {
		log.Println("Background: Starting Consistency Reconciler...")
		container.ReconcilerService.Run(bgCtx, cfg.Indexing.ReconcileInterval)
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// 6. Graceful Shutdown: stop intake first, then drain in-flight
	// indexing runs before letting the process exit.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	// Stop intake first, then wait for in-flight runs to land before
	// canceling background work and tearing down connections.
	if err := container.ConsumerService.Stop(); err != nil {
		log.Printf("Consumer stop error: %v", err)
	}
	if container.ConsumerService.Drain(cfg.Indexing.ShutdownTimeout) {
		log.Println("✅ All in-flight documents drained")
	} else {
		log.Println("⚠️ Shutdown timeout reached with documents still in flight")
	}
	cancelBg()

	if err := container.ConsumerService.Close(); err != nil {
		log.Printf("Consumer close error: %v", err)
	}
	if err := container.Publisher.Close(); err != nil {
		log.Printf("Publisher close error: %v", err)
	}
}
