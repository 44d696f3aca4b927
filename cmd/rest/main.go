package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"productivity-pal-be/internal/bootstrap"
	"productivity-pal-be/internal/config"
	"productivity-pal-be/internal/server"
	"productivity-pal-be/internal/tracer"
	"productivity-pal-be/internal/tracker"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// Tracer is a no-op unless OTEL_ENABLED=true
	shutdownTracer := tracer.Init(context.Background(), cfg)
	defer shutdownTracer(context.Background())

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 3. Start the tracker loop and the browser event consumer
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container.Engine.Start(ctx)
	go container.Engine.Run(context.Background())

	if err := container.IngestService.Consume(ctx, container.Engine); err != nil {
		log.Panicf("Unable to start browser event consumer: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	// 5. Suspend on signal: stop taking requests, then tear the tracker down
	<-ctx.Done()
	log.Println("Shutting down...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	container.Engine.Post(tracker.Suspend{})
	select {
	case <-container.Engine.Done():
	case <-time.After(10 * time.Second):
		log.Println("Tracker did not stop in time")
	}
}
