package main

import (
	"context"
	"log"

	"text-annotation-be/internal/bootstrap"
	"text-annotation-be/internal/config"
	"text-annotation-be/internal/server"
	"text-annotation-be/internal/tracer"
	"text-annotation-be/pkg/database"
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

	// 4. Start Background Services
	if err := container.RunnerService.Consume(context.Background()); err != nil {
		log.Printf("Background Runner Error: %v", err)
	}
	if container.ListenerService != nil {
		if err := container.ListenerService.Start(context.Background()); err != nil {
			log.Printf("Background Listener Error: %v", err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
