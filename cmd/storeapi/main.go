package main

import (
	"context"
	"log"

	"github.com/Renal37/royal-threads-orders/internal/database"
	router "github.com/Renal37/royal-threads-orders/internal/http"
	"github.com/Renal37/royal-threads-orders/internal/logger"
	"github.com/Renal37/royal-threads-orders/internal/services"
	"github.com/Renal37/royal-threads-orders/internal/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	config := NewConfig()

	if err := logger.Initialize(config.logLevel, config.env); err != nil {
		log.Fatalf("Logger wasn't initialized due to %s", err)
	}

	db, err := database.New(ctx, config.dsn)

	if err != nil {
		log.Fatalf("Database wasn't initialized due to %s", err)
	}

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Migrations weren't run due to %s", err)
	}

	feedService := services.NewFeedService()
	go feedService.Run(db.StartOrdersFeed(ctx))

	utils.HandleTerminationProcess(func() {
		cancel()
		db.Close()
	})

	log.Printf("Running server on %s\n", config.endpoint)

	router.New(
		router.Config{Endpoint: config.endpoint},
		services.NewOrderService(db),
		services.NewPaystackService(config.paystackEndpoint, config.paystackSecret),
		feedService,
	).Run()
}
