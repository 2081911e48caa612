package main

import (
	"context"
	"log"

	"github.com/Renal37/royal-threads-orders/internal/logger"
	"github.com/Renal37/royal-threads-orders/internal/observer"
	"github.com/Renal37/royal-threads-orders/internal/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	config := NewConfig()

	if err := logger.Initialize(config.logLevel, config.env); err != nil {
		log.Fatalf("Logger wasn't initialized due to %s", err)
	}

	utils.HandleTerminationProcess(func() {
		cancel()
	})

	log.Printf("Watching orders on %s\n", config.endpoint)

	client := observer.NewClient(config.endpoint, observer.BeeepAlerter{}, config.reconcileInterval)

	if err := client.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Observer was stopped due to %s", err)
	}
}
