package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	endpoint          string
	logLevel          string
	env               string
	reconcileInterval time.Duration
}

func NewConfig() Config {
	var (
		endpoint          string
		reconcileInterval time.Duration
	)

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %s\n", err)
	}

	flag.StringVar(&endpoint, "a", "localhost:8090", "address and port of the orders server")
	flag.DurationVar(&reconcileInterval, "r", 5*time.Minute, "interval between full reconciles, 0 disables them")
	flag.Parse()

	if address := os.Getenv("ORDERS_ADDRESS"); address != "" {
		endpoint = address
	}

	if r := os.Getenv("RECONCILE_INTERVAL"); r != "" {
		interval, err := time.ParseDuration(r)
		if err != nil {
			log.Fatalf("RECONCILE_INTERVAL is not a valid duration: %s", err)
		}
		reconcileInterval = interval
	}

	var logLevel string
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		logLevel = l
	} else {
		logLevel = "info"
	}

	var env string
	if e := os.Getenv("ENV"); e != "" {
		env = e
	} else {
		env = "production"
	}

	return Config{
		endpoint,
		logLevel,
		env,
		reconcileInterval,
	}
}
