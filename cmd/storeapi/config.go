package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	endpoint         string
	dsn              string
	logLevel         string
	env              string
	paystackEndpoint string
	paystackSecret   string
}

func NewConfig() Config {
	var (
		endpoint         string
		dsn              string
		paystackEndpoint string
	)

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %s\n", err)
	}

	flag.StringVar(&endpoint, "a", "localhost:8090", "address and port to run server")
	flag.StringVar(&dsn, "d", "", "data source name for database connection")
	flag.StringVar(&paystackEndpoint, "p", "https://api.paystack.co", "paystack API endpoint")
	flag.Parse()

	if address := os.Getenv("RUN_ADDRESS"); address != "" {
		endpoint = address
	}

	if d := os.Getenv("DATABASE_URI"); d != "" {
		dsn = d
	}

	if p := os.Getenv("PAYSTACK_ENDPOINT"); p != "" {
		paystackEndpoint = p
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

	paystackSecret := os.Getenv("PAYSTACK_SECRET_KEY")
	if paystackSecret == "" {
		log.Printf("WARNING: PAYSTACK_SECRET_KEY has to be defined, webhook signatures can't be verified without it\n")
	}

	return Config{
		endpoint,
		dsn,
		logLevel,
		env,
		paystackEndpoint,
		paystackSecret,
	}
}
