package router

import (
	"log"
	"net/http"

	"github.com/Renal37/royal-threads-orders/internal/logger"
	"github.com/Renal37/royal-threads-orders/internal/middlewares"
	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/go-chi/chi/v5"
)

type Config struct {
	Endpoint string
}

type Router struct {
	config          Config
	orderService    models.OrderService
	paystackService models.PaystackService
	feedService     models.FeedService
}

func New(
	config Config,
	orderService models.OrderService,
	paystackService models.PaystackService,
	feedService models.FeedService,
) *Router {
	return &Router{
		config,
		orderService,
		paystackService,
		feedService,
	}
}

func (router *Router) get() chi.Router {
	r := chi.NewRouter()

	r.Use(
		middlewares.ServiceInjectorMiddleware(
			router.orderService,
			router.paystackService,
			router.feedService,
		),
		logger.RequestLogger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/paystack/webhook", PaystackWebhook)
		r.With(middlewares.JSONMiddleware[models.InitializeRequest]).Post("/paystack/initialize", InitializeTransaction)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", GetOrders)
			r.Get("/subscribe", SubscribeOrders)
			r.Get("/{orderID}", GetOrder)
			r.With(middlewares.JSONMiddleware[models.StatusUpdate]).Patch("/{orderID}/status", UpdateOrderStatus)
		})
	})

	return r
}

func (router *Router) Run() {
	log.Fatal(http.ListenAndServe(router.config.Endpoint, router.get()))
}
