package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweetlayer/cakeshop/backend/internal/config"
	"github.com/sweetlayer/cakeshop/backend/internal/dialogue"
	"github.com/sweetlayer/cakeshop/backend/internal/events"
	"github.com/sweetlayer/cakeshop/backend/internal/handlers"
	"github.com/sweetlayer/cakeshop/backend/internal/middleware"
	"github.com/sweetlayer/cakeshop/backend/internal/orders"
	"github.com/sweetlayer/cakeshop/backend/internal/search"
	"github.com/sweetlayer/cakeshop/backend/internal/sentiment"
	"github.com/sweetlayer/cakeshop/backend/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting cake shop api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.LogLevel,
	)

	// Initialize storage
	stores, err := buildStores(cfg, log)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer stores.close()

	// Connect the event broker. An empty URL disables events; order flow
	// continues without them.
	var publisher *events.Publisher
	if cfg.Events.URL != "" {
		publisher, err = events.Dial(events.Config{
			URL:         cfg.Events.URL,
			Exchange:    cfg.Events.Exchange,
			OrderQueue:  cfg.Events.OrderQueue,
			ReviewQueue: cfg.Events.ReviewQueue,
		})
		if err != nil {
			log.Error("failed to connect event broker", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
	} else {
		log.Warn("RABBITMQ_URL not set, events disabled")
	}

	// Initialize services
	var eventSink orders.EventPublisher
	if publisher != nil {
		eventSink = publisher
	}
	orderService := orders.NewService(stores.orders, stores.coupons, stores.products, eventSink, log)

	collabTimeout := time.Duration(cfg.Collab.TimeoutSeconds) * time.Second
	var interpreter search.Interpreter
	if cfg.Collab.InterpreterURL != "" {
		interpreter = search.NewHTTPInterpreter(cfg.Collab.InterpreterURL, collabTimeout)
	} else {
		log.Warn("INTERPRETER_URL not set, natural-language search will use the fallback reply")
	}
	classifier := search.NewHeuristicClassifier()
	dispatcher := search.NewDispatcher(classifier, stores.products, interpreter, collabTimeout, log)

	sessions := dialogue.NewManager(
		orderService,
		stores.products,
		dispatcher,
		time.Duration(cfg.Dialogue.DisplayWindowSeconds)*time.Second,
		time.Duration(cfg.Dialogue.SessionTTLMinutes)*time.Minute,
		log,
	)
	defer sessions.Close()

	// Root context cancelled on shutdown; the sentiment worker hangs off it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if publisher != nil && cfg.Collab.SentimentURL != "" {
		worker := sentiment.NewWorker(
			publisher.Channel(),
			cfg.Events.ReviewQueue,
			sentiment.NewHTTPClassifier(cfg.Collab.SentimentURL, collabTimeout),
			orderService,
			log,
		)
		go func() {
			if err := worker.Run(ctx); err != nil {
				log.Error("sentiment worker stopped", "error", err)
			}
		}()
	} else if cfg.Collab.SentimentURL == "" {
		log.Warn("SENTIMENT_URL not set, reviews will not be scored")
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	productHandler := handlers.NewProductHandler(stores.products, log)
	couponHandler := handlers.NewCouponHandler(stores.coupons, log)
	orderHandler := handlers.NewOrderHandler(orderService, log)
	searchHandler := handlers.NewSearchHandler(dispatcher, classifier, log)
	dialogueHandler := handlers.NewDialogueHandler(sessions, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Metrics())

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Unauthenticated endpoints
	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.Auth.JWTSecret))

		// Catalog endpoints
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{productID}", productHandler.GetProduct)
		r.Get("/search", searchHandler.Search)

		// Coupon endpoints
		r.Get("/coupons/{couponCode}", couponHandler.ValidateCoupon)

		// Order endpoints
		r.Post("/orders", orderHandler.Create)
		r.Get("/orders", orderHandler.List)
		r.Get("/orders/{orderID}", orderHandler.Get)
		r.Patch("/orders/{orderID}", orderHandler.Modify)
		r.Post("/orders/{orderID}/cancel", orderHandler.Cancel)
		r.Post("/orders/{orderID}/review", orderHandler.Review)
		r.Post("/orders/{orderID}/reorder", orderHandler.Reorder)

		// Admin endpoints
		r.Put("/admin/orders/{orderID}/status", orderHandler.AdvanceStatus)

		// Dialogue endpoints
		r.Post("/dialogue", dialogueHandler.Start)
		r.Post("/dialogue/{sessionID}/message", dialogueHandler.Message)
		r.Get("/dialogue/{sessionID}/summary", dialogueHandler.Summary)
		r.Post("/dialogue/{sessionID}/coupon", dialogueHandler.Coupon)
		r.Post("/dialogue/{sessionID}/book", dialogueHandler.Book)
		r.Post("/dialogue/{sessionID}/search", dialogueHandler.Search)
		r.Delete("/dialogue/{sessionID}", dialogueHandler.Abandon)
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	stop()

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
