package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ledgerpath/backend/docs"
	"github.com/ledgerpath/backend/internal/clients"
	"github.com/ledgerpath/backend/internal/config"
	"github.com/ledgerpath/backend/internal/database"
	mW "github.com/ledgerpath/backend/internal/middleware"
	"github.com/ledgerpath/backend/internal/services"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Transactions Service API
// @version 1.0
// @description CRUD over account transactions with cross-service account validation
// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(config.LogLevel()); err == nil {
		log.SetLevel(level)
	}

	db := database.InitDatabase(log, "transactions")
	defer db.Close()

	if err := database.EnsureSchema(db, database.TransactionsSchema); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	redisClient := database.InitRedis(log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	docs.SwaggerInfo.Title = "Transactions Service API"
	docs.SwaggerInfo.Version = "1.0"

	accountsClient := clients.NewAccountsClient(config.AccountsClient(), log)
	transactionService := services.NewTransactionService(db, redisClient, accountsClient, log)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	r.Get("/", transactionService.Root)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		services.SendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", transactionService.CreateTransaction)
		r.Get("/", transactionService.ListTransactions)
		r.Get("/recent", transactionService.GetRecentTransactions)
		r.Get("/{txId}", transactionService.GetTransaction)
		r.Put("/{txId}", transactionService.UpdateTransaction)
		r.Delete("/{txId}", transactionService.DeleteTransaction)
	})

	port := config.ServerPort("8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Transactions service starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
