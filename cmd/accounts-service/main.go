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
	"github.com/ledgerpath/backend/internal/config"
	"github.com/ledgerpath/backend/internal/database"
	mW "github.com/ledgerpath/backend/internal/middleware"
	"github.com/ledgerpath/backend/internal/services"
	"github.com/sirupsen/logrus"
)

func main() {
	config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(config.LogLevel()); err == nil {
		log.SetLevel(level)
	}

	db := database.InitDatabase(log, "accounts")
	defer db.Close()

	if err := database.EnsureSchema(db, database.AccountsSchema); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	accountService := services.NewAccountService(db, log)

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

	r.Get("/", accountService.Root)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		services.SendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", accountService.CreateAccount)
		r.Get("/", accountService.ListAccounts)
		r.Get("/{accountId}", accountService.GetAccount)
		r.Put("/{accountId}", accountService.UpdateAccount)
		r.Delete("/{accountId}", accountService.DeleteAccount)
	})

	port := config.ServerPort("8000")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Accounts service starting on :%s", port)
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
