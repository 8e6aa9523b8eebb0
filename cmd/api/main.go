package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/enerjios/enerjios/internal/auth"
	authStore "github.com/enerjios/enerjios/internal/auth/store"
	"github.com/enerjios/enerjios/internal/config"
	"github.com/enerjios/enerjios/internal/customer"
	customerStore "github.com/enerjios/enerjios/internal/customer/store"
	"github.com/enerjios/enerjios/internal/database"
	enerjiosHttp "github.com/enerjios/enerjios/internal/http"
	authHandler "github.com/enerjios/enerjios/internal/http/auth"
	customerHandler "github.com/enerjios/enerjios/internal/http/customer"
	importHandler "github.com/enerjios/enerjios/internal/http/leadimport"
	productHandler "github.com/enerjios/enerjios/internal/http/product"
	requestHandler "github.com/enerjios/enerjios/internal/http/projectrequest"
	quoteHandler "github.com/enerjios/enerjios/internal/http/quote"
	"github.com/enerjios/enerjios/internal/notification"
	"github.com/enerjios/enerjios/internal/product"
	productStore "github.com/enerjios/enerjios/internal/product/store"
	"github.com/enerjios/enerjios/internal/projectrequest"
	requestStore "github.com/enerjios/enerjios/internal/projectrequest/store"
	"github.com/enerjios/enerjios/internal/quote"
	quoteStore "github.com/enerjios/enerjios/internal/quote/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	notifier := notification.NewLogDispatcher()

	var (
		authService     = auth.NewService(authStore.New(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		quoteService    = quote.NewService(quoteStore.New(db))
		requestService  = projectrequest.NewService(requestStore.New(db))
		productService  = product.NewService(productStore.New(db))
		customerService = customer.NewService(customerStore.New(db))
	)

	var (
		authH     = authHandler.NewHandler(authService)
		quoteH    = quoteHandler.NewHandler(quoteService, notifier)
		requestH  = requestHandler.NewHandler(requestService, notifier)
		productH  = productHandler.NewHandler(productService)
		customerH = customerHandler.NewHandler(customerService)
		importH   = importHandler.NewHandler(requestService)
	)

	router := enerjiosHttp.New(
		authService,
		cfg.Server.AllowedOrigins,
		authH,
		quoteH,
		requestH,
		productH,
		customerH,
		importH,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
