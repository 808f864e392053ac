package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitabu/textbook-store/internal/auth"
	"github.com/vitabu/textbook-store/internal/config"
	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/httpapi"
	"github.com/vitabu/textbook-store/internal/obs"
	"github.com/vitabu/textbook-store/internal/service"
)

func main() {
	logger := obs.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(context.Background(), &cfg.Database)
	if err != nil {
		logger.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	server := httpapi.NewServer(
		logger,
		tokens,
		service.NewCatalog(db),
		service.NewSearch(db),
		service.NewInvoices(db),
		service.NewUsers(db, tokens),
	)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
