package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "railticket/internal/config"
	"railticket/internal/container"
	router "railticket/internal/http"
	"railticket/internal/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	env, err := intconfig.LoadEnv()
	log := logger.New(env.LogLevel)
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Fatal("konfigurasi tidak valid", "error", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx := context.Background()
	db, err := intconfig.OpenDB(ctx, env.DatabaseDSN)
	if err != nil {
		log.Fatal("gagal konek database", "error", err)
	}

	c, err := container.New(ctx, env, db, log)
	if err != nil {
		log.Fatal("gagal menyiapkan dependency", "error", err)
	}

	r := router.NewRouter(env, router.Deps{
		Handlers: c.Handlers,
		Gatherer: c.Registry,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server berjalan", "addr", env.AppAddr, "storage_targets", len(c.Store.Adapters))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("gagal menjalankan server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("mematikan server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown server gagal", "error", err)
	}
	c.Close(shutdownCtx)

	log.Info("server berhenti dengan aman")
}
