package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrcreator/internal/config"
	"github.com/cristianadrielbraun/qrcreator/internal/handlers"
	"github.com/cristianadrielbraun/qrcreator/internal/logger"
	"github.com/cristianadrielbraun/qrcreator/internal/qr"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
	"github.com/cristianadrielbraun/qrcreator/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	enc, err := qr.NewEncoder(cfg.Encoder)
	if err != nil {
		log.Fatal("encoder", zap.Error(err))
	}
	pipeline := render.New(enc)
	store := session.NewStore(pipeline, cfg.MaxLogoBytes, cfg.SessionTTL, log)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(logger.Gin(log))
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxLogoBytes + 1<<20

	h := handlers.New(store, pipeline, log, cfg.MaxLogoBytes)
	h.Routes(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("qrcreator listening", zap.String("addr", "http://"+srv.Addr), zap.String("encoder", cfg.Encoder))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
