package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/config"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/dashboard"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/knowledge"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/server"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/pkg/backend"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	cfg := config.DefaultDashboardConfig()

	kb := knowledge.NewBase(log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.KnowledgeFile != "" {
		if err := kb.LoadFile(cfg.KnowledgeFile); err != nil {
			log.WithError(err).Warn("Runbook file not loaded, using built-in entries")
		}
		go func() {
			if err := kb.Watch(ctx, cfg.KnowledgeFile); err != nil && err != context.Canceled {
				log.WithError(err).Warn("Runbook watcher stopped")
			}
		}()
	}

	client := backend.NewClient(backend.Config{
		Endpoint: cfg.BackendEndpoint,
		Timeout:  cfg.FetchTimeout,
	}, log)

	engine := dashboard.New(cfg, client, kb, log)
	engine.Start(ctx)

	srv := server.New(cfg, engine, log)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Dashboard server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down dashboard")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
