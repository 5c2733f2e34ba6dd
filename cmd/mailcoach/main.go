package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/learnwithedward/mailcoach/internal/config"
	"github.com/learnwithedward/mailcoach/internal/dictionary"
	"github.com/learnwithedward/mailcoach/internal/report"
	"github.com/learnwithedward/mailcoach/internal/scenario"
	"github.com/learnwithedward/mailcoach/internal/server"
	"github.com/learnwithedward/mailcoach/internal/translate"
	"github.com/learnwithedward/mailcoach/internal/vocab"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "mailcoach.yaml", "Path to mailcoach config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	catalog := scenario.Load(cfg.Data.Scenarios)
	log.Printf("loaded %d scenarios", catalog.Len())

	store, err := vocab.Open(cfg.Data.Vocabulary)
	if err != nil {
		log.Fatalf("failed to open vocabulary: %v", err)
	}
	log.Printf("loaded %d vocabulary words", store.Len())

	dict := dictionary.NewClient(
		cfg.Dictionary.BaseURL,
		time.Duration(cfg.Dictionary.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Dictionary.MinIntervalMs)*time.Millisecond,
	)

	var translator server.Translator
	if cfg.Translate.Enabled {
		translator = translate.NewSuggester(cfg.Translate.Tries, time.Duration(cfg.Translate.DelayMs)*time.Millisecond)
	}

	var emitter *report.Emitter
	if cfg.PracticeLog.Path != "" {
		sink, err := report.NewFileSink(cfg.PracticeLog.Path)
		if err != nil {
			log.Fatalf("failed to open practice log: %v", err)
		}
		emitter = report.NewEmitter(report.EmitterConfig{
			QueueSize: cfg.PracticeLog.QueueSize,
			Workers:   cfg.PracticeLog.Workers,
		}, []report.Sink{sink})
	}

	srv := server.New(cfg, catalog, store, dict, translator, emitter)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting mailcoach on %s...", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		cancel()
	}

	if emitter != nil {
		emitter.Close(context.Background())
	}
}
