package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"garagebook/internal/config"
	"garagebook/internal/handler"
	"garagebook/internal/ocrclient"
	"garagebook/internal/parser"
	"garagebook/internal/repository/postgres"
	"garagebook/internal/router"
	"garagebook/internal/rules"
	"garagebook/internal/service"
	s3storage "garagebook/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	ruleRepo := postgres.NewRuleRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	uploadRepo := postgres.NewUploadRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize processing pipeline
	enhancer := parser.NewClient(&cfg.Enhancer)
	engine := rules.NewEngine()
	processor := service.NewProcessor(enhancer, engine, ruleRepo)
	ocr := ocrclient.NewClient(cfg.OCR.BaseURL, cfg.OCR.APIKey, time.Duration(cfg.OCR.TimeoutSecs)*time.Second)
	invoiceSvc := service.NewInvoiceService(processor, invoiceRepo, uploadRepo, s3Client, ocr, &cfg.S3)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	uploadH := handler.NewUploadHandler(invoiceSvc)
	ruleH := handler.NewRuleHandler(ruleRepo)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(invoiceH, uploadH, ruleH, healthH, cfg.CORS.AllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the upload processing worker
	worker := service.NewProcessQueueWorker(uploadRepo, invoiceSvc, service.ProcessQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-workerDone

	return nil
}
