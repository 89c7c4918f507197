package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dyreklinik/api/internal/app"
	"dyreklinik/api/internal/config"
	"dyreklinik/api/internal/email"
	"dyreklinik/api/internal/export"
	"dyreklinik/api/internal/media"
	"dyreklinik/api/internal/reviews"
	"dyreklinik/api/internal/session"
	"dyreklinik/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	sessionStore, err := session.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer sessionStore.Close()

	reviewCache, err := reviews.NewCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer reviewCache.Close()
	reviewService := reviews.NewService(reviewCache, cfg.GoogleAPIKey, cfg.ReviewCacheTTL)

	var mediaService *media.Service
	if strings.TrimSpace(cfg.S3Endpoint) != "" {
		mediaService, err = media.NewService(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL, cfg.S3UseSSL)
		if err != nil {
			log.Fatalf("object storage setup failed: %v", err)
		}
		if err := mediaService.EnsureBucket(ctx); err != nil {
			log.Printf("WARNING: could not ensure media bucket: %v", err)
		}
	} else {
		log.Printf("S3 endpoint not configured, media uploads disabled")
	}

	mailService := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	if !mailService.IsConfigured() {
		log.Printf("SMTP not configured, contact form and reset emails disabled")
	}

	exportService := export.NewService(&priceListStore{store: dataStore}, cfg.ClinicName)

	service := app.New(cfg, dataStore, sessionStore, reviewService, mediaService, mailService, exportService)
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (will retry on next restart): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Klinik API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// priceListStore exposes the published price list, grouped for PDF export.
// Only active categories and items are included.
type priceListStore struct {
	store *store.PostgresStore
}

func (p *priceListStore) ListPriceCategories(ctx context.Context) ([]export.CategoryInfo, error) {
	categories, err := p.store.ListPriceCategories(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]export.CategoryInfo, 0, len(categories))
	for _, category := range categories {
		out = append(out, export.CategoryInfo{ID: category.ID, Name: category.Name})
	}
	return out, nil
}

func (p *priceListStore) ListPriceItems(ctx context.Context, categoryID string) ([]export.ItemInfo, error) {
	items, err := p.store.ListPriceItems(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]export.ItemInfo, 0, len(items))
	for _, item := range items {
		if item.CategoryID != categoryID {
			continue
		}
		out = append(out, export.ItemInfo{
			ID:         item.ID,
			CategoryID: item.CategoryID,
			Name:       item.Name,
			PriceFrom:  item.PriceFrom,
			PriceTo:    item.PriceTo,
			Note:       item.PriceNote,
		})
	}
	return out, nil
}
