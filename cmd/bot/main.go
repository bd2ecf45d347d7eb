package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invite-tracker/internal/auth"
	"invite-tracker/internal/backup"
	"invite-tracker/internal/bulkmedya"
	"invite-tracker/internal/config"
	"invite-tracker/internal/discord"
	"invite-tracker/internal/handlers"
	"invite-tracker/internal/interactions"
	"invite-tracker/internal/jobs"
	"invite-tracker/internal/models"
	"invite-tracker/internal/platform"
	"invite-tracker/internal/repository"
	"invite-tracker/internal/services"
	"invite-tracker/internal/storage"
	"invite-tracker/internal/vaultcord"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Open the document store
	base, err := repository.OpenDocumentStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	var store storage.DocumentStore = base
	var debounced *storage.Debounced
	if cfg.Storage.Debounce > 0 {
		debounced = storage.NewDebounced(base, cfg.Storage.Debounce)
		store = debounced
		log.Printf("Persistence debounced by %v", cfg.Storage.Debounce)
	}

	// Discord session and platform
	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	p := platform.NewRetryingPlatform(discord.NewPlatform(session), cfg.Retry.MaxAttempts, cfg.Retry.Backoff)

	// Initialize services
	audit := services.NewAuditLog(p, cfg.Discord.LogChannelID)
	ledger := services.NewInviteLedger(store)
	snapshots := services.NewSnapshotService(p, ledger)
	tracker := services.NewTrackerService(snapshots, ledger, p, services.TrackerConfig{
		AltAccountDays:  cfg.Tracking.AltAccountDays,
		SettleDelay:     cfg.Tracking.SettleDelay,
		RejoinDetection: cfg.Tracking.RejoinDetection,
		JoinTimeout:     cfg.Tracking.JoinTimeout,
	})
	cleanup := services.NewCleanupService(p, snapshots, services.CleanupConfig{
		MaxInvites:  cfg.Cleanup.MaxInvites,
		Target:      cfg.Cleanup.Target,
		DeleteDelay: cfg.Cleanup.DeleteDelay,
	})
	stock := services.NewStockService(store, ledger, audit)
	guildConfig := services.NewGuildConfigService(store, models.DefaultCatalog())
	boost := services.NewBoostService(bulkmedya.NewClient(cfg.Panel.URL, cfg.Panel.Timeout), guildConfig, ledger, audit)
	members := services.NewMembersFarmService(
		vaultcord.NewClient(cfg.VaultCord.URL, cfg.VaultCord.APIKey, cfg.VaultCord.Timeout),
		p, ledger, audit, cfg.Discord.PullBotID,
	)

	if err := ledger.Load(ctx); err != nil {
		log.Fatalf("Failed to load invites (run cmd/migrate for legacy data): %v", err)
	}
	if err := stock.Load(ctx); err != nil {
		log.Fatalf("Failed to load stock (run cmd/migrate for legacy data): %v", err)
	}
	if err := guildConfig.Load(ctx); err != nil {
		log.Fatalf("Failed to load guild config (run cmd/migrate for legacy data): %v", err)
	}

	// Interactions and gateway events
	bot := interactions.NewBot(interactions.Services{
		Ledger:    ledger,
		Snapshots: snapshots,
		Tracker:   tracker,
		Cleanup:   cleanup,
		Stock:     stock,
		Config:    guildConfig,
		Boost:     boost,
		Members:   members,
		Audit:     audit,
	}, interactions.Options{
		AdminUserID:  cfg.Discord.AdminUserID,
		AccountsFile: cfg.Storage.AccountsFile,
		PullBotID:    cfg.Discord.PullBotID,
	})
	bot.Attach(session)

	if err := session.Open(); err != nil {
		log.Fatalf("Failed to connect to Discord: %v", err)
	}

	appID := cfg.Discord.ClientID
	if appID == "" && session.State != nil && session.State.User != nil {
		appID = session.State.User.ID
	}
	if err := interactions.RegisterCommands(session, appID, ""); err != nil {
		log.Printf("Warning: %v", err)
	}

	// Background jobs
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := scheduler.Every("invite-cleanup", cfg.Cleanup.Interval, jobs.NewInviteCleanupJob(cleanup).Run); err != nil {
		log.Fatalf("Failed to schedule invite cleanup: %v", err)
	}
	if cfg.Backup.Bucket != "" {
		client, err := backup.NewS3Client(ctx, cfg.Backup)
		if err != nil {
			log.Fatalf("Failed to create backup client: %v", err)
		}
		uploader := backup.NewUploader(client, store, cfg.Backup.Bucket, cfg.Backup.Prefix)
		if err := scheduler.Every("backup", cfg.Backup.Interval, jobs.NewBackupJob(uploader).Run); err != nil {
			log.Fatalf("Failed to schedule backups: %v", err)
		}
	}
	scheduler.Start()
	log.Println("Background jobs started")

	// Admin API
	var srv *http.Server
	if cfg.Server.Enabled {
		auth.InitJWT(cfg.App.JWTSecret)
		router := handlers.NewRouter(handlers.NewGuildHandler(ledger, stock, cleanup, audit), cfg.Server.AllowedOrigins)
		srv = &http.Server{
			Addr:    ":" + cfg.Server.Port,
			Handler: router,
		}

		go func() {
			log.Printf("Admin API starting on port %s", cfg.Server.Port)
			log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
	}

	log.Println("Bot is running. Press Ctrl+C to exit.")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Admin API forced to shutdown: %v", err)
		}
	}
	if err := scheduler.Stop(); err != nil {
		log.Printf("Failed to stop scheduler: %v", err)
	}
	if err := session.Close(); err != nil {
		log.Printf("Failed to close Discord session: %v", err)
	}
	if debounced != nil {
		if err := debounced.Flush(shutdownCtx); err != nil {
			log.Printf("Failed to flush pending writes: %v", err)
		}
	}

	log.Println("Bot exited")
}
