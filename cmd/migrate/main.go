package main

import (
	"context"
	"flag"
	"log"

	"invite-tracker/internal/config"
	"invite-tracker/internal/migration"
	"invite-tracker/internal/repository"
)

func main() {
	accounts := flag.String("accounts", "", "legacy accounts file to import into the main guild (defaults to ACCOUNTS_FILE)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *accounts == "" {
		*accounts = cfg.Storage.AccountsFile
	}

	store, err := repository.OpenDocumentStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}

	report, err := migration.NewMigrator(store, cfg.Discord.MainGuildID).Run(context.Background(), *accounts)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Printf("Migration complete: invites=%v (%d users, %d members) stocks=%v (+%d accounts) generator=%v social=%v",
		report.Invites, report.Users, report.Members, report.Stocks, report.Accounts, report.Generator, report.Social)
}
