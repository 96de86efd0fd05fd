package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"logistics_manager/internal/config"
	"logistics_manager/internal/database"
	"logistics_manager/internal/logger"
	"logistics_manager/internal/migrations"
)

// Drops every table and recreates the schema with the default data. Meant for
// development databases only.
func main() {
	var opts migrations.Options
	yes := flag.Bool("yes", false, "confirm that all data will be lost")
	flag.StringVar(&opts.AdminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	flag.StringVar(&opts.CompanyName, "company", "", "company name")
	flag.Parse()

	cfg := config.Load()
	if cfg.IsProduction() {
		fmt.Fprintln(os.Stderr, "refusing to reset a production database")
		os.Exit(1)
	}
	if !*yes {
		fmt.Fprintln(os.Stderr, "this drops every table, re-run with -yes to continue")
		os.Exit(2)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Initialize(cfg.DatabaseURL, logger.GormLevel(cfg.LogLevel), log)
	if err != nil {
		log.Fatal(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := migrations.Reset(ctx, db, opts, log); err != nil {
		log.Fatal(err.Error())
	}
	fmt.Println("Database initialized")
}
