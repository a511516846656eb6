package main

import (
	"context"
	"log"
	"os"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/model"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/database"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/searchindex"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Starting GORM Migration...")

	// 3. Pre-Migration: extensions AutoMigrate doesn't handle
	color.Yellow("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	color.Yellow("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.Document{},
		&model.IndexingLog{},
		&model.SegmentLog{},
		&model.ReconciliationRun{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Migration failed: %v", err)
		os.Exit(1)
	}

	// 5. Search index schema (table plus the tsvector expression index)
	color.Yellow("Step 3: Ensuring search index schema...")
	if err := searchindex.NewPostgresIndex(db).EnsureSchema(context.Background()); err != nil {
		color.Red("Search schema failed: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Migration complete")
}
