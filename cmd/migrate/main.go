package main

import (
	"context"
	"log"

	"edu-assistant-be/internal/config"
	"edu-assistant-be/internal/model"
	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/database"
	"edu-assistant-be/pkg/embedding"
	"edu-assistant-be/pkg/vectorindex"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.DefaultPoolConfig(), sysLogger, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.Content{},
		&model.ContentChunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating search indexes...")
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_contents_fulltext ON contents USING GIN (
			to_tsvector('english', coalesce(name,'') || ' ' || coalesce(content,'') || ' ' || coalesce(key_concepts::text,''))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contents_user_created ON contents (user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_created ON chat_messages (chat_session_id, created_at);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	if cfg.Vector.Backend == "pgvector" {
		log.Println("Step 4: Creating pgvector point table...")
		dimensions := cfg.Ai.EmbeddingDimensions
		if dimensions <= 0 {
			dimensions = embedding.DimensionsFor(cfg.Ai.EmbeddingProvider)
		}
		index := vectorindex.NewPgvectorIndex(db)
		if err := index.EnsureCollection(context.Background(), cfg.Vector.Collection, dimensions); err != nil {
			log.Fatalf("Error: pgvector setup failed: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
