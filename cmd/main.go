package main

import (
	"log"
	"net/http"
	"time"

	"wlbot/backend/internal/api/handler"
	"wlbot/backend/internal/audit"
	"wlbot/backend/internal/auth"
	"wlbot/backend/internal/config"
	"wlbot/backend/internal/rcon"
	"wlbot/backend/internal/storage"
	"wlbot/backend/internal/telegram"
	"wlbot/backend/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupStore picks the persistence backend: Redis when REDIS_ADDR is set,
// JSON files under DATA_DIR otherwise.
func setupStore(cfg *config.Config) storage.Store {
	if cfg.RedisAddr != "" {
		s, err := storage.NewRedisStore(cfg.RedisAddr, cfg.MainAdmin)
		if err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		log.Printf("INFO: Using Redis store at %s", cfg.RedisAddr)
		return s
	}

	s, err := storage.NewFileStore(cfg.DataDir, cfg.MainAdmin)
	if err != nil {
		log.Fatalf("Failed to prepare data dir: %v", err)
	}
	log.Printf("INFO: Using file store under %s", cfg.DataDir)
	return s
}

// setupAudit connects the Postgres audit trail when AUDIT_DSN is set.
func setupAudit(cfg *config.Config) audit.Recorder {
	if cfg.AuditDSN == "" {
		return audit.Nop{}
	}
	db, err := gorm.Open(postgres.Open(cfg.AuditDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect audit database: %v", err)
	}
	rec, err := audit.NewDBRecorder(db)
	if err != nil {
		log.Fatalf("Failed to run audit migrations: %v", err)
	}
	log.Println("INFO: Audit trail enabled")
	return rec
}

func main() {
	log.Println("Starting whitelist bot...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store := setupStore(cfg)
	rec := setupAudit(cfg)

	guard := auth.NewGuard(store, rec, cfg.MainAdmin)
	rconClient := rcon.NewClient(cfg.RconAddr, cfg.RconPassword)
	apps := workflow.NewApplications(store, rconClient, guard, rec, cfg.TrustApplication)
	reports := workflow.NewReports(store, guard)

	bot, err := telegram.NewBotService(cfg, store, guard, rconClient, apps, reports, rec)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}
	go bot.Run()

	r := gin.Default()
	h := handler.NewHandler(store, apps, reports, cfg.APISecret)
	h.Register(r)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	log.Fatal(server.ListenAndServe())
}
