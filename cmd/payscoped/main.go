package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"payscope/internal/config"
	"payscope/internal/infra/cachemem"
	"payscope/internal/infra/db"
	"payscope/internal/infra/notify"
	"payscope/internal/usecase"
)

func main() {
	configPath := flag.String("config", "payscope.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	var dispatcher usecase.NotificationDispatcher
	if cfg.RedisAddr != "" {
		redisDispatcher, err := notify.NewRedisDispatcher(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("failed to init redis dispatcher: %v", err)
		}
		dispatcher = redisDispatcher
	} else {
		log.Print("no redis_addr configured, notifications stay in process")
		dispatcher = notify.NewMemoryDispatcher()
	}

	audit := usecase.NewAuditService(store.AuditLogs(), nil)
	configSvc := usecase.NewConfigService(store.Companies(), audit, cachemem.New(), dispatcher, nil)
	configSvc.PlanCap = cfg.PlanCap
	risk := usecase.NewRiskService(configSvc, store.Employees(), store.Scores(), store.PeerFeedback(), store.RiskFlags(), audit, dispatcher, nil)

	jobs := &usecase.Jobs{
		Companies:             store.Companies(),
		Config:                configSvc,
		Risk:                  risk,
		ApprovalSweepInterval: cfg.ApprovalSweepInterval,
		RiskEvalInterval:      cfg.RiskEvalInterval,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("payscoped running: approval sweep every %s, risk evaluation every %s",
		cfg.ApprovalSweepInterval, cfg.RiskEvalInterval)
	jobs.Run(ctx)
	log.Print("payscoped shutting down")
}
