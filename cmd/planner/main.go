package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/config"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/digest"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/dispatcher"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/notifier"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/plan"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/recorder"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/registry"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] draw planner starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Load point systems
	var reg *registry.Registry
	if cfg.Registry.Path != "" {
		reg, err = registry.Load(cfg.Registry.Path)
		if err != nil {
			log.Fatalf("[FATAL] load registry: %v", err)
		}
	} else {
		reg = registry.Default()
	}
	log.Printf("[INFO] point systems loaded: %d states", len(reg.States()))

	// Init plan store
	store, err := plan.NewStore(cfg.Plan.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init plan store: %v", err)
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	builder := digest.NewBuilder(reg, cfg.FloatCeiling(), cfg.CriticalBand())
	policy := dispatcher.Policy{
		HuntYearBudget:      cfg.HuntYearBudget(),
		PointCreepThreshold: cfg.Budget.PointCreepThreshold,
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, reg, store, builder, tn, rec, policy, cfg.Schedule.ReminderDays)
	if err := sched.RegisterAll(cfg.Schedule.DeadlineCron, cfg.Schedule.LiquidityCron, cfg.Schedule.DigestCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, sending odds digest now")
		go sched.RunDigestNow()
	}

	log.Println("[INFO] draw planner is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] draw planner stopped")
}
