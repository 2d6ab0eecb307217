package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proplookup/config"
	"proplookup/feeds"
	"proplookup/httputil"
	"proplookup/logging"
	"proplookup/models"
	"proplookup/scheduler"
	"proplookup/services"
	"proplookup/storage"
	"proplookup/workers"
)

var (
	refreshNow = flag.Bool("refresh", false, "Run one refresh cycle and exit")
	agencyKey  = flag.String("agency", "", "Limit -refresh to one agency key")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting proplookup...")
	log.Printf("Loaded %d agency seeds", len(cfg.Agencies))

	clients := httputil.NewClients(&cfg.Feeds)

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Postgres.DSN))

	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	opsStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer opsStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	feedClient := feeds.NewClient(clients.Feeds)
	if cfg.Feeds.MyHomeBase != "" {
		feedClient.MyHomeBase = cfg.Feeds.MyHomeBase
	}
	if cfg.Feeds.AcquaintBase != "" {
		feedClient.AcquaintBase = cfg.Feeds.AcquaintBase
	}
	if cfg.Feeds.DaftBase != "" {
		feedClient.DaftBase = cfg.Feeds.DaftBase
	}

	agencyService := services.NewAgencyService(pgStore)
	aggregateService := services.NewAggregateService(pgStore, opsStore, feedClient)
	log.Println("Services initialized")

	if err := agencyService.SeedFromConfig(ctx, cfg.Agencies); err != nil {
		log.Printf("Warning: agency seeding failed: %v", err)
	}
	if err := agencyService.SeedConnectors(ctx); err != nil {
		log.Printf("Warning: connector seeding failed: %v", err)
	}

	if *refreshNow {
		runOnce(ctx, aggregateService, agencyService)
		return
	}

	// Daemon mode
	sched := scheduler.New(cfg, aggregateService, agencyService, opsStore)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerLog := func(level models.LogLevel, agencyKey, message string) {
		if err := opsStore.Log(nil, level, message, agencyKey); err != nil {
			log.Printf("Warning: worker log failed: %v", err)
		}
	}

	siteCheckWorker := workers.NewSiteCheckWorker(pgStore, clients.Probe, workers.FeedBases{
		MyHome:   feedClient.MyHomeBase,
		Acquaint: feedClient.AcquaintBase,
		Daft:     feedClient.DaftBase,
	})
	siteCheckWorker.SetLogger(workerLog)

	wpProbeWorker := workers.NewWordPressProbeWorker(pgStore, clients.Feeds, cfg.Feeds.WordPressEndpoints)
	wpProbeWorker.SetLogger(workerLog)

	sched.SetWorkers(siteCheckWorker, wpProbeWorker)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go siteCheckWorker.Run(ctx, 6*time.Hour)
	log.Println("Site check worker started")

	go wpProbeWorker.Run(ctx, 24*time.Hour)
	log.Println("WordPress probe worker started")

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

func runOnce(ctx context.Context, aggregate *services.AggregateService, agencies *services.AgencyService) {
	log.Println("Running refresh...")
	if *agencyKey != "" {
		ag, err := agencies.ResolveByKey(ctx, *agencyKey)
		if err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		stats, err := aggregate.RefreshAgency(ctx, ag, nil)
		if err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		log.Printf("Refresh complete: %d listings, %d groups", stats.ListingsFound, stats.GroupsBuilt)
		return
	}
	if err := aggregate.RefreshAll(ctx); err != nil {
		log.Fatalf("Refresh failed: %v", err)
	}
	log.Println("Refresh complete!")
}

// maskConnectionString masks the password in a connection string for
// logging.
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
