package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"cambistas-backend/internal/config"
	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/logger"
	"cambistas-backend/internal/repositories"

	"go.uber.org/zap"
)

// Replaces the stored ledger with an empty one, or the demo roster with
// -seed. Credentials are left alone.
func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file")
	seed := flag.Bool("seed", false, "Write the demo roster instead of an empty ledger")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zapLogger, err := logger.NewForEnvironment(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	fmt.Println("========================================")
	fmt.Println("   Reset Ledger")
	fmt.Println("========================================")
	fmt.Printf("Backend: %s, key: %s\n", cfg.Storage.Backend, cfg.Storage.LedgerKey)
	fmt.Println("This deletes every group, agent and weekly entry.")

	if !*yes {
		fmt.Print("Type 'yes' to confirm: ")
		var confirm string
		_, _ = fmt.Scanln(&confirm)
		if confirm != "yes" {
			fmt.Println("Reset cancelled.")
			return
		}
	}

	ctx := context.Background()
	store, closeStore, err := repositories.OpenBlobStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Unable to open store", zap.Error(err))
	}
	defer closeStore()

	l := ledger.New()
	if *seed {
		l.SeedDemo()
	}
	repo := repositories.NewLedgerRepository(store, cfg.Storage.LedgerKey)
	if err := repo.Save(ctx, l.Snapshot()); err != nil {
		zapLogger.Fatal("Failed to write ledger", zap.Error(err))
	}

	snap := l.Snapshot()
	zapLogger.Info("ledger reset", zap.String("key", cfg.Storage.LedgerKey), zap.Bool("seed", *seed))
	fmt.Printf("Ledger reset: %d groups, %d agents\n", len(snap.Groups), len(snap.Agents))
}
