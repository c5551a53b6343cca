package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/talentnet/backend/internal/auth"
	"github.com/talentnet/backend/internal/config"
	"github.com/talentnet/backend/internal/database"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/seed"
	"go.uber.org/zap"
)

func usage() {
	fmt.Println("Usage: seed [-n count] [-seed value] [dev|test|clean]")
	fmt.Println("  dev   - Create random talent profiles")
	fmt.Println("  test  - Create the fixed alice/bob/charlie/diana/eve accounts")
	fmt.Println("  clean - Remove every seeded account")
}

func main() {
	count := flag.Int("n", 50, "number of profiles for dev seeding")
	fakerSeed := flag.Uint64("seed", 0, "faker seed, 0 for random")
	flag.Usage = usage
	flag.Parse()

	command := "dev"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.LogLevel, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Close() }()

	if err := cfg.Validate(); err != nil {
		logger.FatalWithFields("Invalid configuration", err)
	}
	if err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, false); err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
	defer func() { _ = database.Close() }()
	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Failed to migrate database", err)
	}

	authService := auth.NewService(
		repository.NewUserRepository(database.DB),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
	)
	seeder := seed.NewSeeder(database.DB, authService, *fakerSeed)
	ctx := context.Background()

	var accounts []seed.Account
	switch command {
	case "dev":
		accounts, err = seeder.SeedDev(ctx, *count)
	case "test":
		accounts, err = seeder.SeedTest(ctx)
	case "clean":
		var removed int64
		removed, err = seeder.Clean(ctx)
		if err == nil {
			logger.Log.Info("Seed data cleaned", zap.Int64("removed", removed))
		}
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		logger.FatalWithFields("Seeding failed", err)
	}

	for _, a := range accounts {
		fmt.Printf("%-36s  %-40s  %s\n", a.User.ID, a.User.Email, a.Token)
	}
	if len(accounts) > 0 {
		fmt.Printf("\nAll accounts use password %q\n", seed.DefaultPassword)
	}
}
