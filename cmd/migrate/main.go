package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/kdimtricp/lecturepulse/internal/config"
	"github.com/kdimtricp/lecturepulse/internal/database"
	"github.com/kdimtricp/lecturepulse/internal/logging"
)

const usage = `Usage: migrate [flags] <command>

Commands:
  up            apply all pending migrations (default)
  down          roll back the most recent migration
  version       print the current schema version
  force <n>     mark version n as applied without running it
`

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.Verbose, cfg.Logging.JSON)
	logger := logging.WithComponent("migrate")

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	// Open skips the automatic migration that NewDB performs.
	db, err := database.Open(cfg.DB())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	switch command {
	case "up":
		err = db.MigrateUp()
	case "down":
		err = db.MigrateDown()
	case "version":
	case "force":
		var version int
		version, err = strconv.Atoi(flag.Arg(1))
		if err != nil {
			flag.Usage()
			os.Exit(2)
		}
		err = db.MigrateForce(version)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("command", command).Msg("Migration failed")
	}

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read schema version")
	}
	fmt.Printf("Database type: %s\nSchema version: %d\nDirty: %t\n", db.Type(), version, dirty)
}
