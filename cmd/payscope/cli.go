package main

import (
	"fmt"
	"os"
	"path/filepath"

	"payscope/internal/config"
	"payscope/internal/infra/db"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "verify-chain":
		return runVerifyChain(args[2:])
	case "fairness":
		return runFairness(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "payscope"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s verify-chain [--config <file>] [--company <id>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s fairness --company <id> --month <YYYY-MM> [--config <file>] [--group-by company|department|role]\n", name)
}

func openStore(configPath string) (*config.Config, *db.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	store, err := db.NewStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}
