package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"payscope/internal/domain"
	"payscope/internal/usecase"
)

func runVerifyChain(args []string) int {
	fs := flag.NewFlagSet("verify-chain", flag.ContinueOnError)
	configPath := fs.String("config", "payscope.yaml", "path to the YAML config file")
	companyID := fs.String("company", "", "verify only this company's entries")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	_, store, err := openStore(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		return 1
	}

	audit := usecase.NewAuditService(store.AuditLogs(), nil)

	var result domain.ChainVerification
	if *companyID != "" {
		result, err = audit.VerifyCompany(context.Background(), *companyID)
	} else {
		result, err = audit.Verify(context.Background())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify chain: %v\n", err)
		return 1
	}

	fmt.Printf("chain valid, %d entries checked\n", result.Count)
	return 0
}
