package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"payscope/internal/engine/payfairness"
	"payscope/internal/infra/salarycrypt"
	"payscope/internal/usecase"
)

func runFairness(args []string) int {
	fs := flag.NewFlagSet("fairness", flag.ContinueOnError)
	configPath := fs.String("config", "payscope.yaml", "path to the YAML config file")
	companyID := fs.String("company", "", "company to analyze")
	month := fs.String("month", "", "score month, YYYY-MM")
	groupBy := fs.String("group-by", "company", "cohort grouping: company, department, or role")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *companyID == "" || *month == "" {
		fmt.Fprintln(os.Stderr, "fairness requires --company and --month")
		return 1
	}

	group := payfairness.GroupBy(*groupBy)
	switch group {
	case payfairness.GroupByCompany, payfairness.GroupByDepartment, payfairness.GroupByRole:
	default:
		fmt.Fprintf(os.Stderr, "unknown group-by %q\n", *groupBy)
		return 1
	}

	cfg, store, err := openStore(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		return 1
	}

	svc := usecase.NewFairnessService(store.Employees(), store.Scores(), salarycrypt.New(cfg.EncryptionSecret))
	analyses, err := svc.Analyze(context.Background(), *companyID, *month, group, payfairness.Thresholds{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		return 1
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(analyses); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		return 1
	}
	return 0
}
