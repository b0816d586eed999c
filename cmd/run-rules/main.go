// run-rules выполняет движок решений один раз и печатает сводку.
// Запуск: STORAGE_DRIVER=memory go run ./cmd/run-rules [-json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"leasing_hub/internal/app"
	"leasing_hub/internal/config"
	"leasing_hub/internal/lib/logger/sl"
	"leasing_hub/internal/services/decision"

	"github.com/fatih/color"
)

func main() {
	asJSON := flag.Bool("json", false, "print the full execution report as JSON")
	flag.Parse()

	cfg := config.MustLoad()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx := context.Background()
	application, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("failed to init application", sl.Err(err))
		os.Exit(1)
	}
	defer application.Close()

	res, err := application.Runner.RunOnce(ctx)
	if err != nil {
		log.Error("decision engine run failed", sl.Err(err))
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Error("failed to encode report", sl.Err(err))
			os.Exit(1)
		}
	} else {
		printReport(res.Report, res.ArchiveObject)
	}

	if !res.Report.Success {
		os.Exit(1)
	}
}

func printReport(report decision.ExecutionReport, archiveObject string) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if !report.Success {
		fmt.Printf("%s %s\n", bad("FAILED"), report.Error)
		return
	}

	fmt.Printf("%s started %s, took %d ms\n",
		ok("OK"), report.StartedAt.Format("2006-01-02 15:04:05"), report.ExecutionTimeMs)
	fmt.Printf("actions: %s total, %s successful\n",
		bold(report.TotalActions), bold(report.SuccessfulActions))
	if archiveObject != "" {
		fmt.Printf("archived as %s\n", archiveObject)
	}

	for _, r := range report.Results {
		status := ok("✓")
		if !r.Success {
			status = bad("✗")
		}
		entity := "-"
		if r.EntityID != nil {
			entity = r.EntityID.String()
		}
		fmt.Printf("%s %-24s %s\n", status, r.RuleName, dim(entity))
		for _, action := range r.ActionsApplied {
			fmt.Printf("    %s\n", action)
		}
		if r.Error != "" {
			fmt.Printf("    %s\n", bad(r.Error))
		}
	}
}
