// Command catalog-import loads a bloom-stage table (CSV, XLSX or HTML) into
// an existing variety.
//
// Usage:
//
//	go run ./cmd/catalog-import -variety <uuid> -file stages.xlsx [-sheet Apple] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"agrisense/config"
	"agrisense/database"
	"agrisense/pkg/catalog/importer"
	"agrisense/pkg/catalog/repositoryImp"
	"agrisense/pkg/catalog/serviceImp"
	"agrisense/pkg/observability"
)

func main() {
	varietyID := flag.String("variety", "", "variety id the stages belong to")
	file := flag.String("file", "", "stage table (.csv, .xlsx or .html)")
	sheet := flag.String("sheet", "", "xlsx sheet name (default: first sheet)")
	dryRun := flag.Bool("dry-run", false, "parse and print, do not write")
	flag.Parse()

	if *file == "" || (*varietyID == "" && !*dryRun) {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*varietyID, *file, *sheet, *dryRun); err != nil {
		slog.Error("catalog import failed", "error", err)
		os.Exit(1)
	}
}

func run(varietyID, file, sheet string, dryRun bool) error {
	cfg := config.Load()
	observability.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	stages, err := importer.ReadFile(file, sheet)
	if err != nil {
		return err
	}
	if dryRun {
		for _, st := range stages {
			fmt.Printf("%2d  %-20s  %6.1f  %6.1f\n", st.Number, st.Name, st.CritTemp10, st.CritTemp90)
		}
		return nil
	}

	id, err := uuid.Parse(varietyID)
	if err != nil {
		return fmt.Errorf("invalid -variety: %w", err)
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	created, err := serviceImp.NewCatalogService(repositoryImp.New(db)).AddStages(context.Background(), id, stages)
	if err != nil {
		return err
	}
	slog.Info("stages imported", "variety_id", id, "count", len(created), "file", file)
	return nil
}
