package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"geoform/internal/atlas"
	"geoform/internal/config"
	"geoform/internal/models"
	"geoform/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	file := flag.String("file", "", "Path to the map snapshot JSON to import")
	dryRun := flag.Bool("dry-run", false, "Only parse the snapshot and report what would be kept")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	fmt.Printf("Starting import from file: %s\n", *file)

	ctx := context.Background()
	reports, err := repository.NewSnapshot(*file).ListReports(ctx)
	if err != nil {
		fmt.Printf("Error parsing snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parsed %d reports\n", len(reports))
	printPreview(reports)
	if *dryRun {
		return
	}

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.DBSource == "" {
		fmt.Println("Error: DB_SOURCE is not configured")
		os.Exit(1)
	}

	// Connect to DB
	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := repository.NewRepository(pool)

	// Ensure table exists
	if err := repo.EnsureSchema(ctx); err != nil {
		fmt.Printf("Error creating table: %v\n", err)
		os.Exit(1)
	}

	// Insert records
	if _, err := repo.ReplaceReports(ctx, reports); err != nil {
		fmt.Printf("Error inserting reports: %v\n", err)
		os.Exit(1)
	}

	// Verify data
	if err := verifyImport(ctx, repo, len(reports)); err != nil {
		fmt.Printf("Error verifying import: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully imported %d reports\n", len(reports))
}

// printPreview shows how many reports the default tables would place.
func printPreview(reports []models.RawReport) {
	a, stats := atlas.Build(atlas.DefaultTables(), reports)
	fmt.Printf("Atlas preview: %d placed, %d skipped, depth %d\n", stats.Accepted, stats.SkippedTotal(), a.Depth())
	for reason, n := range stats.Skipped {
		fmt.Printf("  skipped %d: %s\n", n, reason)
	}
}

func verifyImport(ctx context.Context, repo *repository.Repository, expectedCount int) error {
	count, err := repo.CountReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to count reports: %w", err)
	}

	if count != expectedCount {
		return fmt.Errorf("report count mismatch: expected %d, got %d", expectedCount, count)
	}
	return nil
}
