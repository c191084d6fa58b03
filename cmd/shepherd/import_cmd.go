package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/parishsource/shepherd/migration/persistence"
	"github.com/parishsource/shepherd/migration/services"
	"github.com/parishsource/shepherd/migration/source"
	"github.com/parishsource/shepherd/pkg/configuration"
	"github.com/parishsource/shepherd/pkg/eventbus"
)

type importOptions struct {
	sourceDir string
	apply     bool
	chunkSize int
	namespace string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	conf := configuration.Use()

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import staged church records into the destination database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.sourceDir, "source", conf.Import.SourceDir, "Directory containing staged .jsonl table dumps")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Write to the destination database (default is dry-run)")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", conf.Import.ChunkSize, "Rows per checkpoint chunk")
	cmd.Flags().StringVar(&opts.namespace, "namespace", conf.Import.Namespace, "Foreign key prefix for this run")

	return cmd
}

func runImport(ctx context.Context, opts importOptions) error {
	if strings.TrimSpace(opts.sourceDir) == "" {
		return withCode(exitUsage, fmt.Errorf("--source is required"))
	}
	if opts.chunkSize <= 0 {
		return withCode(exitUsage, fmt.Errorf("--chunk-size must be positive, got %d", opts.chunkSize))
	}

	conf := configuration.Use()
	log := conf.Logger()

	scanner, err := source.Open(opts.sourceDir)
	if err != nil {
		return withCode(exitValidation, err)
	}

	var store persistence.Store
	if opts.apply {
		pool, err := connectDB(ctx, conf)
		if err != nil {
			return withCode(exitDB, err)
		}
		defer pool.Close()
		store = persistence.NewPgStore(pool)
	} else {
		log.Info("dry-run: no changes will be written, pass --apply to persist")
		store = persistence.NewMemoryStore()
	}

	publisher := eventbus.NewEventPublisher(log)
	publisher.Subscribe(func(e services.ProgressEvent) {
		fmt.Printf("\r%3d%% %s", e.Percent, e.Message)
		if e.Percent >= 100 {
			fmt.Println()
		}
	})

	sink := services.NewProgressSink(log, publisher)
	orch := services.NewOrchestrator(scanner, store, sink, publisher, log, opts.chunkSize, opts.namespace)

	summary, err := orch.Execute(ctx)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		return withCode(exitAborted, err)
	}
	return nil
}

func connectDB(ctx context.Context, conf *configuration.Configuration) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return pool, nil
}

func printSummary(summary *services.Summary) {
	fmt.Printf("run %s in %s\n", summary.State, summary.Finished.Sub(summary.Started).Round(time.Millisecond))
	for _, t := range summary.Tables {
		fmt.Printf("  %-24s imported=%d skipped=%d\n", t.Table, t.Imported, t.Skipped)
	}
	if len(summary.SkippedServingKeys) > 0 {
		fmt.Printf("  unresolved serving teams: %s\n", strings.Join(summary.SkippedServingKeys, ", "))
	}
}
