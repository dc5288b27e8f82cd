// Package main provides the ingest CLI that embeds PDF books into the
// configured vector store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/app"
	"github.com/steentj/dho-sub001/internal/config"
	"github.com/steentj/dho-sub001/internal/core/ingestion_engine"
	"github.com/steentj/dho-sub001/internal/logging"
)

var (
	flagProvider    string
	flagStrategy    string
	flagChunkSize   int
	flagConcurrency int
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Book ingestion tool",
	Long:  "Fetches PDF books, chunks and embeds them, and stores the chunks for semantic search.",
}

var runCmd = &cobra.Command{
	Use:   "run <sources-file>",
	Short: "Ingest every book listed in a sources file",
	Long: `Ingests the books listed in a sources file.

The file is either one URL per line ('#' starts a comment) or, when it ends
in .yaml/.yml, a manifest of url/title/author entries. Books that the
selected provider already embedded are skipped.

Environment variables:
  PROVIDER           openai, ollama, gemini or dummy (default: openai)
  CHUNKING_STRATEGY  sentence_splitter or word_overlap
  CHUNK_SIZE         maximum words per chunk (default: 500)
  CONCURRENCY        books in flight (default: 5)
  STORE_BACKEND      postgres or qdrant (default: postgres)`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var importCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Embed and store pre-chunked books from a JSONL export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "embedding provider (overrides PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&flagStrategy, "strategy", "", "chunking strategy (overrides CHUNKING_STRATEGY)")
	rootCmd.PersistentFlags().IntVar(&flagChunkSize, "chunk-size", 0, "maximum words per chunk (overrides CHUNK_SIZE)")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "books processed in parallel (overrides CONCURRENCY)")
	rootCmd.AddCommand(runCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	sources, err := ingestion_engine.ReadSources(args[0])
	if err != nil {
		return fmt.Errorf("read sources: %w", err)
	}
	if len(sources) == 0 {
		fmt.Println("No sources to ingest.")
		return nil
	}

	return withApp(func(ctx context.Context, a *app.App) {
		fmt.Printf("Ingesting %d books with %s...\n", len(sources), a.Embedder.Name())
		printSummary(a.Ingestor.Run(ctx, sources))
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := ingestion_engine.ReadImportFile(f)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	return withApp(func(ctx context.Context, a *app.App) {
		fmt.Printf("Importing %d books with %s...\n", len(records), a.Embedder.Name())
		printSummary(a.Ingestor.Import(ctx, records))
	})
}

// withApp loads configuration, applies flag overrides and runs fn with a
// wired App. Only configuration and startup errors are returned; per-book
// failures show up in the summary.
func withApp(fn func(context.Context, *app.App)) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Must(cfg.LogDebug)
	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	fn(ctx, a)
	return nil
}

func applyFlags(cfg *config.Config) {
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagStrategy != "" {
		cfg.ChunkingStrategy = flagStrategy
	}
	if flagChunkSize > 0 {
		cfg.ChunkSize = flagChunkSize
	}
	if flagConcurrency > 0 {
		cfg.Concurrency = flagConcurrency
	}
}

func printSummary(br ingestion_engine.BatchResult) {
	fmt.Println()
	fmt.Printf("Run %s complete in %s\n", br.RunID, br.Duration.Round(time.Second))
	fmt.Printf("  Done:    %d\n", br.Done)
	fmt.Printf("  Skipped: %d\n", br.Skipped)
	fmt.Printf("  Failed:  %d\n", br.Failed)

	if br.Failed == 0 && br.Skipped == 0 {
		return
	}
	fmt.Println()
	for _, r := range br.Results {
		if r.Outcome == ingestion_engine.OutcomeDone {
			continue
		}
		fmt.Printf("  [%s] %s: %s\n", r.Outcome, r.URL, r.Reason)
	}
}
