package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"docchunk/internal/chunker"
	"docchunk/internal/config"
	"docchunk/internal/contextual"
	"docchunk/internal/embedder"
	"docchunk/internal/extractor"
	"docchunk/internal/indexer"
	"docchunk/internal/storage"
	"docchunk/internal/vectorstore"
	"docchunk/pkg/types"
)

const version = "0.1.0"

var (
	cfgFile    string
	verbose    bool
	sourceType string
	force      bool
	jsonOut    bool
	limit      int

	cfg    *config.Config
	logger *log.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docchunk",
	Short: "docchunk - semantic chunking and ingestion for technical documents",
	Long: `docchunk splits markdown documents into semantically coherent chunks,
prefixes each chunk with its document context, embeds the chunks, and
stores them in a Qdrant collection for retrieval.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Chunk, embed, and store documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, catalog, err := buildIndexer()
		if err != nil {
			return err
		}
		defer func() { _ = catalog.Close() }()

		stats, err := idx.IngestPaths(cmd.Context(), args, &indexer.Config{
			EmbedBatchSize: cfg.Embedder.BatchSize,
			Force:          force,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Ingested %d documents (%d chunks) in %s\n",
			stats.DocumentsIngested, stats.ChunksCreated, stats.Duration.Round(time.Millisecond))
		if stats.DocumentsSkipped > 0 {
			fmt.Printf("Skipped %d unchanged documents\n", stats.DocumentsSkipped)
		}
		if stats.DocumentsFailed > 0 {
			for _, msg := range stats.ErrorMessages {
				fmt.Fprintf(os.Stderr, "error: %s\n", msg)
			}
			return fmt.Errorf("%d documents failed", stats.DocumentsFailed)
		}
		return nil
	},
}

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Chunk a document and print the chunks without storing them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunks, err := chunkFile(args[0])
		if err != nil {
			return err
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(chunks)
		}
		for _, chunk := range chunks {
			fmt.Printf("--- %s (chapter=%q section=%q page=%d, %d tokens)\n",
				chunk.ID, chunk.Chapter, chunk.Section, chunk.Page, chunk.TokenCount())
			fmt.Println(chunk.Content)
		}
		fmt.Printf("%d chunks\n", len(chunks))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Chunk a document and report chunk quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunks, err := chunkFile(args[0])
		if err != nil {
			return err
		}

		report := chunker.ValidateBatch(chunks)
		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("Chunks:        %d\n", report.TotalChunks)
		fmt.Printf("Average score: %.3f\n", report.AverageScore)
		fmt.Printf("Issue rate:    %.1f%%\n", report.IssueRate)
		for _, issue := range report.Issues {
			fmt.Printf("  %s: %v\n", issue.ChunkID, issue.Issues)
		}
		if !report.Passed {
			return fmt.Errorf("quality below threshold")
		}
		fmt.Println("Passed")
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored chunks by semantic similarity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, catalog, err := buildIndexer()
		if err != nil {
			return err
		}
		defer func() { _ = catalog.Close() }()

		results, err := idx.Search(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		for _, res := range results {
			fmt.Printf("[%.3f] %s", res.Score, res.Chunk.ID)
			if res.Chunk.Chapter != "" {
				fmt.Printf(" (%s)", res.Chunk.Chapter)
			}
			fmt.Println()
			fmt.Println(res.Chunk.Content)
			fmt.Println()
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docchunk %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON output")

	ingestCmd.Flags().StringVar(&sourceType, "source-type", string(types.SourceBook),
		"source type recorded on each chunk (book, doc, org, procedure)")
	ingestCmd.Flags().BoolVar(&force, "force", false, "re-ingest documents even if unchanged")

	searchCmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, perr := log.ParseLevel(cfg.Logging.Level)
	if perr != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// newPrefixBuilder builds the contextual prefix builder from the loaded config
func newPrefixBuilder() *contextual.Builder {
	return contextual.New(contextual.Config{
		IncludeSource:    *cfg.Contextual.IncludeSource,
		IncludeChapter:   *cfg.Contextual.IncludeChapter,
		IncludeSection:   *cfg.Contextual.IncludeSection,
		IncludePage:      *cfg.Contextual.IncludePage,
		Separator:        cfg.Contextual.Separator,
		MaxContextLength: cfg.Contextual.MaxContextLength,
	})
}

// newChunker builds the chunker from the loaded config and the
// --source-type flag
func newChunker() (*chunker.Chunker, error) {
	return chunker.New(chunker.Config{
		ChunkSize:    cfg.Chunking.ChunkSize,
		ChunkOverlap: cfg.Chunking.ChunkOverlap,
		MinChunkSize: cfg.Chunking.MinChunkSize,
		SourceType:   types.SourceType(sourceType),
	}, newPrefixBuilder())
}

func chunkFile(path string) ([]types.Chunk, error) {
	chk, err := newChunker()
	if err != nil {
		return nil, err
	}
	content, err := extractor.NewMarkdown().Extract(path)
	if err != nil {
		return nil, err
	}
	return chk.ChunkContent(content)
}

// buildIndexer wires the full pipeline from the loaded config. The caller
// owns the returned catalog and must close it.
func buildIndexer() (*indexer.Indexer, storage.Storage, error) {
	chk, err := newChunker()
	if err != nil {
		return nil, nil, err
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedder.Provider,
		BaseURL:   cfg.Embedder.BaseURL,
		APIKey:    cfg.Embedder.APIKey(),
		Model:     cfg.Embedder.Model,
		CacheSize: cfg.Embedder.CacheSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	vectors := vectorstore.NewQdrant(vectorstore.QdrantConfig{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
		Timeout:    cfg.QdrantTimeout(),
	})

	catalog, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	prefixer := contextual.NewBatchProcessor(newPrefixBuilder())
	return indexer.New(chk, prefixer, emb, vectors, catalog, logger), catalog, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
