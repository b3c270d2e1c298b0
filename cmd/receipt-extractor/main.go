package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-extractor/internal/extraction"
	"github.com/zombor/receipt-extractor/internal/receipt"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	opts, fs, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if opts.showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := setupLogger(opts.logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Initialize extractor
	extractor, err := extraction.New(opts.extractor)
	if err != nil {
		slog.Error("Failed to initialize extractor", "error", err)
		os.Exit(1)
	}
	if opts.cachePath != "" {
		slog.Info("Opening text cache...", "path", opts.cachePath)
		extractor, err = extraction.NewCache(opts.cachePath, extractor)
		if err != nil {
			slog.Error("Failed to open text cache", "error", err)
			os.Exit(1)
		}
	}
	defer extractor.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, extractor, opts.minCodeDigits, opts.inDir, opts.outDir, opts.dbPath, opts.tables); err != nil {
		slog.Error("Extraction failed", "error", err)
		extractor.Close()
		os.Exit(1)
	}
}

// options holds the parsed command line
type options struct {
	inDir         string
	outDir        string
	dbPath        string
	extractor     string
	cachePath     string
	minCodeDigits int
	tables        receipt.Tables
	logLevel      string
	showVersion   bool
}

// parseFlags reads args and RECEIPT_EXTRACTOR_* environment variables
func parseFlags(args []string) (*options, *ff.FlagSet, error) {
	fs := ff.NewFlagSet("receipt-extractor")
	var (
		inDir          = fs.StringLong("in", "./receipts", "Directory containing receipt PDFs")
		outDir         = fs.StringLong("out", "./output", "Directory for the CSV files")
		dbPath         = fs.StringLong("db", "", "SQLite database to load the tables into (optional)")
		extractorName  = fs.StringLong("extractor", "fitz", "PDF text extractor: 'fitz' or 'pdf'")
		cachePath      = fs.StringLong("cache", "", "Extracted text cache file (optional)")
		minCodeDigits  = fs.IntLong("min-code-digits", receipt.DefaultMinCodeDigits, "Shortest digit run treated as an article code")
		lineItemsTable = fs.StringLong("line-items-table", receipt.DefaultLineItemsTable, "Line items table name")
		purchasesTable = fs.StringLong("purchases-table", receipt.DefaultPurchasesTable, "Purchases table name")
		articlesTable  = fs.StringLong("articles-table", receipt.DefaultArticlesTable, "Articles table name")
		logLevel       = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix("RECEIPT_EXTRACTOR"),
	); err != nil {
		return nil, fs, err
	}

	return &options{
		inDir:         *inDir,
		outDir:        *outDir,
		dbPath:        *dbPath,
		extractor:     *extractorName,
		cachePath:     *cachePath,
		minCodeDigits: *minCodeDigits,
		tables: receipt.Tables{
			LineItems: *lineItemsTable,
			Purchases: *purchasesTable,
			Articles:  *articlesTable,
		},
		logLevel:    *logLevel,
		showVersion: *showVersion,
	}, fs, nil
}

func run(ctx context.Context, extractor extraction.Extractor, minCodeDigits int, inDir, outDir, dbPath string, tables receipt.Tables) error {
	slog.Info("Processing receipts...", "dir", inDir)
	service := receipt.NewService(extractor, minCodeDigits)
	batch, err := service.ProcessDirectory(ctx, inDir)
	if err != nil {
		return err
	}

	store, err := receipt.NewLocalStorage(outDir)
	if err != nil {
		return err
	}
	if err := receipt.NewCSVSink(store).Write(batch); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	slog.Info("Wrote CSV files",
		"dir", outDir,
		"documents", len(batch.Documents),
		"line_items", len(batch.LineItems),
		"purchases", len(batch.Purchases),
		"articles", len(batch.Articles),
	)

	if dbPath == "" {
		return nil
	}
	db, err := receipt.NewSQLiteDB(dbPath, tables)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Load(ctx, batch); err != nil {
		return fmt.Errorf("loading database: %w", err)
	}
	slog.Info("Loaded database", "path", dbPath)
	return nil
}

func setupLogger(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}
