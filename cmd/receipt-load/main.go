package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-extractor/internal/receipt"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// receipt-load loads previously written CSV files into SQLite without
// touching the PDFs again.
func main() {
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

	store, err := receipt.NewLocalStorage(opts.outDir)
	if err != nil {
		slog.Error("Failed to open output directory", "error", err)
		os.Exit(1)
	}
	batch, err := receipt.NewCSVSink(store).ReadBatch()
	if err != nil {
		slog.Error("Failed to read CSV files", "error", err)
		os.Exit(1)
	}

	tables := opts.tables
	db, err := receipt.NewSQLiteDB(opts.dbPath, tables)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Load(ctx, batch); err != nil {
		slog.Error("Failed to load database", "error", err)
		db.Close()
		os.Exit(1)
	}

	for _, table := range []string{tables.LineItems, tables.Purchases, tables.Articles} {
		n, err := db.Count(ctx, table)
		if err != nil {
			slog.Warn("Failed to count rows", "table", table, "error", err)
			continue
		}
		slog.Info("Loaded table", "table", table, "rows", n)
	}
}

// options holds the parsed command line
type options struct {
	outDir      string
	dbPath      string
	tables      receipt.Tables
	showVersion bool
}

// parseFlags reads args and RECEIPT_EXTRACTOR_* environment variables
func parseFlags(args []string) (*options, *ff.FlagSet, error) {
	fs := ff.NewFlagSet("receipt-load")
	var (
		outDir         = fs.StringLong("out", "./output", "Directory containing the CSV files")
		dbPath         = fs.StringLong("db", "receipts.db", "SQLite database path")
		lineItemsTable = fs.StringLong("line-items-table", receipt.DefaultLineItemsTable, "Line items table name")
		purchasesTable = fs.StringLong("purchases-table", receipt.DefaultPurchasesTable, "Purchases table name")
		articlesTable  = fs.StringLong("articles-table", receipt.DefaultArticlesTable, "Articles table name")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix("RECEIPT_EXTRACTOR"),
	); err != nil {
		return nil, fs, err
	}

	return &options{
		outDir: *outDir,
		dbPath: *dbPath,
		tables: receipt.Tables{
			LineItems: *lineItemsTable,
			Purchases: *purchasesTable,
			Articles:  *articlesTable,
		},
		showVersion: *showVersion,
	}, fs, nil
}
