package receipt

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

// Default table names for the relational load
const (
	DefaultLineItemsTable = "line_items"
	DefaultPurchasesTable = "purchases"
	DefaultArticlesTable  = "articles"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Tables names the three tables a batch is loaded into
type Tables struct {
	LineItems string
	Purchases string
	Articles  string
}

// DefaultTables returns the standard table names
func DefaultTables() Tables {
	return Tables{
		LineItems: DefaultLineItemsTable,
		Purchases: DefaultPurchasesTable,
		Articles:  DefaultArticlesTable,
	}
}

func (t Tables) validate() error {
	for _, name := range []string{t.LineItems, t.Purchases, t.Articles} {
		if !tableName.MatchString(name) {
			return fmt.Errorf("invalid table name %q", name)
		}
	}
	return nil
}

// SQLiteDB loads batches into a local SQLite database
type SQLiteDB struct {
	db     *sql.DB
	tables Tables
}

// NewSQLiteDB opens (or creates) the database file at path
func NewSQLiteDB(path string, tables Tables) (*SQLiteDB, error) {
	if err := tables.validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	return &SQLiteDB{db: db, tables: tables}, nil
}

// Load replaces the three tables with the rows of batch in one transaction
func (s *SQLiteDB) Load(ctx context.Context, batch *Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.loadLineItems(ctx, tx, batch.LineItems); err != nil {
		return err
	}
	if err := s.loadPurchases(ctx, tx, batch.Purchases); err != nil {
		return err
	}
	if err := s.loadArticles(ctx, tx, batch.Articles); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDB) loadLineItems(ctx context.Context, tx *sql.Tx, items []LineItem) error {
	table := s.tables.LineItems
	stmt, err := replaceTable(ctx, tx, table, `
		article_name TEXT,
		article_id TEXT,
		unit_price REAL,
		amount REAL,
		unit_measurement TEXT,
		total REAL,
		purchase_timestamp TEXT,
		purchase_id TEXT,
		store_name TEXT`, 9)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx,
			item.ArticleName,
			item.ArticleID,
			item.UnitPrice,
			item.Amount,
			item.UnitMeasurement,
			item.Total,
			item.PurchaseTimestamp,
			item.PurchaseID,
			item.StoreName,
		)
		if err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteDB) loadPurchases(ctx context.Context, tx *sql.Tx, purchases []Purchase) error {
	table := s.tables.Purchases
	stmt, err := replaceTable(ctx, tx, table, `
		id TEXT,
		timestamp TEXT,
		store_name TEXT,
		total REAL,
		tax REAL,
		net REAL,
		gross REAL,
		discount REAL,
		rounding REAL,
		currency TEXT`, 10)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range purchases {
		_, err := stmt.ExecContext(ctx,
			p.ID,
			p.Timestamp,
			p.StoreName,
			p.Total,
			p.Tax,
			p.Net,
			p.Gross,
			p.Discount,
			p.Rounding,
			p.Currency,
		)
		if err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteDB) loadArticles(ctx context.Context, tx *sql.Tx, articles []Article) error {
	table := s.tables.Articles
	stmt, err := replaceTable(ctx, tx, table, `
		article_name TEXT,
		article_id TEXT`, 2)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range articles {
		if _, err := stmt.ExecContext(ctx, a.ArticleName, a.ArticleID); err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return nil
}

// replaceTable drops and recreates table and prepares its insert statement
func replaceTable(ctx context.Context, tx *sql.Tx, table, columns string, n int) (*sql.Stmt, error) {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, table)); err != nil {
		return nil, fmt.Errorf("dropping %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE "%s" (%s)`, table, columns)); err != nil {
		return nil, fmt.Errorf("creating %s: %w", table, err)
	}

	placeholders := "?"
	for i := 1; i < n; i++ {
		placeholders += ", ?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO "%s" VALUES (%s)`, table, placeholders))
	if err != nil {
		return nil, fmt.Errorf("preparing insert into %s: %w", table, err)
	}
	return stmt, nil
}

// Count returns the number of rows in table
func (s *SQLiteDB) Count(ctx context.Context, table string) (int, error) {
	if !tableName.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
