package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/steentj/dho-sub001/internal/config"
	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

var _ core.BookStore = (*DatabaseClient)(nil)

// DatabaseClient is the PostgreSQL/pgvector BookStore.
type DatabaseClient struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]bool // chunk tables known to exist
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db, tables: make(map[string]bool)}, nil
}

// buildDSN appends verify-ca SSL parameters when a root certificate is
// configured.
func buildDSN(databaseURL, certPath string) (string, error) {
	if certPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(certPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", certPath, err)
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", certPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *DatabaseClient) FindBook(ctx context.Context, bookURL string) (*models.Book, error) {
	const q = `
		SELECT id, url, title, author, page_count, created_at
		FROM books WHERE url = $1
	`
	var b models.Book
	err := c.db.QueryRowContext(ctx, q, bookURL).Scan(&b.ID, &b.URL, &b.Title, &b.Author, &b.PageCount, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *DatabaseClient) ListBooks(ctx context.Context) ([]models.Book, error) {
	const q = `
		SELECT id, url, title, author, page_count, created_at
		FROM books
		ORDER BY title, url
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, &b.Author, &b.PageCount, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) HasEmbeddings(ctx context.Context, bookURL, provider, table string) (bool, error) {
	var exists bool
	if err := c.db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, quoteIdent(table)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	if !exists {
		return false, nil
	}

	var has bool
	if err := c.db.QueryRowContext(ctx, hasEmbeddingsSQL(table), bookURL, provider).Scan(&has); err != nil {
		return false, fmt.Errorf("check embeddings: %w", err)
	}
	return has, nil
}

// SaveBook writes the book row and all chunks in one transaction, so a
// failure leaves no partial chunks behind.
func (c *DatabaseClient) SaveBook(ctx context.Context, book *models.Book, table string, chunks []models.Chunk) (*models.Book, error) {
	if book == nil {
		return nil, errors.New("nil book")
	}
	if len(chunks) > 0 {
		if err := c.ensureChunkTable(ctx, table, len(chunks[0].Embedding)); err != nil {
			return nil, err
		}
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored, err := getOrCreateBook(ctx, tx, book)
	if err != nil {
		return nil, err
	}

	if len(chunks) > 0 {
		var already bool
		if err := tx.QueryRowContext(ctx, providerHasChunksSQL(table), stored.ID, chunks[0].Provider).Scan(&already); err != nil {
			return nil, fmt.Errorf("check existing chunks: %w", err)
		}
		if already {
			return stored, core.ErrAlreadyEmbedded
		}

		stmt, err := tx.PrepareContext(ctx, insertChunkSQL(table))
		if err != nil {
			return nil, fmt.Errorf("prepare chunk insert: %w", err)
		}
		defer stmt.Close()

		for i := range chunks {
			ch := &chunks[i]
			if _, err := stmt.ExecContext(ctx,
				stored.ID, ch.Page, ch.Ordinal, ch.Text, pgvector.NewVector(ch.Embedding), ch.Provider,
			); err != nil {
				return nil, fmt.Errorf("insert chunk %d: %w", ch.Ordinal, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// getOrCreateBook inserts the book unless its URL is taken and returns the
// row as stored. Concurrent inserts of one URL serialise on the unique index.
func getOrCreateBook(ctx context.Context, tx *sql.Tx, book *models.Book) (*models.Book, error) {
	const insert = `
		INSERT INTO books (url, title, author, page_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO NOTHING
		RETURNING id, url, title, author, page_count, created_at
	`
	const selectExisting = `
		SELECT id, url, title, author, page_count, created_at
		FROM books WHERE url = $1
	`

	var b models.Book
	err := tx.QueryRowContext(ctx, insert, book.URL, book.Title, book.Author, book.PageCount).
		Scan(&b.ID, &b.URL, &b.Title, &b.Author, &b.PageCount, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, selectExisting, book.URL).
			Scan(&b.ID, &b.URL, &b.Title, &b.Author, &b.PageCount, &b.CreatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("get or create book: %w", err)
	}
	return &b, nil
}

func (c *DatabaseClient) ensureChunkTable(ctx context.Context, table string, dim int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tables[table] {
		return nil
	}
	if dim <= 0 {
		return fmt.Errorf("chunk table %s: invalid dimension %d", table, dim)
	}
	if _, err := c.db.ExecContext(ctx, createChunkTableSQL(table, dim)); err != nil {
		return fmt.Errorf("create chunk table %s: %w", table, err)
	}
	c.tables[table] = true
	return nil
}

// Search runs the nearest-neighbour query against the provider's table.
func (c *DatabaseClient) Search(ctx context.Context, sq core.SearchQuery) ([]models.SearchHit, error) {
	q, err := searchSQL(sq.Table, sq.Operator)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, q, pgvector.NewVector(sq.Vector), sq.Provider, core.MinChunkLength, sq.Threshold)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", sq.Table, err)
	}
	defer rows.Close()

	var out []models.SearchHit
	for rows.Next() {
		var h models.SearchHit
		if err := rows.Scan(&h.BookURL, &h.Title, &h.Author, &h.Page, &h.Chunk, &h.Distance); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
