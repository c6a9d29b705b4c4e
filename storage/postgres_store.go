package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"apartment-watcher/models"
)

// PostgresStore persists the listing state to PostgreSQL. Sequence order is
// kept in the position column: 0 is the most recently discovered listing.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS seen_listings (
			id       TEXT    PRIMARY KEY,
			position INTEGER NOT NULL,
			url      TEXT    NOT NULL DEFAULT '',
			title    TEXT    NOT NULL DEFAULT '',
			price    TEXT    NOT NULL DEFAULT '',
			date     TEXT    NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_seen_listings_position ON seen_listings(position);
	`)
	return err
}

// Load returns every stored listing, most recent first.
func (ps *PostgresStore) Load(ctx context.Context) ([]models.Listing, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT id, url, title, price, date
		FROM seen_listings
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: load: %v", models.ErrCorruptState, err)
	}
	defer rows.Close()

	listings := make([]models.Listing, 0)
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.URL, &l.Title, &l.Price, &l.Date); err != nil {
			return nil, fmt.Errorf("%w: postgres: scan row: %v", models.ErrCorruptState, err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: postgres: iterate rows: %v", models.ErrCorruptState, err)
	}
	return listings, nil
}

// Save replaces the stored sequence in a single transaction.
func (ps *PostgresStore) Save(ctx context.Context, listings []models.Listing) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: postgres: begin: %v", models.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM seen_listings"); err != nil {
		return fmt.Errorf("%w: postgres: clear: %v", models.ErrPersistence, err)
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := insertBatch(ctx, tx, i, listings[i:end]); err != nil {
			return fmt.Errorf("%w: postgres: insert: %v", models.ErrPersistence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: postgres: commit: %v", models.ErrPersistence, err)
	}
	return nil
}

func insertBatch(ctx context.Context, tx *sql.Tx, offset int, batch []models.Listing) error {
	query, args := buildInsert(offset, batch)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// buildInsert renders a multi-row INSERT for batch, numbering positions from
// offset. Duplicate ids keep their first (most recent) position.
func buildInsert(offset int, batch []models.Listing) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*6)

	for idx, l := range batch {
		base := idx * 6
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))
		valueArgs = append(valueArgs,
			l.ID, offset+idx, l.URL, l.Title, l.Price, l.Date)
	}

	query := fmt.Sprintf(`
		INSERT INTO seen_listings (id, position, url, title, price, date)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	return query, valueArgs
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
