package universe

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
)

// Repository persists the instrument universe in Postgres. The universe is
// replaced wholesale on each load; screening runs only read it.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Replace swaps the stored universe for the given set atomically.
func (r *Repository) Replace(ctx context.Context, instruments []contracts.Instrument) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin universe replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM screener.universe`); err != nil {
		return fmt.Errorf("clear universe: %w", err)
	}

	query := `
		INSERT INTO screener.universe (symbol, isin, updated_at)
		VALUES ($1, $2, NOW())
	`
	for _, instrument := range instruments {
		if _, err := tx.Exec(ctx, query, instrument.Symbol, instrument.ISIN); err != nil {
			return fmt.Errorf("insert instrument %s: %w", instrument.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit universe replace: %w", err)
	}
	return nil
}

// List returns the stored universe ordered by symbol.
func (r *Repository) List(ctx context.Context) ([]contracts.Instrument, error) {
	query := `
		SELECT symbol, isin
		FROM screener.universe
		ORDER BY symbol
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query universe: %w", err)
	}
	defer rows.Close()

	var instruments []contracts.Instrument
	for rows.Next() {
		var instrument contracts.Instrument
		if err := rows.Scan(&instrument.Symbol, &instrument.ISIN); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		instruments = append(instruments, instrument)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate universe: %w", err)
	}

	return instruments, nil
}

// Count returns the stored universe size.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM screener.universe`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count universe: %w", err)
	}
	return count, nil
}
