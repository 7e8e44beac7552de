package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres backs the ledger with a uniqueness constraint on transaction_id;
// the conflict-free insert is the atomic check-and-set.
type Postgres struct {
	DB *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{DB: db}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.DB.Exec(ctx, `
CREATE TABLE IF NOT EXISTS unlock_ledger(
  transaction_id text PRIMARY KEY,
  first_seen_at  timestamptz NOT NULL,
  outcome        text NOT NULL
)`)
	return err
}

func (p *Postgres) Reserve(ctx context.Context, transactionID string) (bool, error) {
	tag, err := p.DB.Exec(ctx, `
INSERT INTO unlock_ledger(transaction_id, first_seen_at, outcome)
VALUES($1, $2, $3)
ON CONFLICT (transaction_id) DO NOTHING
`, transactionID, time.Now().UTC(), OutcomePending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (p *Postgres) Record(ctx context.Context, transactionID string, outcome Outcome) error {
	tag, err := p.DB.Exec(ctx, `
UPDATE unlock_ledger SET outcome=$2 WHERE transaction_id=$1
`, transactionID, outcome)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Outcome(ctx context.Context, transactionID string) (Entry, error) {
	var e Entry
	err := p.DB.QueryRow(ctx, `
SELECT transaction_id, first_seen_at, outcome FROM unlock_ledger WHERE transaction_id=$1
`, transactionID).Scan(&e.TransactionID, &e.FirstSeenAt, &e.Outcome)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (p *Postgres) Clear(ctx context.Context, transactionID string) error {
	tag, err := p.DB.Exec(ctx, `
DELETE FROM unlock_ledger WHERE transaction_id=$1
`, transactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
