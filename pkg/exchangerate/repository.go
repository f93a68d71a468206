package exchangerate

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	// FindRate returns the stored rate for (currency, month, year), or nil when absent.
	FindRate(ctx context.Context, currency string, month, year int) (*Rate, error)
	// MonthFetched reports whether any rate row exists for (month, year), regardless of currency.
	MonthFetched(ctx context.Context, month, year int) (bool, error)
	// StoreAll inserts all rates in one batch. Rows that collide with an already
	// stored (currency, month, year) are skipped, so concurrent fetches of the
	// same month stay idempotent.
	StoreAll(ctx context.Context, rates []Rate) error
}

type RepoImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) FindRate(ctx context.Context, currency string, month, year int) (*Rate, error) {
	query := `SELECT currency, month, year, value FROM exchange_rate WHERE currency = $1 AND month = $2 AND year = $3`
	var rate Rate
	err := r.db.QueryRow(ctx, query, currency, month, year).Scan(&rate.Currency, &rate.Month, &rate.Year, &rate.Value)
	if err == pgx.ErrNoRows {
		return nil, nil
	} else if err != nil {
		log.Errorf("failed to query exchange rate: %v", err)
		return nil, err
	}
	return &rate, nil
}

func (r *RepoImpl) MonthFetched(ctx context.Context, month, year int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM exchange_rate WHERE month = $1 AND year = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, month, year).Scan(&exists); err != nil {
		log.Errorf("failed to check fetched month: %v", err)
		return false, err
	}
	return exists, nil
}

func (r *RepoImpl) StoreAll(ctx context.Context, rates []Rate) error {
	if len(rates) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `INSERT INTO exchange_rate (currency, month, year, value) VALUES ($1, $2, $3, $4)
				ON CONFLICT (currency, month, year) DO NOTHING`
	for _, rate := range rates {
		batch.Queue(query, rate.Currency, rate.Month, rate.Year, rate.Value)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		log.Errorf("failed to store exchange rates: %v", err)
		return err
	}
	return nil
}
