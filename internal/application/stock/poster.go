package stock

import (
	"context"
	"errors"
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
)

// ConflictRetryAttempts bounds how often a stock write is retried after an
// optimistic-lock conflict before the conflict is surfaced to the caller.
const ConflictRetryAttempts = 3

const conflictRetryBackoff = 25 * time.Millisecond

// WithConflictRetry re-runs fn after a concurrency conflict. Each attempt
// has to reload its aggregates inside fn; retrying with stale state would
// just conflict again. Any other error aborts immediately.
func WithConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < ConflictRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * conflictRetryBackoff):
			}
		}

		err = fn()
		if err == nil || !isConflict(err) {
			return err
		}
	}
	return err
}

func isConflict(err error) bool {
	return errors.Is(err, shared.ErrConcurrencyConflict) ||
		shared.HasCode(err, shared.CodeConcurrency)
}

// Poster folds ledger entries into balances inside an open transaction.
// It is the single write path to stock_balances and stock_movements.
type Poster struct {
	ledger *stock.Ledger
}

func NewPoster() *Poster {
	return &Poster{ledger: stock.NewLedger()}
}

// Post loads the position under lock, applies the entry under the
// warehouse mode's valuation rule and persists balance plus journal row.
// It returns the mutated balance so callers can publish its events after
// commit.
func (p *Poster) Post(ctx context.Context, repos TransactionalRepositories, companyID uuid.UUID, warehouseID uuid.UUID, productID uuid.UUID, mode warehouse.OperatingMode, entry stock.Entry) (*stock.Balance, error) {
	balance, err := repos.Balances().FindForUpdate(ctx, companyID, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance, err = repos.Balances().GetOrCreate(ctx, companyID, warehouseID, productID)
		if err != nil {
			return nil, err
		}
	}

	movement, err := p.ledger.Post(balance, mode, entry)
	if err != nil {
		return nil, err
	}

	if err := repos.Balances().SaveWithLock(ctx, balance); err != nil {
		return nil, err
	}
	if err := repos.Movements().Append(ctx, movement); err != nil {
		return nil, err
	}
	return balance, nil
}
