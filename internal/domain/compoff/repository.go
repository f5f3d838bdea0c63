package compoff

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CompOffRepository interface {
	// Create inserts c; when (user_id, source, source_key) already exists it returns ErrCompOffExists.
	Create(ctx context.Context, c CompOff) (CompOff, error)
	GetByID(ctx context.Context, id string) (CompOff, error)
	GetByIDForUpdate(ctx context.Context, id string) (CompOff, error)
	// ListUsable returns earned credits not expired on day, soonest expiry first, locked for update.
	ListUsable(ctx context.Context, userID string, day time.Time) ([]CompOff, error)
	List(ctx context.Context, filter Filter) ([]CompOff, int64, error)
	// Consume marks the row used with credit reduced to days.
	Consume(ctx context.Context, id string, days decimal.Decimal, usedDate time.Time) error
	// Restore returns a used row to earned with the given credit.
	Restore(ctx context.Context, id string, days decimal.Decimal) error
	// SetCredit changes credit_days without touching status.
	SetCredit(ctx context.Context, id string, days decimal.Decimal) error
	Cancel(ctx context.Context, id string) error
	// ExpireBefore marks every earned row with expires_on < day expired and returns the affected rows.
	ExpireBefore(ctx context.Context, day time.Time) ([]CompOff, error)
	SumUsable(ctx context.Context, userID string, day time.Time) (decimal.Decimal, error)
	CountEarnedBetween(ctx context.Context, userID string, start, end time.Time) (int64, decimal.Decimal, error)
}
