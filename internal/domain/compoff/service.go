package compoff

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Draw is an amount taken from, or returned to, one comp-off row.
type Draw struct {
	CompOffID string
	Days      decimal.Decimal
}

type CompOffService interface {
	ListMine(ctx context.Context, userID string, today time.Time) (MyCompOffResponse, error)
	List(ctx context.Context, filter Filter) (ListCompOffResponse, error)
	Grant(ctx context.Context, actorID string, req GrantRequest) (CompOffResponse, error)
	Cancel(ctx context.Context, actorID, id string) (CompOffResponse, error)

	// Ledger operations, called inside the caller's transaction.
	Earn(ctx context.Context, c CompOff) (CompOff, bool, error)
	Usable(ctx context.Context, userID string, day time.Time) ([]CompOff, error)
	// Consume returns the earned remainder row when the draw was partial, nil otherwise.
	Consume(ctx context.Context, draw Draw, usedDate time.Time) (*CompOff, error)
	Restore(ctx context.Context, draw Draw) error
	ExpireBefore(ctx context.Context, day time.Time) ([]CompOff, error)
}
