package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type CompOffs struct {
	mu   sync.Mutex
	Rows map[string]*compoff.CompOff
}

func NewCompOffs() *CompOffs {
	return &CompOffs{Rows: map[string]*compoff.CompOff{}}
}

// Seed inserts c as-is and returns its ID.
func (s *CompOffs) Seed(c compoff.CompOff) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.SourceKey == "" {
		c.SourceKey = c.ID
	}
	s.Rows[c.ID] = &c
	return c.ID
}

// Get returns a copy of the row, or the zero value.
func (s *CompOffs) Get(id string) compoff.CompOff {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.Rows[id]; ok {
		return *c
	}
	return compoff.CompOff{}
}

// ByUser returns copies of a user's rows ordered by expiry then creation.
func (s *CompOffs) ByUser(userID string) []compoff.CompOff {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []compoff.CompOff
	for _, c := range s.Rows {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresOn.Equal(out[j].ExpiresOn) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ExpiresOn.Before(out[j].ExpiresOn)
	})
	return out
}

func (s *CompOffs) Create(ctx context.Context, c compoff.CompOff) (compoff.CompOff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Rows {
		if existing.UserID == c.UserID && existing.Source == c.Source && existing.SourceKey == c.SourceKey {
			return compoff.CompOff{}, compoff.ErrCompOffExists
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.Rows[c.ID] = &c
	return c, nil
}

func (s *CompOffs) GetByID(ctx context.Context, id string) (compoff.CompOff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Rows[id]
	if !ok {
		return compoff.CompOff{}, pgx.ErrNoRows
	}
	return *c, nil
}

func (s *CompOffs) GetByIDForUpdate(ctx context.Context, id string) (compoff.CompOff, error) {
	return s.GetByID(ctx, id)
}

func (s *CompOffs) ListUsable(ctx context.Context, userID string, day time.Time) ([]compoff.CompOff, error) {
	var out []compoff.CompOff
	for _, c := range s.ByUser(userID) {
		if c.UsableOn(day) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CompOffs) List(ctx context.Context, filter compoff.Filter) ([]compoff.CompOff, int64, error) {
	s.mu.Lock()
	var out []compoff.CompOff
	for _, c := range s.Rows {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, *c)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].EarnedDate.After(out[j].EarnedDate) })
	return out, int64(len(out)), nil
}

func (s *CompOffs) Consume(ctx context.Context, id string, days decimal.Decimal, usedDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Status = compoff.StatusUsed
	c.CreditDays = days
	c.UsedDate = &usedDate
	return nil
}

func (s *CompOffs) Restore(ctx context.Context, id string, days decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Status = compoff.StatusEarned
	c.CreditDays = days
	c.UsedDate = nil
	return nil
}

func (s *CompOffs) SetCredit(ctx context.Context, id string, days decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.CreditDays = days
	return nil
}

func (s *CompOffs) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Status = compoff.StatusCancelled
	return nil
}

func (s *CompOffs) ExpireBefore(ctx context.Context, day time.Time) ([]compoff.CompOff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []compoff.CompOff
	for _, c := range s.Rows {
		if c.Status == compoff.StatusEarned && c.ExpiresOn.Before(day) {
			c.Status = compoff.StatusExpired
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *CompOffs) SumUsable(ctx context.Context, userID string, day time.Time) (decimal.Decimal, error) {
	rows, _ := s.ListUsable(ctx, userID, day)
	total := decimal.Zero
	for _, c := range rows {
		total = total.Add(c.CreditDays)
	}
	return total, nil
}

func (s *CompOffs) CountEarnedBetween(ctx context.Context, userID string, start, end time.Time) (int64, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	total := decimal.Zero
	for _, c := range s.Rows {
		if c.UserID == userID && c.Source == compoff.SourceOffDayWork && !c.EarnedDate.Before(start) && !c.EarnedDate.After(end) {
			n++
			total = total.Add(c.CreditDays)
		}
	}
	return n, total, nil
}
