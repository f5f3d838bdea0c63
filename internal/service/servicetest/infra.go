package servicetest

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
)

// Transactor runs fn directly. Lock records the keys it was asked for;
// fakes holding a Transactor record their row locks in the same list
// prefixed with "row:".
type Transactor struct {
	mu    sync.Mutex
	Locks []string
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func (t *Transactor) Lock(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Locks = append(t.Locks, key)
	return nil
}

// RowLock records a SELECT ... FOR UPDATE on key. A nil Transactor ignores it.
func (t *Transactor) RowLock(key string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Locks = append(t.Locks, "row:"+key)
}

// ActivityLog records entries in memory.
type ActivityLog struct {
	mu      sync.Mutex
	Entries []activity.Entry
}

func (a *ActivityLog) Log(ctx context.Context, actorID *string, action activity.Action, entityType, entityID, description string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, activity.Entry{
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	})
}

func (a *ActivityLog) List(ctx context.Context, filter activity.Filter) (activity.ListResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	resp := activity.ListResponse{TotalCount: int64(len(a.Entries)), Page: 1, Limit: len(a.Entries), TotalPages: 1}
	for _, e := range a.Entries {
		resp.Entries = append(resp.Entries, activity.EntryResponse{
			ActorID:     e.ActorID,
			Action:      string(e.Action),
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			Description: e.Description,
		})
	}
	return resp, nil
}

// Actions returns the recorded actions in order.
func (a *ActivityLog) Actions() []activity.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]activity.Action, 0, len(a.Entries))
	for _, e := range a.Entries {
		out = append(out, e.Action)
	}
	return out
}
