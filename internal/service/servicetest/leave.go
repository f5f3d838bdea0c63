package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type LeaveTypes struct {
	mu   sync.Mutex
	Rows map[string]*leave.LeaveType
}

func NewLeaveTypes(types ...leave.LeaveType) *LeaveTypes {
	s := &LeaveTypes{Rows: map[string]*leave.LeaveType{}}
	for _, t := range types {
		t := t
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.Rows[t.ID] = &t
	}
	return s
}

func (s *LeaveTypes) Create(ctx context.Context, t leave.LeaveType) (leave.LeaveType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.Rows[t.ID] = &t
	return t, nil
}

func (s *LeaveTypes) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Rows[id]
	if !ok {
		return leave.LeaveType{}, pgx.ErrNoRows
	}
	return *t, nil
}

func (s *LeaveTypes) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.Rows {
		if t.Code == code {
			return *t, nil
		}
	}
	return leave.LeaveType{}, pgx.ErrNoRows
}

func (s *LeaveTypes) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.LeaveType
	for _, t := range s.Rows {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *LeaveTypes) Update(ctx context.Context, t leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Rows[t.ID] = &t
	return nil
}

func (s *LeaveTypes) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.Rows, id)
	return nil
}

type Balances struct {
	mu   sync.Mutex
	Rows map[string]*leave.LeaveBalance
}

func NewBalances() *Balances {
	return &Balances{Rows: map[string]*leave.LeaveBalance{}}
}

// Find returns a copy of the (user, type, year, month) row.
func (s *Balances) Find(userID, leaveTypeID string, year, month int) (leave.LeaveBalance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.Rows {
		if b.UserID == userID && b.LeaveTypeID == leaveTypeID && b.Year == year && b.Month == month {
			return *b, true
		}
	}
	return leave.LeaveBalance{}, false
}

func (s *Balances) CreateIfMissing(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, bool, error) {
	if existing, ok := s.Find(b.UserID, b.LeaveTypeID, b.Year, b.Month); ok {
		return existing, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	s.Rows[b.ID] = &b
	return b, true, nil
}

func (s *Balances) Upsert(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	existing, ok := s.Find(b.UserID, b.LeaveTypeID, b.Year, b.Month)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		b.ID = uuid.NewString()
		s.Rows[b.ID] = &b
		return b, nil
	}
	row := s.Rows[existing.ID]
	row.TotalLeaves = b.TotalLeaves
	row.CarriedForward = b.CarriedForward
	return *row, nil
}

func (s *Balances) Get(ctx context.Context, userID, leaveTypeID string, year, month int) (leave.LeaveBalance, error) {
	b, ok := s.Find(userID, leaveTypeID, year, month)
	if !ok {
		return leave.LeaveBalance{}, pgx.ErrNoRows
	}
	return b, nil
}

func (s *Balances) GetForUpdate(ctx context.Context, userID, leaveTypeID string, year, month int) (leave.LeaveBalance, error) {
	return s.Get(ctx, userID, leaveTypeID, year, month)
}

func (s *Balances) GetByID(ctx context.Context, id string) (leave.LeaveBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Rows[id]
	if !ok {
		return leave.LeaveBalance{}, pgx.ErrNoRows
	}
	return *b, nil
}

func (s *Balances) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveBalance, error) {
	return s.GetByID(ctx, id)
}

func (s *Balances) ListByUserMonth(ctx context.Context, userID string, year, month int) ([]leave.LeaveBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.LeaveBalance
	for _, b := range s.Rows {
		if b.UserID == userID && b.Year == year && b.Month == month {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *Balances) List(ctx context.Context, filter leave.BalanceFilter) ([]leave.LeaveBalance, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.LeaveBalance
	for _, b := range s.Rows {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.LeaveTypeID != nil && b.LeaveTypeID != *filter.LeaveTypeID {
			continue
		}
		if filter.Year != nil && b.Year != *filter.Year {
			continue
		}
		if filter.Month != nil && b.Month != *filter.Month {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (s *Balances) Update(ctx context.Context, b leave.LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[b.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Rows[b.ID] = &b
	return nil
}

func (s *Balances) AddUsage(ctx context.Context, id string, usedDelta, lopDelta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	b.UsedLeaves = b.UsedLeaves.Add(usedDelta)
	b.LOPDays = b.LOPDays.Add(lopDelta)
	return nil
}

type Requests struct {
	mu   sync.Mutex
	Rows map[string]*leave.LeaveRequest

	// Locker, when set, records row locks.
	Locker *Transactor
}

func NewRequests() *Requests {
	return &Requests{Rows: map[string]*leave.LeaveRequest{}}
}

// Seed inserts r as-is and returns its ID.
func (s *Requests) Seed(r leave.LeaveRequest) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.Rows[r.ID] = &r
	return r.ID
}

func (s *Requests) Get(id string) leave.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.Rows[id]; ok {
		return *r
	}
	return leave.LeaveRequest{}
}

// All returns every request ordered by start date.
func (s *Requests) All() []leave.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]leave.LeaveRequest, 0, len(s.Rows))
	for _, r := range s.Rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (s *Requests) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.NewString()
	r.AppliedAt = time.Now()
	s.Rows[r.ID] = &r
	return r, nil
}

func (s *Requests) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Rows[id]
	if !ok {
		return leave.LeaveRequest{}, pgx.ErrNoRows
	}
	return *r, nil
}

func (s *Requests) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	s.Locker.RowLock("leave_request:" + id)
	return s.GetByID(ctx, id)
}

func (s *Requests) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, int64, error) {
	var out []leave.LeaveRequest
	for _, r := range s.All() {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.LeaveTypeID != nil && r.LeaveTypeID != *filter.LeaveTypeID {
			continue
		}
		if filter.From != nil && r.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.StartDate.After(*filter.To) {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (s *Requests) Update(ctx context.Context, r leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[r.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Rows[r.ID] = &r
	return nil
}

func (s *Requests) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	for _, r := range s.All() {
		if r.UserID != userID || r.ID == excludeID {
			continue
		}
		if r.Status != leave.StatusPending && r.Status != leave.StatusApproved {
			continue
		}
		if !r.StartDate.After(end) && !r.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Requests) ListApprovedCovering(ctx context.Context, userID string, day time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range s.All() {
		if r.UserID == userID && r.Status == leave.StatusApproved && r.Covers(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Requests) ListApprovedInRange(ctx context.Context, start, end time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range s.All() {
		if r.Status == leave.StatusApproved && !r.StartDate.After(end) && !r.EndDate.Before(start) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Requests) CountByStatus(ctx context.Context, status leave.RequestStatus) (int64, error) {
	var n int64
	for _, r := range s.All() {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Requests) CountApprovedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	rows, _ := s.ListApprovedInRange(ctx, start, end)
	return int64(len(rows)), nil
}

func (s *Requests) CountReviewedOn(ctx context.Context, status leave.RequestStatus, day time.Time) (int64, error) {
	var n int64
	for _, r := range s.All() {
		if r.Status == status && r.ReviewedAt != nil && r.ReviewedAt.Format("2006-01-02") == day.Format("2006-01-02") {
			n++
		}
	}
	return n, nil
}

type Allocations struct {
	mu       sync.Mutex
	Rows     map[string]*leave.AllocationEntry
	compOffs *CompOffs
}

// NewAllocations joins comp-off expiry from compOffs.
func NewAllocations(compOffs *CompOffs) *Allocations {
	return &Allocations{Rows: map[string]*leave.AllocationEntry{}, compOffs: compOffs}
}

// ForRequest returns copies of a request's entries in any state.
func (s *Allocations) ForRequest(requestID string) []leave.AllocationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.AllocationEntry
	for _, e := range s.Rows {
		if e.LeaveRequestID == requestID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Allocations) Create(ctx context.Context, e leave.AllocationEntry) (leave.AllocationEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	s.Rows[e.ID] = &e
	return e, nil
}

func (s *Allocations) ListByRequest(ctx context.Context, requestID string, state leave.AllocationState) ([]leave.AllocationEntry, error) {
	var out []leave.AllocationEntry
	for _, e := range s.ForRequest(requestID) {
		if e.State != state {
			continue
		}
		if e.CompOffID != nil && s.compOffs != nil {
			exp := s.compOffs.Get(*e.CompOffID).ExpiresOn
			e.CompOffExpiresOn = &exp
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Allocations) UpdateDays(ctx context.Context, id string, days decimal.Decimal, state leave.AllocationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.Rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	e.Days = days
	e.State = state
	return nil
}

func (s *Allocations) ReleaseHeld(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.Rows {
		if e.LeaveRequestID == requestID && e.State == leave.StateHeld {
			e.State = leave.StateReleased
		}
	}
	return nil
}

func (s *Allocations) HeldCompOff(ctx context.Context, userID, excludeRequestID string) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, e := range s.Rows {
		if e.UserID == userID && e.State == leave.StateHeld && e.Source == leave.SourceCompOff && e.LeaveRequestID != excludeRequestID && e.CompOffID != nil {
			out[*e.CompOffID] = out[*e.CompOffID].Add(e.Days)
		}
	}
	return out, nil
}

func (s *Allocations) MoveHeldCompOff(ctx context.Context, fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.Rows {
		if e.State == leave.StateHeld && e.CompOffID != nil && *e.CompOffID == fromID {
			to := toID
			e.CompOffID = &to
		}
	}
	return nil
}

func (s *Allocations) HeldPaid(ctx context.Context, balanceID, excludeRequestID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, e := range s.Rows {
		if e.State == leave.StateHeld && e.Source == leave.SourcePaid && e.LeaveRequestID != excludeRequestID && e.LeaveBalanceID != nil && *e.LeaveBalanceID == balanceID {
			total = total.Add(e.Days)
		}
	}
	return total, nil
}

type Holidays struct {
	mu   sync.Mutex
	Rows map[string]*leave.Holiday
}

func NewHolidays(holidays ...leave.Holiday) *Holidays {
	s := &Holidays{Rows: map[string]*leave.Holiday{}}
	for _, h := range holidays {
		h := h
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		s.Rows[h.ID] = &h
	}
	return s
}

func (s *Holidays) Create(ctx context.Context, h leave.Holiday) (leave.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Rows {
		if existing.Date.Equal(h.Date) {
			return leave.Holiday{}, leave.ErrHolidayExists
		}
	}
	h.ID = uuid.NewString()
	s.Rows[h.ID] = &h
	return h, nil
}

func (s *Holidays) GetByID(ctx context.Context, id string) (leave.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.Rows[id]
	if !ok {
		return leave.Holiday{}, pgx.ErrNoRows
	}
	return *h, nil
}

func (s *Holidays) ListBetween(ctx context.Context, start, end time.Time) ([]leave.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.Holiday
	for _, h := range s.Rows {
		if !h.Date.Before(start) && !h.Date.After(end) {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Holidays) ListByYear(ctx context.Context, year int) ([]leave.Holiday, error) {
	return s.ListBetween(ctx, time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC))
}

func (s *Holidays) Update(ctx context.Context, h leave.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rows[h.ID] = &h
	return nil
}

func (s *Holidays) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.Rows, id)
	return nil
}
