package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

type Attendances struct {
	mu   sync.Mutex
	Rows map[string]*attendance.Attendance

	// Locker, when set, records row locks.
	Locker *Transactor
}

func NewAttendances() *Attendances {
	return &Attendances{Rows: map[string]*attendance.Attendance{}}
}

// Find returns a copy of the (user, date) row.
func (s *Attendances) Find(userID string, date time.Time) (attendance.Attendance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.Rows {
		if a.UserID == userID && sameDay(a.Date, date) {
			return *a, true
		}
	}
	return attendance.Attendance{}, false
}

func (s *Attendances) filter(keep func(attendance.Attendance) bool) []attendance.Attendance {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range s.Rows {
		if keep(*a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (s *Attendances) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	s.Rows[a.ID] = &a
	return a, nil
}

func (s *Attendances) CreateIfMissing(ctx context.Context, a attendance.Attendance) (bool, error) {
	if _, ok := s.Find(a.UserID, a.Date); ok {
		return false, nil
	}
	_, err := s.Create(ctx, a)
	return err == nil, err
}

func (s *Attendances) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Rows[id]
	if !ok {
		return attendance.Attendance{}, pgx.ErrNoRows
	}
	return *a, nil
}

func (s *Attendances) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	a, ok := s.Find(userID, date)
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Attendances) GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	s.Locker.RowLock("attendance:" + userID)
	return s.GetByUserAndDate(ctx, userID, date)
}

func (s *Attendances) Update(ctx context.Context, a attendance.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Rows[a.ID] = &a
	return nil
}

func (s *Attendances) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.Rows, id)
	return nil
}

func (s *Attendances) List(ctx context.Context, f attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	rows := s.filter(func(a attendance.Attendance) bool {
		if f.UserID != nil && a.UserID != *f.UserID {
			return false
		}
		if f.Status != nil && a.EffectiveStatus() != *f.Status {
			return false
		}
		if f.From != nil && a.Date.Before(*f.From) {
			return false
		}
		return f.To == nil || !a.Date.After(*f.To)
	})
	return rows, int64(len(rows)), nil
}

func (s *Attendances) ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	return s.filter(func(a attendance.Attendance) bool {
		return a.UserID == userID && !a.Date.Before(start) && !a.Date.After(end)
	}), nil
}

func (s *Attendances) ListByEffectiveStatus(ctx context.Context, userID string, start, end time.Time, status attendance.Status) ([]attendance.Attendance, error) {
	return s.filter(func(a attendance.Attendance) bool {
		return a.UserID == userID && !a.Date.Before(start) && !a.Date.After(end) && a.EffectiveStatus() == status
	}), nil
}

func (s *Attendances) ListOpenSessions(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	return s.filter(func(a attendance.Attendance) bool {
		return sameDay(a.Date, date) && a.PunchIn != nil && a.PunchOut == nil
	}), nil
}

func (s *Attendances) CountByEffectiveStatus(ctx context.Context, date time.Time) (map[attendance.Status]int64, error) {
	out := map[attendance.Status]int64{}
	for _, a := range s.filter(func(a attendance.Attendance) bool { return sameDay(a.Date, date) }) {
		out[a.EffectiveStatus()]++
	}
	return out, nil
}

func (s *Attendances) MonthlySummary(ctx context.Context, start, end time.Time) ([]attendance.MonthlySummary, error) {
	byUser := map[string]*attendance.MonthlySummary{}
	var order []string
	for _, a := range s.filter(func(a attendance.Attendance) bool { return !a.Date.Before(start) && !a.Date.After(end) }) {
		sum, ok := byUser[a.UserID]
		if !ok {
			sum = &attendance.MonthlySummary{UserID: a.UserID, UserName: a.UserName, TotalHours: decimal.Zero}
			byUser[a.UserID] = sum
			order = append(order, a.UserID)
		}
		switch a.EffectiveStatus() {
		case attendance.StatusPresent:
			sum.Present++
		case attendance.StatusHalfDay:
			sum.HalfDay++
		case attendance.StatusAbsent:
			sum.Absent++
		case attendance.StatusOnLeave:
			sum.OnLeave++
		}
		if a.IsOffDay && a.PunchIn != nil {
			sum.OffDayWorked++
		}
		if a.IsLate {
			sum.Late++
		}
		if a.IsWFH {
			sum.WFH++
		}
		sum.TotalHours = sum.TotalHours.Add(a.WorkingHours)
	}
	out := make([]attendance.MonthlySummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	return out, nil
}

type Shifts struct {
	mu   sync.Mutex
	Rows map[string]*attendance.Shift
}

func NewShifts(shifts ...attendance.Shift) *Shifts {
	s := &Shifts{Rows: map[string]*attendance.Shift{}}
	for _, sh := range shifts {
		sh := sh
		if sh.ID == "" {
			sh.ID = uuid.NewString()
		}
		s.Rows[sh.ID] = &sh
	}
	return s
}

func (s *Shifts) Create(ctx context.Context, sh attendance.Shift) (attendance.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh.ID = uuid.NewString()
	s.Rows[sh.ID] = &sh
	return sh, nil
}

func (s *Shifts) GetByID(ctx context.Context, id string) (attendance.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.Rows[id]
	if !ok {
		return attendance.Shift{}, pgx.ErrNoRows
	}
	return *sh, nil
}

func (s *Shifts) List(ctx context.Context) ([]attendance.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.Shift
	for _, sh := range s.Rows {
		out = append(out, *sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Shifts) Update(ctx context.Context, sh attendance.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[sh.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Rows[sh.ID] = &sh
	return nil
}

func (s *Shifts) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.Rows, id)
	return nil
}

type Locations struct {
	mu   sync.Mutex
	Rows map[string]*attendance.OfficeLocation
}

func NewLocations(locs ...attendance.OfficeLocation) *Locations {
	s := &Locations{Rows: map[string]*attendance.OfficeLocation{}}
	for _, l := range locs {
		l := l
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		s.Rows[l.ID] = &l
	}
	return s
}

func (s *Locations) Create(ctx context.Context, l attendance.OfficeLocation) (attendance.OfficeLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = uuid.NewString()
	s.Rows[l.ID] = &l
	return l, nil
}

func (s *Locations) GetByID(ctx context.Context, id string) (attendance.OfficeLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.Rows[id]
	if !ok {
		return attendance.OfficeLocation{}, pgx.ErrNoRows
	}
	return *l, nil
}

func (s *Locations) List(ctx context.Context, activeOnly bool) ([]attendance.OfficeLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.OfficeLocation
	for _, l := range s.Rows {
		if activeOnly && !l.IsActive {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Locations) Update(ctx context.Context, l attendance.OfficeLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[l.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Rows[l.ID] = &l
	return nil
}

func (s *Locations) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.Rows, id)
	return nil
}

type Regularizations struct {
	mu   sync.Mutex
	Rows map[string]*attendance.Regularization
}

func NewRegularizations() *Regularizations {
	return &Regularizations{Rows: map[string]*attendance.Regularization{}}
}

func (s *Regularizations) Create(ctx context.Context, r attendance.Regularization) (attendance.Regularization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now()
	s.Rows[r.ID] = &r
	return r, nil
}

func (s *Regularizations) GetByID(ctx context.Context, id string) (attendance.Regularization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Rows[id]
	if !ok {
		return attendance.Regularization{}, pgx.ErrNoRows
	}
	return *r, nil
}

func (s *Regularizations) GetByIDForUpdate(ctx context.Context, id string) (attendance.Regularization, error) {
	return s.GetByID(ctx, id)
}

func (s *Regularizations) HasPending(ctx context.Context, userID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.Rows {
		if r.UserID == userID && sameDay(r.Date, date) && r.Status == attendance.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *Regularizations) List(ctx context.Context, f attendance.RequestFilter) ([]attendance.Regularization, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.Regularization
	for _, r := range s.Rows {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, int64(len(out)), nil
}

func (s *Regularizations) Update(ctx context.Context, r attendance.Regularization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[r.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Rows[r.ID] = &r
	return nil
}

func (s *Regularizations) CountPending(ctx context.Context) (int64, error) {
	status := attendance.RequestPending
	_, n, err := s.List(ctx, attendance.RequestFilter{Status: &status})
	return n, err
}

type WFHs struct {
	mu   sync.Mutex
	Rows map[string]*attendance.WFHRequest
}

func NewWFHs() *WFHs {
	return &WFHs{Rows: map[string]*attendance.WFHRequest{}}
}

func (s *WFHs) Create(ctx context.Context, r attendance.WFHRequest) (attendance.WFHRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Rows {
		if existing.UserID == r.UserID && sameDay(existing.Date, r.Date) &&
			(existing.Status == attendance.RequestPending || existing.Status == attendance.RequestApproved) {
			return attendance.WFHRequest{}, attendance.ErrWFHExists
		}
	}
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now()
	s.Rows[r.ID] = &r
	return r, nil
}

func (s *WFHs) GetByID(ctx context.Context, id string) (attendance.WFHRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Rows[id]
	if !ok {
		return attendance.WFHRequest{}, pgx.ErrNoRows
	}
	return *r, nil
}

func (s *WFHs) GetByIDForUpdate(ctx context.Context, id string) (attendance.WFHRequest, error) {
	return s.GetByID(ctx, id)
}

func (s *WFHs) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.WFHRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.Rows {
		if r.UserID == userID && sameDay(r.Date, date) &&
			(r.Status == attendance.RequestPending || r.Status == attendance.RequestApproved) {
			out := *r
			return &out, nil
		}
	}
	return nil, nil
}

func (s *WFHs) List(ctx context.Context, f attendance.RequestFilter) ([]attendance.WFHRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.WFHRequest
	for _, r := range s.Rows {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, int64(len(out)), nil
}

func (s *WFHs) Update(ctx context.Context, r attendance.WFHRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[r.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Rows[r.ID] = &r
	return nil
}

func (s *WFHs) CountPending(ctx context.Context) (int64, error) {
	status := attendance.RequestPending
	_, n, err := s.List(ctx, attendance.RequestFilter{Status: &status})
	return n, err
}

func (s *WFHs) ApprovedUserIDs(ctx context.Context, date time.Time) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]bool{}
	for _, r := range s.Rows {
		if sameDay(r.Date, date) && r.Status == attendance.RequestApproved {
			out[r.UserID] = true
		}
	}
	return out, nil
}
