package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Users struct {
	mu   sync.Mutex
	Rows map[string]*user.User
}

func NewUsers(users ...user.User) *Users {
	s := &Users{Rows: map[string]*user.User{}}
	for _, u := range users {
		s.Seed(u)
	}
	return s
}

// Seed inserts u, defaulting ID, and returns its ID.
func (s *Users) Seed(u user.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.Rows[u.ID] = &u
	return u.ID
}

func (s *Users) sorted(keep func(user.User) bool) []user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []user.User
	for _, u := range s.Rows {
		if keep(*u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Users) Create(ctx context.Context, u user.User) (user.User, error) {
	u.CreatedAt = time.Now()
	u.ID = s.Seed(u)
	return u, nil
}

func (s *Users) GetByID(ctx context.Context, id string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Rows[id]
	if !ok {
		return user.User{}, pgx.ErrNoRows
	}
	return *u, nil
}

func (s *Users) GetByMobile(ctx context.Context, mobile string) (user.User, error) {
	rows := s.sorted(func(u user.User) bool { return u.Mobile == mobile })
	if len(rows) == 0 {
		return user.User{}, pgx.ErrNoRows
	}
	return rows[0], nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (user.User, error) {
	rows := s.sorted(func(u user.User) bool { return u.Email != nil && strings.EqualFold(*u.Email, email) })
	if len(rows) == 0 {
		return user.User{}, pgx.ErrNoRows
	}
	return rows[0], nil
}

func (s *Users) GetByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return s.sorted(func(u user.User) bool { return want[u.ID] }), nil
}

func (s *Users) ExistsByMobileOrEmail(ctx context.Context, mobile string, email *string, excludeID string) (bool, bool, error) {
	var mobileTaken, emailTaken bool
	for _, u := range s.sorted(func(u user.User) bool { return u.ID != excludeID }) {
		if u.Mobile == mobile {
			mobileTaken = true
		}
		if email != nil && u.Email != nil && strings.EqualFold(*u.Email, *email) {
			emailTaken = true
		}
	}
	return mobileTaken, emailTaken, nil
}

func (s *Users) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	rows := s.sorted(func(u user.User) bool {
		if filter.Role != nil && u.Role != *filter.Role {
			return false
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			return false
		}
		return filter.Search == "" || strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search))
	})
	return rows, int64(len(rows)), nil
}

func (s *Users) ListActive(ctx context.Context) ([]user.User, error) {
	return s.sorted(func(u user.User) bool { return u.IsActive }), nil
}

func (s *Users) ListAdmins(ctx context.Context) ([]user.User, error) {
	return s.sorted(func(u user.User) bool { return u.IsActive && u.IsAdmin() }), nil
}

func (s *Users) CountAdmins(ctx context.Context) (int64, error) {
	admins, _ := s.ListAdmins(ctx)
	return int64(len(admins)), nil
}

func (s *Users) Update(ctx context.Context, req user.UpdateUserRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Rows[req.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if req.Mobile != nil {
		u.Mobile = *req.Mobile
	}
	if req.Email != nil {
		u.Email = req.Email
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Role != nil {
		u.Role = user.Role(*req.Role)
	}
	if req.Department != nil {
		u.Department = *req.Department
	}
	if req.Designation != nil {
		u.Designation = *req.Designation
	}
	if req.WeeklyOff != nil {
		u.WeeklyOff = user.Weekday(*req.WeeklyOff)
	}
	if req.ShiftID != nil {
		u.ShiftID = req.ShiftID
	}
	if req.ClearShift {
		u.ShiftID = nil
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.IsPermanentWFH != nil {
		u.IsPermanentWFH = *req.IsPermanentWFH
	}
	return nil
}

func (s *Users) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Rows[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = &passwordHash
	return nil
}

func (s *Users) UpdatePhoto(ctx context.Context, userID, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Rows[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PhotoURL = &photoURL
	return nil
}

func (s *Users) LinkGoogleAccount(ctx context.Context, googleID, email string) (user.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return user.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	provider := "google"
	row := s.Rows[u.ID]
	row.OAuthProvider = &provider
	row.OAuthProviderID = &googleID
	return *row, nil
}

func (s *Users) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsActive = false
	return nil
}

type ProfileUpdates struct {
	mu    sync.Mutex
	Rows  map[string]*user.ProfileUpdateRequest
	users *Users
}

// NewProfileUpdates joins user names from users.
func NewProfileUpdates(users *Users) *ProfileUpdates {
	return &ProfileUpdates{Rows: map[string]*user.ProfileUpdateRequest{}, users: users}
}

func (s *ProfileUpdates) Create(ctx context.Context, req user.ProfileUpdateRequest) (user.ProfileUpdateRequest, error) {
	if pending, _ := s.HasPending(ctx, req.UserID); pending {
		return user.ProfileUpdateRequest{}, user.ErrProfileUpdatePending
	}
	s.mu.Lock()
	req.ID = uuid.NewString()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	s.Rows[req.ID] = &req
	s.mu.Unlock()
	return s.GetByID(ctx, req.ID)
}

func (s *ProfileUpdates) GetByID(ctx context.Context, id string) (user.ProfileUpdateRequest, error) {
	s.mu.Lock()
	r, ok := s.Rows[id]
	s.mu.Unlock()
	if !ok {
		return user.ProfileUpdateRequest{}, pgx.ErrNoRows
	}
	out := *r
	if u, err := s.users.GetByID(ctx, out.UserID); err == nil {
		out.UserName = u.Name
	}
	return out, nil
}

func (s *ProfileUpdates) GetByIDForUpdate(ctx context.Context, id string) (user.ProfileUpdateRequest, error) {
	return s.GetByID(ctx, id)
}

func (s *ProfileUpdates) HasPending(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.Rows {
		if r.UserID == userID && r.Status == user.ProfileUpdatePending {
			return true, nil
		}
	}
	return false, nil
}

func (s *ProfileUpdates) List(ctx context.Context, filter user.ProfileUpdateFilter) ([]user.ProfileUpdateRequest, int64, error) {
	s.mu.Lock()
	var ids []string
	for id, r := range s.Rows {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		ids = append(ids, id)
	}
	s.mu.Unlock()

	out := make([]user.ProfileUpdateRequest, 0, len(ids))
	for _, id := range ids {
		r, _ := s.GetByID(ctx, id)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (s *ProfileUpdates) Update(ctx context.Context, req user.ProfileUpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Rows[req.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	r.Status = req.Status
	r.ReviewedBy = req.ReviewedBy
	r.ReviewedAt = req.ReviewedAt
	r.ReviewRemarks = req.ReviewRemarks
	return nil
}
