package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, mobile, email, name, password_hash, role, department, designation,
	weekly_off, shift_id, photo_url, is_active, is_permanent_wfh,
	oauth_provider, oauth_provider_id, joined_at, created_at, updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row scanner) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Mobile, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Department, &u.Designation,
		&u.WeeklyOff, &u.ShiftID, &u.PhotoURL, &u.IsActive, &u.IsPermanentWFH,
		&u.OAuthProvider, &u.OAuthProviderID, &u.JoinedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *userRepositoryImpl) queryUsers(ctx context.Context, query string, args ...any) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (
			mobile, email, name, password_hash, role, department, designation,
			weekly_off, shift_id, is_active, is_permanent_wfh, oauth_provider, oauth_provider_id, joined_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.Mobile, newUser.Email, newUser.Name, newUser.PasswordHash, newUser.Role,
		newUser.Department, newUser.Designation, int(newUser.WeeklyOff), newUser.ShiftID,
		newUser.IsActive, newUser.IsPermanentWFH, newUser.OAuthProvider, newUser.OAuthProviderID, newUser.JoinedAt,
	))
	if err != nil {
		switch {
		case isUniqueViolation(err, "users_mobile_key"):
			return user.User{}, user.ErrMobileExists
		case isUniqueViolation(err, "users_email_key"):
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByMobile implements user.UserRepository.
func (r *userRepositoryImpl) GetByMobile(ctx context.Context, mobile string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE mobile = $1`, mobile))
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// GetByIDs implements user.UserRepository.
func (r *userRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[]) ORDER BY name`, ids)
}

// ExistsByMobileOrEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByMobileOrEmail(ctx context.Context, mobile string, email *string, excludeID string) (bool, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			EXISTS(SELECT 1 FROM users WHERE mobile = $1 AND ($3 = '' OR id::text <> $3)),
			EXISTS(SELECT 1 FROM users WHERE $2::text IS NOT NULL AND LOWER(email) = LOWER($2) AND ($3 = '' OR id::text <> $3))
	`
	var mobileTaken, emailTaken bool
	if err := q.QueryRow(ctx, query, mobile, email, excludeID).Scan(&mobileTaken, &emailTaken); err != nil {
		return false, false, err
	}
	return mobileTaken, emailTaken, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w where
	if s := strings.TrimSpace(filter.Search); s != "" {
		w.add("(name ILIKE $%[1]d OR mobile ILIKE $%[1]d OR email ILIKE $%[1]d)", "%"+s+"%")
	}
	if filter.Role != nil {
		w.add("role = $%d", *filter.Role)
	}
	if filter.IsActive != nil {
		w.add("is_active = $%d", *filter.IsActive)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	users, err := r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond+` ORDER BY name, id `+paging, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListActive implements user.UserRepository.
func (r *userRepositoryImpl) ListActive(ctx context.Context) ([]user.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY name, id`)
}

// ListAdmins implements user.UserRepository.
func (r *userRepositoryImpl) ListAdmins(ctx context.Context) ([]user.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE is_active AND role = 'admin' ORDER BY name, id`)
}

// CountAdmins implements user.UserRepository.
func (r *userRepositoryImpl) CountAdmins(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active AND role = 'admin'`).Scan(&n)
	return n, err
}

// Update implements user.UserRepository. Only non-nil fields are written.
func (r *userRepositoryImpl) Update(ctx context.Context, req user.UpdateUserRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make([]string, 0)
	args := make([]any, 0)
	set := func(column string, value any) {
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Mobile != nil {
		set("mobile", *req.Mobile)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Role != nil {
		set("role", *req.Role)
	}
	if req.Department != nil {
		set("department", *req.Department)
	}
	if req.Designation != nil {
		set("designation", *req.Designation)
	}
	if req.WeeklyOff != nil {
		set("weekly_off", *req.WeeklyOff)
	}
	if req.ClearShift {
		updates = append(updates, "shift_id = NULL")
	} else if req.ShiftID != nil {
		set("shift_id", *req.ShiftID)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}
	if req.IsPermanentWFH != nil {
		set("is_permanent_wfh", *req.IsPermanentWFH)
	}
	updates = append(updates, "updated_at = NOW()")

	args = append(args, req.ID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(updates, ", "), len(args))
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users_mobile_key"):
			return user.ErrMobileExists
		case isUniqueViolation(err, "users_email_key"):
			return user.ErrEmailExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepositoryImpl) exec(ctx context.Context, query string, args ...any) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
}

// UpdatePhoto implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePhoto(ctx context.Context, userID, photoURL string) error {
	return r.exec(ctx, `UPDATE users SET photo_url = $1, updated_at = NOW() WHERE id = $2`, photoURL, userID)
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET oauth_provider = 'google', oauth_provider_id = $1, updated_at = NOW()
		WHERE LOWER(email) = LOWER($2)
		RETURNING ` + userColumns
	return scanUser(q.QueryRow(ctx, query, googleID, email))
}

// Deactivate implements user.UserRepository.
func (r *userRepositoryImpl) Deactivate(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
}
