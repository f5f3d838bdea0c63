package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `a.id, a.user_id, a.date, a.punch_in, a.punch_out,
	a.punch_in_latitude, a.punch_in_longitude, a.punch_out_latitude, a.punch_out_longitude,
	a.punch_in_ip, a.punch_out_ip, a.working_hours, a.status, a.status_override,
	a.is_off_day, a.is_wfh, a.is_auto_punch_out, a.is_late, a.notes, a.created_at, a.updated_at,
	u.name`

const attendanceFrom = ` FROM attendances a JOIN users u ON u.id = a.user_id `

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row scanner) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Date, &att.PunchIn, &att.PunchOut,
		&att.PunchInLatitude, &att.PunchInLongitude, &att.PunchOutLatitude, &att.PunchOutLongitude,
		&att.PunchInIP, &att.PunchOutIP, &att.WorkingHours, &att.Status, &att.StatusOverride,
		&att.IsOffDay, &att.IsWFH, &att.IsAutoPunchOut, &att.IsLate, &att.Notes, &att.CreatedAt, &att.UpdatedAt,
		&att.UserName,
	)
	return att, err
}

func (a *attendanceRepository) query(ctx context.Context, query string, args ...any) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, att)
	}
	return out, rows.Err()
}

func attendanceArgs(att attendance.Attendance) []any {
	return []any{
		att.UserID, att.Date, att.PunchIn, att.PunchOut,
		att.PunchInLatitude, att.PunchInLongitude, att.PunchOutLatitude, att.PunchOutLongitude,
		att.PunchInIP, att.PunchOutIP, att.WorkingHours, att.Status, att.StatusOverride,
		att.IsOffDay, att.IsWFH, att.IsAutoPunchOut, att.IsLate, att.Notes,
	}
}

const attendanceInsert = `
	INSERT INTO attendances (
		user_id, date, punch_in, punch_out,
		punch_in_latitude, punch_in_longitude, punch_out_latitude, punch_out_longitude,
		punch_in_ip, punch_out_ip, working_hours, status, status_override,
		is_off_day, is_wfh, is_auto_punch_out, is_late, notes
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var id string
	err := q.QueryRow(ctx, attendanceInsert+` RETURNING id`, attendanceArgs(newAttendance)...).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "attendances_user_id_date_key") {
			return attendance.Attendance{}, attendance.ErrAlreadyPunchedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return a.GetByID(ctx, id)
}

// CreateIfMissing implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateIfMissing(ctx context.Context, att attendance.Attendance) (bool, error) {
	q := GetQuerier(ctx, a.db)
	tag, err := q.Exec(ctx, attendanceInsert+` ON CONFLICT (user_id, date) DO NOTHING`, attendanceArgs(att)...)
	if err != nil {
		return false, fmt.Errorf("failed to create attendance: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)
	return scanAttendance(q.QueryRow(ctx, `SELECT `+attendanceColumns+attendanceFrom+`WHERE a.id = $1`, id))
}

func (a *attendanceRepository) getByUserAndDate(ctx context.Context, userID string, date time.Time, lock string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)
	att, err := scanAttendance(q.QueryRow(ctx, `SELECT `+attendanceColumns+attendanceFrom+`WHERE a.user_id = $1 AND a.date = $2`+lock, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &att, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	return a.getByUserAndDate(ctx, userID, date, "")
}

// GetByUserAndDateForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	return a.getByUserAndDate(ctx, userID, date, " FOR UPDATE OF a")
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			punch_in = $1, punch_out = $2,
			punch_in_latitude = $3, punch_in_longitude = $4, punch_out_latitude = $5, punch_out_longitude = $6,
			punch_in_ip = $7, punch_out_ip = $8, working_hours = $9, status = $10, status_override = $11,
			is_off_day = $12, is_wfh = $13, is_auto_punch_out = $14, is_late = $15, notes = $16,
			updated_at = NOW()
		WHERE id = $17
	`
	tag, err := q.Exec(ctx, query,
		att.PunchIn, att.PunchOut,
		att.PunchInLatitude, att.PunchInLongitude, att.PunchOutLatitude, att.PunchOutLongitude,
		att.PunchInIP, att.PunchOutIP, att.WorkingHours, att.Status, att.StatusOverride,
		att.IsOffDay, att.IsWFH, att.IsAutoPunchOut, att.IsLate, att.Notes,
		att.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)
	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	var w where
	if filter.UserID != nil && *filter.UserID != "" {
		w.add("a.user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		w.add("COALESCE(a.status_override, a.status) = $%d", *filter.Status)
	}
	if filter.From != nil {
		w.add("a.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("a.date <= $%d", *filter.To)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendances a WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	rows, err := a.query(ctx, `SELECT `+attendanceColumns+attendanceFrom+`WHERE `+cond+` ORDER BY a.date DESC, u.name `+paging, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByUserBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	return a.query(ctx, `SELECT `+attendanceColumns+attendanceFrom+`
		WHERE a.user_id = $1 AND a.date BETWEEN $2 AND $3
		ORDER BY a.date`, userID, start, end)
}

// ListByEffectiveStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEffectiveStatus(ctx context.Context, userID string, start, end time.Time, status attendance.Status) ([]attendance.Attendance, error) {
	return a.query(ctx, `SELECT `+attendanceColumns+attendanceFrom+`
		WHERE a.user_id = $1 AND a.date BETWEEN $2 AND $3 AND COALESCE(a.status_override, a.status) = $4
		ORDER BY a.date`, userID, start, end, status)
}

// ListOpenSessions implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenSessions(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	return a.query(ctx, `SELECT `+attendanceColumns+attendanceFrom+`
		WHERE a.date = $1 AND a.punch_in IS NOT NULL AND a.punch_out IS NULL
		ORDER BY u.name`, date)
}

// CountByEffectiveStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountByEffectiveStatus(ctx context.Context, date time.Time) (map[attendance.Status]int64, error) {
	q := GetQuerier(ctx, a.db)
	rows, err := q.Query(ctx, `
		SELECT COALESCE(status_override, status), COUNT(*)
		FROM attendances
		WHERE date = $1
		GROUP BY 1`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendances: %w", err)
	}
	defer rows.Close()

	out := map[attendance.Status]int64{}
	for rows.Next() {
		var status attendance.Status
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// MonthlySummary implements attendance.AttendanceRepository.
func (a *attendanceRepository) MonthlySummary(ctx context.Context, start, end time.Time) ([]attendance.MonthlySummary, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			a.user_id, u.name,
			COUNT(*) FILTER (WHERE COALESCE(a.status_override, a.status) = 'present'),
			COUNT(*) FILTER (WHERE COALESCE(a.status_override, a.status) = 'half_day'),
			COUNT(*) FILTER (WHERE COALESCE(a.status_override, a.status) = 'absent'),
			COUNT(*) FILTER (WHERE COALESCE(a.status_override, a.status) = 'on_leave'),
			COUNT(*) FILTER (WHERE a.is_off_day AND a.punch_in IS NOT NULL),
			COUNT(*) FILTER (WHERE a.is_late),
			COUNT(*) FILTER (WHERE a.is_wfh),
			COALESCE(SUM(a.working_hours), 0)
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.date BETWEEN $1 AND $2
		GROUP BY a.user_id, u.name
		ORDER BY u.name
	`
	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise attendances: %w", err)
	}
	defer rows.Close()

	var out []attendance.MonthlySummary
	for rows.Next() {
		var s attendance.MonthlySummary
		if err := rows.Scan(&s.UserID, &s.UserName, &s.Present, &s.HalfDay, &s.Absent, &s.OnLeave,
			&s.OffDayWorked, &s.Late, &s.WFH, &s.TotalHours); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
