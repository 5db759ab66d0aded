package doctor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const (
	doctorsTable   = "doctors"
	windowsTable   = "doctor_availability_windows"
	vacationsTable = "doctor_vacations"
)

// Repository врачи, их недельное расписание и отпуска
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает врача по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	return r.getByID(ctx, id, false)
}

// LockByID получает врача и блокирует его строку до конца транзакции.
// Все изменения записей одного врача сериализуются на этой блокировке.
func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.Doctor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(
		"id",
		"practice_id",
		"user_id",
		"full_name",
		"specialty",
		"created_at",
		"updated_at",
	).
		From(doctorsTable).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		d                    domain.Doctor
		createdAt, updatedAt sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&d.ID,
		&d.PracticeID,
		&d.UserID,
		&d.FullName,
		&d.Specialty,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan doctor: %w", ErrScanRow, err)
	}

	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time

	return &d, nil
}

// IsPracticeMember проверяет, что пользователь является врачом практики
func (r *Repository) IsPracticeMember(ctx context.Context, practiceID, userID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inner := psqlbuilder.Select("1").
		From(doctorsTable).
		Where(squirrel.Eq{"practice_id": practiceID, "user_id": userID})

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("EXISTS(?)", inner)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: IsPracticeMember - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: IsPracticeMember - scan row: %w", ErrScanRow, err)
	}

	return exists, nil
}

// GetWeeklyAvailability окна врача по дням недели, отсортированные по началу
func (r *Repository) GetWeeklyAvailability(ctx context.Context, doctorID int64) (domain.WeeklyAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("weekday", "start_time", "end_time", "is_available").
		From(windowsTable).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		OrderBy("weekday ASC", "start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyAvailability - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyAvailability - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	weekly := make(domain.WeeklyAvailability)
	for rows.Next() {
		var (
			weekday int
			w       domain.TimeWindow
		)
		if err := rows.Scan(&weekday, &w.Start, &w.End, &w.IsAvailable); err != nil {
			return nil, fmt.Errorf("%w: GetWeeklyAvailability - scan row: %w", ErrScanRow, err)
		}
		day := time.Weekday(weekday)
		weekly[day] = append(weekly[day], w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyAvailability - rows error: %w", ErrScanRow, err)
	}

	return weekly, nil
}

// ReplaceWeeklyAvailability заменяет все окна врача.
// Должен вызываться в транзакции, иначе между удалением и вставкой врач выглядит закрытым.
func (r *Repository) ReplaceWeeklyAvailability(ctx context.Context, doctorID int64, weekly domain.WeeklyAvailability) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(windowsTable).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyAvailability - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyAvailability - execute delete: %w", ErrExecQuery, err)
	}

	insert, ok := insertWindowsQuery(doctorID, weekly)
	if !ok {
		return nil
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyAvailability - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyAvailability - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// insertWindowsQuery одна вставка на все окна, дни в порядке Sunday..Saturday
func insertWindowsQuery(doctorID int64, weekly domain.WeeklyAvailability) (squirrel.InsertBuilder, bool) {
	days := make([]int, 0, len(weekly))
	for day := range weekly {
		days = append(days, int(day))
	}
	sort.Ints(days)

	builder := psqlbuilder.Insert(windowsTable).
		Columns("doctor_id", "weekday", "start_time", "end_time", "is_available")

	rows := 0
	for _, day := range days {
		for _, w := range weekly[time.Weekday(day)] {
			builder = builder.Values(doctorID, day, w.Start, w.End, w.IsAvailable)
			rows++
		}
	}

	return builder, rows > 0
}

// GetVacations отпуска врача, заканчивающиеся не раньше from (nil - все)
func (r *Repository) GetVacations(ctx context.Context, doctorID int64, from *time.Time) ([]domain.VacationPeriod, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("id", "doctor_id", "start_date", "end_date", "reason", "created_at").
		From(vacationsTable).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		OrderBy("start_date ASC")
	if from != nil {
		builder = builder.Where(squirrel.GtOrEq{"end_date": *from})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetVacations - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetVacations - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	vacations := make([]domain.VacationPeriod, 0)
	for rows.Next() {
		var (
			v         domain.VacationPeriod
			reason    sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&v.ID, &v.DoctorID, &v.StartDate, &v.EndDate, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: GetVacations - scan row: %w", ErrScanRow, err)
		}
		v.Reason = reason.String
		v.CreatedAt = createdAt.Time
		vacations = append(vacations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetVacations - rows error: %w", ErrScanRow, err)
	}

	return vacations, nil
}

// GetSchedule недельные окна и отпуска врача одним значением
func (r *Repository) GetSchedule(ctx context.Context, doctorID int64) (domain.DoctorSchedule, error) {
	weekly, err := r.GetWeeklyAvailability(ctx, doctorID)
	if err != nil {
		return domain.DoctorSchedule{}, err
	}
	vacations, err := r.GetVacations(ctx, doctorID, nil)
	if err != nil {
		return domain.DoctorSchedule{}, err
	}
	return domain.DoctorSchedule{DoctorID: doctorID, Weekly: weekly, Vacations: vacations}, nil
}

// CreateVacation добавляет отпуск
func (r *Repository) CreateVacation(ctx context.Context, v *domain.VacationPeriod) (*domain.VacationPeriod, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(vacationsTable).
		Columns("doctor_id", "start_date", "end_date", "reason").
		Values(v.DoctorID, v.StartDate, v.EndDate, v.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateVacation - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&v.ID, &createdAt)
	if pgerr.IsForeignKeyViolation(err) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CreateVacation - execute insert: %w", ErrExecQuery, err)
	}
	v.CreatedAt = createdAt.Time

	return v, nil
}

// DeleteVacation удаляет отпуск врача
func (r *Repository) DeleteVacation(ctx context.Context, doctorID, vacationID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(vacationsTable).
		Where(squirrel.Eq{"id": vacationID, "doctor_id": doctorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteVacation - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteVacation - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteVacation - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrVacationNotFound
	}

	return nil
}
