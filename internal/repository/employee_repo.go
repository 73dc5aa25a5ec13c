package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rakankuphi/voucher-system/internal/models"
	"go.uber.org/zap"
)

// EmployeeRepository handles employee master data and per-day issuance
// tracking.
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

// querier abstracts *sql.DB and *sql.Tx so every method can run inside
// a caller-owned transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (r *EmployeeRepository) q(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.db
}

const employeeColumns = `id, name, employee_code, is_active, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*models.Employee, error) {
	var e models.Employee
	var code sql.NullString
	if err := row.Scan(&e.ID, &e.Name, &code, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if code.Valid {
		e.EmployeeCode = code.String
	}
	return &e, nil
}

// GetAllActive returns all active employees ordered by name.
func (r *EmployeeRepository) GetAllActive() ([]*models.Employee, error) {
	rows, err := r.db.Query(
		`SELECT ` + employeeColumns + ` FROM employees WHERE is_active = 1 ORDER BY name ASC`)
	if err != nil {
		r.logger.Error("Failed to list active employees", zap.Error(err))
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// FindByID retrieves an employee by id; returns nil when absent.
// Inactive employees are still resolvable so old vouchers keep a
// valid owner reference.
func (r *EmployeeRepository) FindByID(tx *sql.Tx, id int64) (*models.Employee, error) {
	row := r.q(tx).QueryRow(
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get employee by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// FindActiveByName retrieves an active employee by case-insensitive
// name match; returns nil when absent.
func (r *EmployeeRepository) FindActiveByName(name string) (*models.Employee, error) {
	row := r.db.QueryRow(
		`SELECT `+employeeColumns+` FROM employees
		 WHERE LOWER(name) = LOWER(?) AND is_active = 1`, name)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee by name: %w", err)
	}
	return e, nil
}

// Create inserts a new active employee. Name uniqueness is enforced
// among active employees only; a deactivated employee's name can be
// registered again.
func (r *EmployeeRepository) Create(name, employeeCode string) (*models.Employee, error) {
	existing, err := r.FindActiveByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	var code any
	if employeeCode != "" {
		code = employeeCode
	}

	result, err := r.db.Exec(
		`INSERT INTO employees (name, employee_code) VALUES (?, ?)`, name, code)
	if err != nil {
		r.logger.Error("Failed to create employee", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to create employee: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	r.logger.Info("Created employee", zap.Int64("id", id), zap.String("name", name))
	return r.FindByID(nil, id)
}

// Update changes name, code and active flag of an employee.
func (r *EmployeeRepository) Update(id int64, name, employeeCode string, active bool) (*models.Employee, error) {
	existing, err := r.FindActiveByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrDuplicateName
	}

	var code any
	if employeeCode != "" {
		code = employeeCode
	}

	result, err := r.db.Exec(
		`UPDATE employees
		 SET name = ?, employee_code = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		name, code, active, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update employee", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update employee: %w", classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrEmployeeNotFound
	}

	return r.FindByID(nil, id)
}

// SoftDelete deactivates an employee. The row is never removed:
// vouchers referencing it must stay resolvable.
func (r *EmployeeRepository) SoftDelete(id int64) (*models.Employee, error) {
	result, err := r.db.Exec(
		`UPDATE employees SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to deactivate employee", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to deactivate employee: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrEmployeeNotFound
	}

	return r.FindByID(nil, id)
}

// HasVoucherForDate reports whether the employee already has a voucher
// for the given issue date. This is the duplicate-issuance guard, so
// the issuance engine re-checks it inside its transaction.
func (r *EmployeeRepository) HasVoucherForDate(tx *sql.Tx, employeeID int64, date string) (bool, error) {
	var count int
	err := r.q(tx).QueryRow(
		`SELECT COUNT(*) FROM vouchers WHERE employee_id = ? AND issue_date = ?`,
		employeeID, date).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check voucher for date: %w", err)
	}
	return count > 0, nil
}

// GetEmployeesWithIssuanceStatus returns all active employees joined
// with their voucher state for the given date.
func (r *EmployeeRepository) GetEmployeesWithIssuanceStatus(date string) ([]*models.EmployeeIssuanceStatus, error) {
	rows, err := r.db.Query(
		`SELECT e.id, e.name, e.employee_code,
		        CASE WHEN v.id IS NOT NULL THEN 1 ELSE 0 END AS has_voucher,
		        v.voucher_code, v.status
		 FROM employees e
		 LEFT JOIN vouchers v ON v.employee_id = e.id AND v.issue_date = ?
		 WHERE e.is_active = 1
		 ORDER BY e.name ASC`, date)
	if err != nil {
		r.logger.Error("Failed to get issuance status", zap.String("date", date), zap.Error(err))
		return nil, fmt.Errorf("failed to get issuance status: %w", err)
	}
	defer rows.Close()

	var statuses []*models.EmployeeIssuanceStatus
	for rows.Next() {
		var s models.EmployeeIssuanceStatus
		var code, voucherCode, voucherStatus sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &code, &s.HasVoucherToday, &voucherCode, &voucherStatus); err != nil {
			return nil, fmt.Errorf("failed to scan issuance status: %w", err)
		}
		s.EmployeeCode = code.String
		s.VoucherCode = voucherCode.String
		s.VoucherStatus = voucherStatus.String
		statuses = append(statuses, &s)
	}
	return statuses, rows.Err()
}
