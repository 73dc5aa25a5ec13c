package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rakankuphi/voucher-system/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VoucherRepository is the sole owner of voucher rows. Every status
// read and write in the system goes through here.
type VoucherRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *sql.DB, logger *zap.Logger) *VoucherRepository {
	return &VoucherRepository{
		db:     db,
		logger: logger,
	}
}

func (r *VoucherRepository) q(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.db
}

const voucherColumns = `id, voucher_code, barcode, voucher_number, nominal, company_name,
	issue_date, valid_until, status, employee_id, employee_name,
	redeemed_at, redeemed_by, tenant_used, created_at, updated_at`

func scanVoucher(row interface{ Scan(...any) error }) (*models.Voucher, error) {
	var v models.Voucher
	var employeeID sql.NullInt64
	var employeeName, redeemedBy, tenantUsed sql.NullString
	var redeemedAt sql.NullTime

	err := row.Scan(
		&v.ID, &v.VoucherCode, &v.Barcode, &v.VoucherNumber, &v.Nominal, &v.CompanyName,
		&v.IssueDate, &v.ValidUntil, &v.Status, &employeeID, &employeeName,
		&redeemedAt, &redeemedBy, &tenantUsed, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if employeeID.Valid {
		v.EmployeeID = &employeeID.Int64
	}
	v.EmployeeName = employeeName.String
	v.RedeemedBy = redeemedBy.String
	v.TenantUsed = tenantUsed.String
	if redeemedAt.Valid {
		v.RedeemedAt = &redeemedAt.Time
	}
	return &v, nil
}

// FindByIdentifier looks a voucher up by voucher_code or barcode in a
// single query; either identifier is accepted wherever a "barcode" is.
// This is a pure read: lazy expiry is applied by the redemption
// engine, which owns the clock.
func (r *VoucherRepository) FindByIdentifier(tx *sql.Tx, identifier string) (*models.Voucher, error) {
	row := r.q(tx).QueryRow(
		`SELECT `+voucherColumns+` FROM vouchers
		 WHERE voucher_code = ? OR barcode = ?`, identifier, identifier)

	v, err := scanVoucher(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find voucher", zap.String("identifier", identifier), zap.Error(err))
		return nil, fmt.Errorf("failed to find voucher: %w", err)
	}
	return v, nil
}

// Insert persists one voucher row with status active. Only the
// issuance engine calls this, inside its transaction.
func (r *VoucherRepository) Insert(tx *sql.Tx, v *models.Voucher) error {
	var employeeID any
	if v.EmployeeID != nil {
		employeeID = *v.EmployeeID
	}
	var employeeName any
	if v.EmployeeName != "" {
		employeeName = v.EmployeeName
	}

	result, err := r.q(tx).Exec(
		`INSERT INTO vouchers
		 (voucher_code, barcode, voucher_number, nominal, company_name,
		  issue_date, valid_until, status, employee_id, employee_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VoucherCode, v.Barcode, v.VoucherNumber, v.Nominal, v.CompanyName,
		v.IssueDate, v.ValidUntil, v.Status, employeeID, employeeName)
	if err != nil {
		r.logger.Error("Failed to insert voucher", zap.String("code", v.VoucherCode), zap.Error(err))
		return fmt.Errorf("failed to insert voucher: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	v.ID = id
	return nil
}

// CountForDate returns how many vouchers exist for an issue date. The
// issuance engine derives the next sequence number from it.
func (r *VoucherRepository) CountForDate(tx *sql.Tx, date string) (int, error) {
	var count int
	err := r.q(tx).QueryRow(
		`SELECT COUNT(*) FROM vouchers WHERE issue_date = ?`, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count vouchers for date: %w", err)
	}
	return count, nil
}

// CodeExists reports whether a voucher code is already taken.
func (r *VoucherRepository) CodeExists(tx *sql.Tx, code string) (bool, error) {
	var count int
	err := r.q(tx).QueryRow(
		`SELECT COUNT(*) FROM vouchers WHERE voucher_code = ?`, code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check voucher code: %w", err)
	}
	return count > 0, nil
}

// MarkExpired transitions a voucher to expired, guarded by
// status = 'active' so a concurrent redemption is never overwritten.
// Returns the number of rows changed (0 or 1).
func (r *VoucherRepository) MarkExpired(tx *sql.Tx, id int64) (int64, error) {
	result, err := r.q(tx).Exec(
		`UPDATE vouchers SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		models.StatusExpired, time.Now(), id, models.StatusActive)
	if err != nil {
		r.logger.Error("Failed to expire voucher", zap.Int64("id", id), zap.Error(err))
		return 0, fmt.Errorf("failed to expire voucher: %w", err)
	}
	return result.RowsAffected()
}

// Redeem performs the compare-and-swap redemption write: the update
// only matches while status is still active, so of two racing
// transactions exactly one sees a row change.
func (r *VoucherRepository) Redeem(tx *sql.Tx, id int64, redeemedBy, tenant string, now time.Time) (int64, error) {
	result, err := r.q(tx).Exec(
		`UPDATE vouchers
		 SET status = ?, redeemed_at = ?, redeemed_by = ?, tenant_used = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		models.StatusRedeemed, now, redeemedBy, tenant, now, id, models.StatusActive)
	if err != nil {
		r.logger.Error("Failed to redeem voucher", zap.Int64("id", id), zap.Error(err))
		return 0, fmt.Errorf("failed to redeem voucher: %w", err)
	}
	return result.RowsAffected()
}

// reportFilter builds the shared WHERE clause for report queries.
// endDate defaults to startDate; statusFilter "" or "all" disables
// status filtering.
func reportFilter(startDate, endDate, statusFilter string) (string, []any) {
	if endDate == "" {
		endDate = startDate
	}
	where := `WHERE issue_date >= ? AND issue_date <= ?`
	args := []any{startDate, endDate}
	if statusFilter != "" && statusFilter != "all" {
		where += ` AND status = ?`
		args = append(args, statusFilter)
	}
	return where, args
}

// GetSummary aggregates voucher counts over an inclusive date range.
func (r *VoucherRepository) GetSummary(startDate, endDate, statusFilter string) (*models.Summary, error) {
	where, args := reportFilter(startDate, endDate, statusFilter)

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total_generated,
			SUM(CASE WHEN status = 'redeemed' THEN 1 ELSE 0 END) AS total_redeemed,
			SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END) AS total_unused,
			SUM(CASE WHEN status = 'expired' THEN 1 ELSE 0 END) AS total_expired,
			SUM(CASE WHEN tenant_used = ? THEN 1 ELSE 0 END) AS martabak_count,
			SUM(CASE WHEN tenant_used = ? THEN 1 ELSE 0 END) AS mie_aceh_count
		FROM vouchers %s`, where)

	queryArgs := append([]any{models.TenantMartabak, models.TenantMieAceh}, args...)

	var generated, redeemed, unused, expired, martabak, mieAceh sql.NullInt64
	err := r.db.QueryRow(query, queryArgs...).Scan(
		&generated, &redeemed, &unused, &expired, &martabak, &mieAceh)
	if err != nil {
		r.logger.Error("Failed to get summary", zap.String("start", startDate), zap.Error(err))
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	if endDate == "" {
		endDate = startDate
	}
	return &models.Summary{
		StartDate:      startDate,
		EndDate:        endDate,
		TotalGenerated: int(generated.Int64),
		TotalRedeemed:  int(redeemed.Int64),
		TotalUnused:    int(unused.Int64),
		TotalExpired:   int(expired.Int64),
		RedemptionRate: RedemptionRate(int(redeemed.Int64), int(generated.Int64)),
		ByTenant: map[string]int{
			models.TenantMartabak: int(martabak.Int64),
			models.TenantMieAceh:  int(mieAceh.Int64),
		},
	}, nil
}

// RedemptionRate formats redeemed/generated as a percentage with one
// fraction digit. Zero generated yields "0.0%", never a division by
// zero.
func RedemptionRate(redeemed, generated int) string {
	if generated == 0 {
		return "0.0%"
	}
	rate := decimal.NewFromInt(int64(redeemed) * 100).
		Div(decimal.NewFromInt(int64(generated)))
	return rate.StringFixed(1) + "%"
}

// ListDetails returns per-voucher report rows over an inclusive date
// range, ordered by issue date then voucher number.
func (r *VoucherRepository) ListDetails(startDate, endDate, statusFilter string) ([]*models.VoucherDetail, error) {
	where, args := reportFilter(startDate, endDate, statusFilter)

	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT voucher_code, barcode, voucher_number, status, employee_name,
		       redeemed_at, redeemed_by, tenant_used, issue_date
		FROM vouchers %s
		ORDER BY issue_date ASC, voucher_number ASC`, where), args...)
	if err != nil {
		r.logger.Error("Failed to list voucher details", zap.Error(err))
		return nil, fmt.Errorf("failed to list voucher details: %w", err)
	}
	defer rows.Close()

	var details []*models.VoucherDetail
	for rows.Next() {
		var d models.VoucherDetail
		var employeeName, redeemedBy, tenantUsed sql.NullString
		var redeemedAt sql.NullTime
		err := rows.Scan(&d.VoucherCode, &d.Barcode, &d.VoucherNumber, &d.Status,
			&employeeName, &redeemedAt, &redeemedBy, &tenantUsed, &d.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher detail: %w", err)
		}
		d.EmployeeName = employeeName.String
		d.RedeemedBy = redeemedBy.String
		d.TenantUsed = tenantUsed.String
		if redeemedAt.Valid {
			d.RedeemedAt = &redeemedAt.Time
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

// ListForPrint returns the fields needed to print tickets for one
// issue date, ordered by voucher number.
func (r *VoucherRepository) ListForPrint(date string) ([]*models.PrintVoucher, error) {
	rows, err := r.db.Query(
		`SELECT barcode, voucher_code, voucher_number, nominal, company_name, issue_date, valid_until
		 FROM vouchers
		 WHERE issue_date = ?
		 ORDER BY voucher_number ASC`, date)
	if err != nil {
		r.logger.Error("Failed to list vouchers for print", zap.String("date", date), zap.Error(err))
		return nil, fmt.Errorf("failed to list vouchers for print: %w", err)
	}
	defer rows.Close()

	var vouchers []*models.PrintVoucher
	for rows.Next() {
		var p models.PrintVoucher
		if err := rows.Scan(&p.Barcode, &p.VoucherCode, &p.VoucherNumber, &p.Nominal,
			&p.CompanyName, &p.IssueDate, &p.ValidUntil); err != nil {
			return nil, fmt.Errorf("failed to scan print voucher: %w", err)
		}
		vouchers = append(vouchers, &p)
	}
	return vouchers, rows.Err()
}

// ListRedeemedOn returns vouchers whose redemption timestamp falls on
// the given calendar date. Only successful redemptions exist in the
// table; failed scan attempts are never persisted.
func (r *VoucherRepository) ListRedeemedOn(date string) ([]*models.Voucher, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := r.db.Query(
		`SELECT `+voucherColumns+` FROM vouchers
		 WHERE status = ? AND redeemed_at >= ? AND redeemed_at < ?
		 ORDER BY redeemed_at ASC`,
		models.StatusRedeemed, dayStart, dayEnd)
	if err != nil {
		r.logger.Error("Failed to list redeemed vouchers", zap.String("date", date), zap.Error(err))
		return nil, fmt.Errorf("failed to list redeemed vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []*models.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}
