package voucher

import (
	"context"
	"database/sql"
	"time"

	"github.com/rakankuphi/voucher-system/internal/codegen"
	"github.com/rakankuphi/voucher-system/internal/models"
	"github.com/rakankuphi/voucher-system/internal/repository"
	"github.com/rakankuphi/voucher-system/pkg/database"
	"go.uber.org/zap"
)

// Clock supplies "now" to the engines. Injected so tests control the
// calendar date; production wiring passes time.Now.
type Clock func() time.Time

// Today formats a clock reading as the calendar date used everywhere
// in this package. Issue dates are stored and compared in this one
// format, by this one clock, in both the expiry and redemption paths.
func Today(clock Clock) string {
	return clock().Format("2006-01-02")
}

// IssuanceConfig carries the fixed ticket metadata applied to every
// created voucher.
type IssuanceConfig struct {
	Nominal     int
	CompanyName string
}

// IssueResult reports what a batch actually did. Skipped employees are
// data, not an error: re-running issuance over an overlapping set is
// the normal admin workflow.
type IssueResult struct {
	Created            []*models.Voucher `json:"vouchers"`
	SkippedEmployeeIDs []int64           `json:"skipped_employee_ids"`
}

// IssuanceEngine batch-creates vouchers for a set of employees on one
// issue date.
type IssuanceEngine struct {
	db        *database.DB
	employees *repository.EmployeeRepository
	vouchers  *repository.VoucherRepository
	cfg       IssuanceConfig
	logger    *zap.Logger
}

// NewIssuanceEngine creates a new issuance engine.
func NewIssuanceEngine(
	db *database.DB,
	employees *repository.EmployeeRepository,
	vouchers *repository.VoucherRepository,
	cfg IssuanceConfig,
	logger *zap.Logger,
) *IssuanceEngine {
	if cfg.Nominal <= 0 {
		cfg.Nominal = models.DefaultNominal
	}
	if cfg.CompanyName == "" {
		cfg.CompanyName = models.DefaultCompanyName
	}
	return &IssuanceEngine{
		db:        db,
		employees: employees,
		vouchers:  vouchers,
		cfg:       cfg,
		logger:    logger,
	}
}

// Issue creates vouchers for the given employees on issueDate inside a
// single transaction. Employees that do not exist, are inactive, or
// already hold a voucher for the date are skipped silently and
// reported in the result. Any storage failure rolls back the whole
// batch; partial voucher sets are never committed.
//
// Sequence numbers continue from the count of existing vouchers for
// the date, so voucher_number and barcode stay contiguous across
// repeated issuance calls.
func (e *IssuanceEngine) Issue(ctx context.Context, employeeIDs []int64, issueDate string) (*IssueResult, error) {
	result := &IssueResult{
		Created:            []*models.Voucher{},
		SkippedEmployeeIDs: []int64{},
	}

	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := e.vouchers.CountForDate(tx, issueDate)
		if err != nil {
			return err
		}
		sequence := existing

		for _, employeeID := range employeeIDs {
			employee, err := e.employees.FindByID(tx, employeeID)
			if err != nil {
				return err
			}
			if employee == nil || !employee.Active {
				result.SkippedEmployeeIDs = append(result.SkippedEmployeeIDs, employeeID)
				continue
			}

			// Re-checked inside the transaction: a concurrent batch
			// may have issued for this employee since the caller
			// looked.
			hasVoucher, err := e.employees.HasVoucherForDate(tx, employeeID, issueDate)
			if err != nil {
				return err
			}
			if hasVoucher {
				result.SkippedEmployeeIDs = append(result.SkippedEmployeeIDs, employeeID)
				continue
			}

			code, err := codegen.UniqueVoucherCode(func(candidate string) (bool, error) {
				return e.vouchers.CodeExists(tx, candidate)
			})
			if err != nil {
				return err
			}

			sequence++
			id := employee.ID
			v := &models.Voucher{
				VoucherCode:   code,
				Barcode:       codegen.Barcode(issueDate, sequence),
				VoucherNumber: codegen.VoucherNumber(sequence),
				Nominal:       e.cfg.Nominal,
				CompanyName:   e.cfg.CompanyName,
				IssueDate:     issueDate,
				ValidUntil:    issueDate,
				Status:        models.StatusActive,
				EmployeeID:    &id,
				EmployeeName:  employee.Name,
			}

			if err := e.vouchers.Insert(tx, v); err != nil {
				return err
			}
			result.Created = append(result.Created, v)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Issued vouchers",
		zap.String("issue_date", issueDate),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.SkippedEmployeeIDs)))

	return result, nil
}
