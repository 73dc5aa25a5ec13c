package voucher

import (
	"context"
	"database/sql"

	"github.com/rakankuphi/voucher-system/internal/lifecycle"
	"github.com/rakankuphi/voucher-system/internal/models"
	"github.com/rakankuphi/voucher-system/internal/repository"
	"github.com/rakankuphi/voucher-system/pkg/database"
	"go.uber.org/zap"
)

// RedemptionEngine validates and redeems single vouchers. Redemption
// is exactly-once: of N concurrent attempts on the same code exactly
// one succeeds and the rest fail with AlreadyRedeemed or
// RedemptionConflict.
type RedemptionEngine struct {
	db       *database.DB
	vouchers *repository.VoucherRepository
	clock    Clock
	logger   *zap.Logger
}

// NewRedemptionEngine creates a new redemption engine.
func NewRedemptionEngine(
	db *database.DB,
	vouchers *repository.VoucherRepository,
	clock Clock,
	logger *zap.Logger,
) *RedemptionEngine {
	return &RedemptionEngine{
		db:       db,
		vouchers: vouchers,
		clock:    clock,
		logger:   logger,
	}
}

// Check looks a voucher up by code or barcode and applies lazy expiry:
// an active voucher whose issue date is not today is transitioned to
// expired and the transition is persisted before the voucher is
// returned. Callers must not assume read-only semantics.
func (e *RedemptionEngine) Check(ctx context.Context, identifier string) (*models.Voucher, error) {
	v, err := e.vouchers.FindByIdentifier(nil, identifier)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return e.expireIfDue(v)
}

// expireIfDue applies the date-rollover transition. The expired write
// is guarded by status = 'active'; when it loses to a concurrent
// redemption the fresh row state is read back instead.
func (e *RedemptionEngine) expireIfDue(v *models.Voucher) (*models.Voucher, error) {
	if v.Status != models.StatusActive || v.IssueDate == Today(e.clock) {
		return v, nil
	}

	machine, err := lifecycle.NewMachine(lifecycle.State(v.Status))
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(lifecycle.TriggerExpire); err != nil {
		return nil, err
	}

	affected, err := e.vouchers.MarkExpired(nil, v.ID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost to a concurrent transition; trust whatever won.
		fresh, err := e.vouchers.FindByIdentifier(nil, v.VoucherCode)
		if err != nil {
			return nil, err
		}
		if fresh != nil {
			return fresh, nil
		}
		return v, nil
	}

	e.logger.Info("Voucher expired lazily",
		zap.String("voucher_code", v.VoucherCode),
		zap.String("issue_date", v.IssueDate))

	v.Status = machine.State().String()
	return v, nil
}

// Redeem consumes a voucher at a tenant.
//
// The sequence is check, lock, re-check, compare-and-swap: status is
// evaluated before the transaction for fast failures, re-read inside
// the write-locked transaction to close the race with concurrent
// redeemers, and the final update still carries a status = 'active'
// guard. A zero-row update after the in-transaction check surfaces as
// ErrRedemptionConflict.
func (e *RedemptionEngine) Redeem(ctx context.Context, identifier, redeemedBy, tenant string) (*models.Voucher, error) {
	if !models.IsValidTenant(tenant) {
		return nil, ErrInvalidTenant
	}

	// Pre-transaction check; also persists lazy expiry so an expired
	// voucher's status change survives the failed redemption.
	checked, err := e.Check(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if err := statusError(checked); err != nil {
		return nil, err
	}

	var redeemed *models.Voucher
	err = e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		v, err := e.vouchers.FindByIdentifier(tx, identifier)
		if err != nil {
			return err
		}
		if v == nil {
			return ErrNotFound
		}

		// Re-validate under the write lock: another transaction may
		// have won between the check and BEGIN, and the date may have
		// rolled over.
		if err := statusError(v); err != nil {
			return err
		}
		if v.IssueDate != Today(e.clock) {
			return ErrExpired
		}

		machine, err := lifecycle.NewMachine(lifecycle.State(v.Status))
		if err != nil {
			return err
		}
		if !machine.CanFire(lifecycle.TriggerRedeem) {
			return ErrRedemptionConflict
		}

		now := e.clock()
		affected, err := e.vouchers.Redeem(tx, v.ID, redeemedBy, tenant, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			// The CAS lost despite the in-transaction check.
			return ErrRedemptionConflict
		}

		v.Status = models.StatusRedeemed
		v.RedeemedAt = &now
		v.RedeemedBy = redeemedBy
		v.TenantUsed = tenant
		v.UpdatedAt = now
		redeemed = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Voucher redeemed",
		zap.String("voucher_code", redeemed.VoucherCode),
		zap.String("redeemed_by", redeemedBy),
		zap.String("tenant", tenant))

	return redeemed, nil
}

// CanRedeemNow reports whether the voucher is redeemable at this
// moment: still active and issued today.
func (e *RedemptionEngine) CanRedeemNow(v *models.Voucher) bool {
	return v.Status == models.StatusActive && v.IssueDate == Today(e.clock)
}

// statusError maps a terminal stored status to its error kind.
func statusError(v *models.Voucher) error {
	switch v.Status {
	case models.StatusRedeemed:
		return &AlreadyRedeemedError{
			VoucherCode: v.VoucherCode,
			RedeemedAt:  v.RedeemedAt,
			RedeemedBy:  v.RedeemedBy,
			TenantUsed:  v.TenantUsed,
		}
	case models.StatusExpired:
		return ErrExpired
	}
	return nil
}
