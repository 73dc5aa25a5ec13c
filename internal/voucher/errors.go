// Package voucher implements the voucher lifecycle engines: batch
// issuance and exactly-once redemption.
package voucher

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the redemption and issuance paths. The HTTP
// layer maps these to status codes; the engines never format
// user-facing text.
var (
	// ErrNotFound means no voucher matches the given code or barcode.
	ErrNotFound = errors.New("voucher not found")

	// ErrExpired means the voucher's issue date no longer matches
	// today. Distinct from ErrAlreadyRedeemed so clients can show a
	// different message.
	ErrExpired = errors.New("voucher expired")

	// ErrAlreadyRedeemed means the voucher reached its terminal
	// redeemed state earlier. errors.As against *AlreadyRedeemedError
	// recovers the prior redemption metadata.
	ErrAlreadyRedeemed = errors.New("voucher already redeemed")

	// ErrInvalidTenant means the tenant is outside the fixed
	// two-element set.
	ErrInvalidTenant = errors.New("invalid tenant")

	// ErrRedemptionConflict means this transaction lost the
	// redemption race after passing the in-transaction status check.
	// Callers must not retry: the voucher was genuinely consumed by
	// the winner.
	ErrRedemptionConflict = errors.New("redemption conflict")
)

// AlreadyRedeemedError carries the prior redemption metadata so the
// kitchen client can explain who used the voucher, where and when.
type AlreadyRedeemedError struct {
	VoucherCode string
	RedeemedAt  *time.Time
	RedeemedBy  string
	TenantUsed  string
}

func (e *AlreadyRedeemedError) Error() string {
	if e.RedeemedAt == nil {
		return fmt.Sprintf("voucher %s already redeemed", e.VoucherCode)
	}
	return fmt.Sprintf("voucher %s already redeemed at %s by %s (%s)",
		e.VoucherCode, e.RedeemedAt.Format(time.RFC3339), e.RedeemedBy, e.TenantUsed)
}

func (e *AlreadyRedeemedError) Unwrap() error {
	return ErrAlreadyRedeemed
}
