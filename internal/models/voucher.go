package models

import "time"

// Voucher status constants. A voucher starts active and ends in exactly
// one of the two terminal states.
const (
	StatusActive   = "active"
	StatusRedeemed = "redeemed"
	StatusExpired  = "expired"
)

// Redemption tenants. tenant_used must be one of these when non-null;
// the vouchers table carries a matching CHECK constraint.
const (
	TenantMartabak = "Martabak Rakan"
	TenantMieAceh  = "Mie Aceh Rakan"
)

// Tenants lists the fixed redemption locations in display order.
var Tenants = []string{TenantMartabak, TenantMieAceh}

// IsValidTenant reports whether name is one of the fixed tenants.
func IsValidTenant(name string) bool {
	return name == TenantMartabak || name == TenantMieAceh
}

// Defaults applied at issuance when config does not override them.
const (
	DefaultNominal     = 10000
	DefaultCompanyName = "Rakan Kuphi"
)

// Voucher is a single-use, single-day meal entitlement.
//
// valid_until always equals issue_date: despite the field name a
// voucher is valid only on the day it was issued.
type Voucher struct {
	ID            int64      `json:"id"`
	VoucherCode   string     `json:"voucher_code"`
	Barcode       string     `json:"barcode"`
	VoucherNumber string     `json:"voucher_number"`
	Nominal       int        `json:"nominal"`
	CompanyName   string     `json:"company_name"`
	IssueDate     string     `json:"issue_date"`
	ValidUntil    string     `json:"valid_until"`
	Status        string     `json:"status"`
	EmployeeID    *int64     `json:"employee_id,omitempty"`
	EmployeeName  string     `json:"employee_name,omitempty"`
	RedeemedAt    *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy    string     `json:"redeemed_by,omitempty"`
	TenantUsed    string     `json:"tenant_used,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CanRedeem reports whether the voucher is still redeemable as stored.
// Date validity is checked separately against the engine clock.
func (v *Voucher) CanRedeem() bool {
	return v.Status == StatusActive
}

// VoucherDetail is the per-voucher report row.
type VoucherDetail struct {
	VoucherCode   string     `json:"voucher_code"`
	Barcode       string     `json:"barcode"`
	VoucherNumber string     `json:"voucher_number"`
	Status        string     `json:"status"`
	EmployeeName  string     `json:"employee_name,omitempty"`
	RedeemedAt    *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy    string     `json:"redeemed_by,omitempty"`
	TenantUsed    string     `json:"tenant_used,omitempty"`
	IssueDate     string     `json:"issue_date"`
}

// PrintVoucher carries the minimal fields needed to render a physical
// ticket.
type PrintVoucher struct {
	Barcode       string `json:"barcode"`
	VoucherCode   string `json:"voucher_code"`
	VoucherNumber string `json:"voucher_number"`
	Nominal       int    `json:"nominal"`
	CompanyName   string `json:"company_name"`
	IssueDate     string `json:"issue_date"`
	ValidUntil    string `json:"valid_until"`
}

// Summary aggregates voucher counts over an inclusive date range.
type Summary struct {
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	TotalGenerated int            `json:"total_generated"`
	TotalRedeemed  int            `json:"total_redeemed"`
	TotalUnused    int            `json:"total_unused"`
	TotalExpired   int            `json:"total_expired"`
	RedemptionRate string         `json:"redemption_rate"`
	ByTenant       map[string]int `json:"by_tenant"`
}
