package models

import "time"

// Employee represents a company employee eligible for meal vouchers.
// Employees are never physically deleted; deactivation keeps old
// vouchers resolvable to their owner.
type Employee struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	EmployeeCode string    `json:"employee_code,omitempty"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EmployeeIssuanceStatus is an active employee joined with their
// voucher state for a particular issue date. Used by the admin client
// to pre-select who still needs a voucher.
type EmployeeIssuanceStatus struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	EmployeeCode    string `json:"employee_code,omitempty"`
	HasVoucherToday bool   `json:"has_voucher_today"`
	VoucherCode     string `json:"voucher_code,omitempty"`
	VoucherStatus   string `json:"voucher_status,omitempty"`
}
