package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmployeeRepository_CreateAndGet(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	e, err := repo.Create("Budi Santoso", "EMP001")
	require.NoError(t, err)
	require.NotZero(t, e.ID)
	assert.Equal(t, "Budi Santoso", e.Name)
	assert.Equal(t, "EMP001", e.EmployeeCode)
	assert.True(t, e.Active)

	got, err := repo.FindByID(nil, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.Name, got.Name)
}

func TestEmployeeRepository_Create_WithoutCode(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	e, err := repo.Create("Siti Aminah", "")
	require.NoError(t, err)
	assert.Empty(t, e.EmployeeCode)
}

func TestEmployeeRepository_Create_DuplicateName(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	_, err := repo.Create("Budi Santoso", "")
	require.NoError(t, err)

	_, err = repo.Create("budi santoso", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName), "expected ErrDuplicateName, got %v", err)
}

func TestEmployeeRepository_Create_ReusesDeactivatedName(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	e, err := repo.Create("Budi Santoso", "")
	require.NoError(t, err)

	_, err = repo.SoftDelete(e.ID)
	require.NoError(t, err)

	// Same name again is fine once the original is inactive.
	_, err = repo.Create("Budi Santoso", "")
	require.NoError(t, err)
}

func TestEmployeeRepository_FindByID_NotFound(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	got, err := repo.FindByID(nil, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmployeeRepository_GetAllActive(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	_, err := repo.Create("Citra Dewi", "")
	require.NoError(t, err)
	budi, err := repo.Create("Budi Santoso", "")
	require.NoError(t, err)
	_, err = repo.SoftDelete(budi.ID)
	require.NoError(t, err)

	employees, err := repo.GetAllActive()
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Citra Dewi", employees[0].Name)
}

func TestEmployeeRepository_Update(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	e, err := repo.Create("Budi Santoso", "")
	require.NoError(t, err)

	updated, err := repo.Update(e.ID, "Budi S.", "EMP007", true)
	require.NoError(t, err)
	assert.Equal(t, "Budi S.", updated.Name)
	assert.Equal(t, "EMP007", updated.EmployeeCode)
}

func TestEmployeeRepository_Update_NotFound(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	_, err := repo.Update(12345, "Nobody", "", true)
	assert.True(t, errors.Is(err, ErrEmployeeNotFound), "expected ErrEmployeeNotFound, got %v", err)
}

func TestEmployeeRepository_Update_DuplicateName(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	_, err := repo.Create("Budi Santoso", "")
	require.NoError(t, err)
	citra, err := repo.Create("Citra Dewi", "")
	require.NoError(t, err)

	_, err = repo.Update(citra.ID, "Budi Santoso", "", true)
	assert.True(t, errors.Is(err, ErrDuplicateName), "expected ErrDuplicateName, got %v", err)

	// Renaming to your own current name is not a conflict.
	_, err = repo.Update(citra.ID, "Citra Dewi", "", true)
	require.NoError(t, err)
}

func TestEmployeeRepository_SoftDelete(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	e, err := repo.Create("Budi Santoso", "")
	require.NoError(t, err)

	deleted, err := repo.SoftDelete(e.ID)
	require.NoError(t, err)
	assert.False(t, deleted.Active)

	// The row stays resolvable by ID.
	got, err := repo.FindByID(nil, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Active)
}

func TestEmployeeRepository_SoftDelete_NotFound(t *testing.T) {
	repo := NewEmployeeRepository(newTestDB(t), zap.NewNop())

	_, err := repo.SoftDelete(12345)
	assert.True(t, errors.Is(err, ErrEmployeeNotFound), "expected ErrEmployeeNotFound, got %v", err)
}

func TestEmployeeRepository_HasVoucherForDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewEmployeeRepository(db, zap.NewNop())

	e, err := repo.Create("Budi Santoso", "")
	require.NoError(t, err)

	has, err := repo.HasVoucherForDate(nil, e.ID, "2025-01-15")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = db.Exec(`INSERT INTO vouchers
		(voucher_code, barcode, voucher_number, issue_date, valid_until, employee_id, employee_name)
		VALUES ('ABCD2345', 'RK20250115001', '001', '2025-01-15', '2025-01-15', ?, ?)`,
		e.ID, e.Name)
	require.NoError(t, err)

	has, err = repo.HasVoucherForDate(nil, e.ID, "2025-01-15")
	require.NoError(t, err)
	assert.True(t, has)

	// A voucher on another date does not count.
	has, err = repo.HasVoucherForDate(nil, e.ID, "2025-01-16")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestEmployeeRepository_GetEmployeesWithIssuanceStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewEmployeeRepository(db, zap.NewNop())

	budi, err := repo.Create("Budi Santoso", "")
	require.NoError(t, err)
	_, err = repo.Create("Citra Dewi", "")
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO vouchers
		(voucher_code, barcode, voucher_number, issue_date, valid_until, employee_id, employee_name)
		VALUES ('ABCD2345', 'RK20250115001', '001', '2025-01-15', '2025-01-15', ?, ?)`,
		budi.ID, budi.Name)
	require.NoError(t, err)

	statuses, err := repo.GetEmployeesWithIssuanceStatus("2025-01-15")
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	// Ordered by name: Budi first.
	assert.Equal(t, "Budi Santoso", statuses[0].Name)
	assert.True(t, statuses[0].HasVoucherToday)
	assert.Equal(t, "ABCD2345", statuses[0].VoucherCode)
	assert.Equal(t, "active", statuses[0].VoucherStatus)

	assert.Equal(t, "Citra Dewi", statuses[1].Name)
	assert.False(t, statuses[1].HasVoucherToday)
	assert.Empty(t, statuses[1].VoucherCode)
}
