package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rakankuphi/voucher-system/internal/models"
)

func testVoucher(code, barcode, number, issueDate string) *models.Voucher {
	return &models.Voucher{
		VoucherCode:   code,
		Barcode:       barcode,
		VoucherNumber: number,
		Nominal:       models.DefaultNominal,
		CompanyName:   models.DefaultCompanyName,
		IssueDate:     issueDate,
		ValidUntil:    issueDate,
		Status:        models.StatusActive,
	}
}

func mustInsert(t *testing.T, repo *VoucherRepository, v *models.Voucher) *models.Voucher {
	t.Helper()
	require.NoError(t, repo.Insert(nil, v))
	return v
}

func TestVoucherRepository_InsertAndFind(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	v := mustInsert(t, repo, testVoucher("ABCD2345", "RK20250115001", "001", "2025-01-15"))
	require.NotZero(t, v.ID)

	byCode, err := repo.FindByIdentifier(nil, "ABCD2345")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, v.ID, byCode.ID)
	assert.Equal(t, models.StatusActive, byCode.Status)
	assert.Equal(t, "2025-01-15", byCode.IssueDate)
	assert.Equal(t, byCode.IssueDate, byCode.ValidUntil)

	byBarcode, err := repo.FindByIdentifier(nil, "RK20250115001")
	require.NoError(t, err)
	require.NotNil(t, byBarcode)
	assert.Equal(t, v.ID, byBarcode.ID)
}

func TestVoucherRepository_FindByIdentifier_NotFound(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	v, err := repo.FindByIdentifier(nil, "ZZZZ9999")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestVoucherRepository_Insert_DuplicateCode(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	mustInsert(t, repo, testVoucher("ABCD2345", "RK20250115001", "001", "2025-01-15"))

	err := repo.Insert(nil, testVoucher("ABCD2345", "RK20250115002", "002", "2025-01-15"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUniqueViolation)
}

func TestVoucherRepository_CountForDate(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	count, err := repo.CountForDate(nil, "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	mustInsert(t, repo, testVoucher("ABCD2345", "RK20250115001", "001", "2025-01-15"))
	mustInsert(t, repo, testVoucher("EFGH6789", "RK20250115002", "002", "2025-01-15"))
	mustInsert(t, repo, testVoucher("JKLM2345", "RK20250116001", "001", "2025-01-16"))

	count, err = repo.CountForDate(nil, "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVoucherRepository_CodeExists(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	mustInsert(t, repo, testVoucher("ABCD2345", "RK20250115001", "001", "2025-01-15"))

	exists, err := repo.CodeExists(nil, "ABCD2345")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.CodeExists(nil, "ZZZZ9999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestVoucherRepository_MarkExpired(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	v := mustInsert(t, repo, testVoucher("ABCD2345", "RK20250115001", "001", "2025-01-15"))

	affected, err := repo.MarkExpired(nil, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := repo.FindByIdentifier(nil, v.VoucherCode)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)

	// Second attempt matches nothing: the status guard holds.
	affected, err = repo.MarkExpired(nil, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestVoucherRepository_Redeem(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	v := mustInsert(t, repo, testVoucher("ABCD2345", "RK20250115001", "001", "2025-01-15"))

	now := time.Now()
	affected, err := repo.Redeem(nil, v.ID, "Budi Santoso", models.TenantMartabak, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := repo.FindByIdentifier(nil, v.VoucherCode)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRedeemed, got.Status)
	assert.Equal(t, "Budi Santoso", got.RedeemedBy)
	assert.Equal(t, models.TenantMartabak, got.TenantUsed)
	require.NotNil(t, got.RedeemedAt)

	// Redeeming a redeemed voucher changes nothing.
	affected, err = repo.Redeem(nil, v.ID, "Someone Else", models.TenantMieAceh, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	got, err = repo.FindByIdentifier(nil, v.VoucherCode)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", got.RedeemedBy)
}

func TestVoucherRepository_Redeem_ExpiredVoucher(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	v := mustInsert(t, repo, testVoucher("ABCD2345", "RK20250115001", "001", "2025-01-15"))

	_, err := repo.MarkExpired(nil, v.ID)
	require.NoError(t, err)

	affected, err := repo.Redeem(nil, v.ID, "Budi Santoso", models.TenantMartabak, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func redeemForTest(t *testing.T, repo *VoucherRepository, v *models.Voucher, by, tenant string, at time.Time) {
	t.Helper()
	affected, err := repo.Redeem(nil, v.ID, by, tenant, at)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
}

func TestVoucherRepository_GetSummary(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	v1 := mustInsert(t, repo, testVoucher("AAAA2345", "RK20250115001", "001", "2025-01-15"))
	v2 := mustInsert(t, repo, testVoucher("BBBB2345", "RK20250115002", "002", "2025-01-15"))
	v3 := mustInsert(t, repo, testVoucher("CCCC2345", "RK20250115003", "003", "2025-01-15"))

	redeemForTest(t, repo, v1, "Budi", models.TenantMartabak, time.Now())
	_, err := repo.MarkExpired(nil, v3.ID)
	require.NoError(t, err)
	_ = v2

	summary, err := repo.GetSummary("2025-01-15", "", "")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-15", summary.StartDate)
	assert.Equal(t, "2025-01-15", summary.EndDate)
	assert.Equal(t, 3, summary.TotalGenerated)
	assert.Equal(t, 1, summary.TotalRedeemed)
	assert.Equal(t, 1, summary.TotalUnused)
	assert.Equal(t, 1, summary.TotalExpired)
	assert.Equal(t, "33.3%", summary.RedemptionRate)
	assert.Equal(t, 1, summary.ByTenant[models.TenantMartabak])
	assert.Equal(t, 0, summary.ByTenant[models.TenantMieAceh])
}

func TestVoucherRepository_GetSummary_EmptyDate(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	summary, err := repo.GetSummary("2025-01-15", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalGenerated)
	assert.Equal(t, "0.0%", summary.RedemptionRate)
}

func TestVoucherRepository_GetSummary_DateRangeAndStatus(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	v1 := mustInsert(t, repo, testVoucher("AAAA2345", "RK20250115001", "001", "2025-01-15"))
	mustInsert(t, repo, testVoucher("BBBB2345", "RK20250116001", "001", "2025-01-16"))
	mustInsert(t, repo, testVoucher("CCCC2345", "RK20250120001", "001", "2025-01-20"))

	redeemForTest(t, repo, v1, "Budi", models.TenantMieAceh, time.Now())

	summary, err := repo.GetSummary("2025-01-15", "2025-01-16", "")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalGenerated)
	assert.Equal(t, "50.0%", summary.RedemptionRate)

	redeemedOnly, err := repo.GetSummary("2025-01-15", "2025-01-16", models.StatusRedeemed)
	require.NoError(t, err)
	assert.Equal(t, 1, redeemedOnly.TotalGenerated)
	assert.Equal(t, 1, redeemedOnly.TotalRedeemed)
}

func TestRedemptionRate(t *testing.T) {
	tests := []struct {
		name      string
		redeemed  int
		generated int
		expected  string
	}{
		{"zero generated", 0, 0, "0.0%"},
		{"none redeemed", 0, 10, "0.0%"},
		{"one third", 1, 3, "33.3%"},
		{"half", 1, 2, "50.0%"},
		{"two thirds", 2, 3, "66.7%"},
		{"all redeemed", 5, 5, "100.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedemptionRate(tt.redeemed, tt.generated); got != tt.expected {
				t.Errorf("RedemptionRate(%d, %d) = %q, want %q", tt.redeemed, tt.generated, got, tt.expected)
			}
		})
	}
}

func TestVoucherRepository_ListDetails(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	mustInsert(t, repo, testVoucher("BBBB2345", "RK20250115002", "002", "2025-01-15"))
	v1 := mustInsert(t, repo, testVoucher("AAAA2345", "RK20250115001", "001", "2025-01-15"))
	redeemForTest(t, repo, v1, "Budi", models.TenantMartabak, time.Now())

	details, err := repo.ListDetails("2025-01-15", "", "")
	require.NoError(t, err)
	require.Len(t, details, 2)

	// Ordered by voucher number.
	assert.Equal(t, "001", details[0].VoucherNumber)
	assert.Equal(t, models.StatusRedeemed, details[0].Status)
	assert.Equal(t, "Budi", details[0].RedeemedBy)
	assert.Equal(t, "002", details[1].VoucherNumber)
	assert.Equal(t, models.StatusActive, details[1].Status)

	active, err := repo.ListDetails("2025-01-15", "", models.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "BBBB2345", active[0].VoucherCode)
}

func TestVoucherRepository_ListForPrint(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	mustInsert(t, repo, testVoucher("BBBB2345", "RK20250115002", "002", "2025-01-15"))
	mustInsert(t, repo, testVoucher("AAAA2345", "RK20250115001", "001", "2025-01-15"))
	mustInsert(t, repo, testVoucher("CCCC2345", "RK20250116001", "001", "2025-01-16"))

	vouchers, err := repo.ListForPrint("2025-01-15")
	require.NoError(t, err)
	require.Len(t, vouchers, 2)
	assert.Equal(t, "001", vouchers[0].VoucherNumber)
	assert.Equal(t, "002", vouchers[1].VoucherNumber)
	assert.Equal(t, models.DefaultNominal, vouchers[0].Nominal)
	assert.Equal(t, models.DefaultCompanyName, vouchers[0].CompanyName)
}

func TestVoucherRepository_ListRedeemedOn(t *testing.T) {
	repo := NewVoucherRepository(newTestDB(t), zap.NewNop())

	v1 := mustInsert(t, repo, testVoucher("AAAA2345", "RK20250115001", "001", "2025-01-15"))
	v2 := mustInsert(t, repo, testVoucher("BBBB2345", "RK20250115002", "002", "2025-01-15"))
	mustInsert(t, repo, testVoucher("CCCC2345", "RK20250115003", "003", "2025-01-15"))

	day := time.Date(2025, 1, 15, 12, 0, 0, 0, time.Local)
	redeemForTest(t, repo, v1, "Budi", models.TenantMartabak, day)
	redeemForTest(t, repo, v2, "Citra", models.TenantMieAceh, day.AddDate(0, 0, 1))

	redeemed, err := repo.ListRedeemedOn("2025-01-15")
	require.NoError(t, err)
	require.Len(t, redeemed, 1)
	assert.Equal(t, "AAAA2345", redeemed[0].VoucherCode)

	nextDay, err := repo.ListRedeemedOn("2025-01-16")
	require.NoError(t, err)
	require.Len(t, nextDay, 1)
	assert.Equal(t, "BBBB2345", nextDay[0].VoucherCode)

	_, err = repo.ListRedeemedOn("not-a-date")
	assert.Error(t, err)
}

func TestVoucherRepository_InsertInTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepository(db, zap.NewNop())

	tx, err := db.Begin()
	require.NoError(t, err)

	require.NoError(t, repo.Insert(tx, testVoucher("AAAA2345", "RK20250115001", "001", "2025-01-15")))
	require.NoError(t, tx.Rollback())

	// Rollback leaves no trace.
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM vouchers`).Scan(&count))
	assert.Equal(t, 0, count)
}
