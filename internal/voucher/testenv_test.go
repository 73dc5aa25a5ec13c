package voucher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rakankuphi/voucher-system/internal/repository"
	"github.com/rakankuphi/voucher-system/pkg/database"
)

// env bundles a throwaway database with both engines wired the way
// main does it, on a fixed clock.
type env struct {
	db         *database.DB
	employees  *repository.EmployeeRepository
	vouchers   *repository.VoucherRepository
	issuance   *IssuanceEngine
	redemption *RedemptionEngine
}

// testDay is the fixed "today" used by the test clock.
var testDay = time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local)

func fixedClock() time.Time {
	return testDay
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	}, logger)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_initial_schema.sql"))
	if err != nil {
		t.Fatalf("failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	employees := repository.NewEmployeeRepository(db.DB, logger)
	vouchers := repository.NewVoucherRepository(db.DB, logger)

	return &env{
		db:         db,
		employees:  employees,
		vouchers:   vouchers,
		issuance:   NewIssuanceEngine(db, employees, vouchers, IssuanceConfig{}, logger),
		redemption: NewRedemptionEngine(db, vouchers, fixedClock, logger),
	}
}

func (e *env) createEmployee(t *testing.T, name string) int64 {
	t.Helper()
	employee, err := e.employees.Create(name, "")
	if err != nil {
		t.Fatalf("failed to create employee %q: %v", name, err)
	}
	return employee.ID
}
