// Package report assembles admin reporting views and exports them as
// Excel workbooks.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rakankuphi/voucher-system/internal/models"
	"github.com/rakankuphi/voucher-system/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Exporter renders voucher reports into xlsx workbooks for the admin
// client.
type Exporter struct {
	vouchers *repository.VoucherRepository
	logger   *zap.Logger
}

// NewExporter creates a new report exporter.
func NewExporter(vouchers *repository.VoucherRepository, logger *zap.Logger) *Exporter {
	return &Exporter{
		vouchers: vouchers,
		logger:   logger,
	}
}

const (
	summarySheet = "Summary"
	detailsSheet = "Details"
)

// ExportWorkbook builds a two-sheet workbook: aggregate counts and
// per-voucher rows for the inclusive date range.
func (e *Exporter) ExportWorkbook(startDate, endDate, statusFilter string) ([]byte, error) {
	summary, err := e.vouchers.GetSummary(startDate, endDate, statusFilter)
	if err != nil {
		return nil, err
	}
	details, err := e.vouchers.ListDetails(startDate, endDate, statusFilter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := e.fillSummary(f, summary); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(detailsSheet); err != nil {
		return nil, fmt.Errorf("failed to create details sheet: %w", err)
	}
	if err := e.fillDetails(f, details); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Exported voucher report",
		zap.String("start", startDate),
		zap.String("end", endDate),
		zap.Int("detail_rows", len(details)))

	return buf.Bytes(), nil
}

func (e *Exporter) fillSummary(f *excelize.File, s *models.Summary) error {
	rows := [][]any{
		{"Period", fmt.Sprintf("%s to %s", s.StartDate, s.EndDate)},
		{"Total Generated", s.TotalGenerated},
		{"Total Redeemed", s.TotalRedeemed},
		{"Total Unused", s.TotalUnused},
		{"Total Expired", s.TotalExpired},
		{"Redemption Rate", s.RedemptionRate},
		{models.TenantMartabak, s.ByTenant[models.TenantMartabak]},
		{models.TenantMieAceh, s.ByTenant[models.TenantMieAceh]},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func (e *Exporter) fillDetails(f *excelize.File, details []*models.VoucherDetail) error {
	header := []any{"Voucher Code", "Barcode", "Number", "Status", "Employee",
		"Redeemed At", "Redeemed By", "Tenant", "Issue Date"}
	if err := f.SetSheetRow(detailsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write details header: %w", err)
	}

	for i, d := range details {
		redeemedAt := ""
		if d.RedeemedAt != nil {
			redeemedAt = d.RedeemedAt.Format(time.RFC3339)
		}
		row := []any{d.VoucherCode, d.Barcode, d.VoucherNumber, d.Status, d.EmployeeName,
			redeemedAt, d.RedeemedBy, d.TenantUsed, d.IssueDate}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(detailsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write detail row: %w", err)
		}
	}
	return nil
}
