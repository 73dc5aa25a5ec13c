package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rakankuphi/voucher-system/internal/codegen"
	"github.com/rakankuphi/voucher-system/internal/report"
	"github.com/rakankuphi/voucher-system/internal/repository"
	"github.com/rakankuphi/voucher-system/internal/voucher"
	"github.com/rakankuphi/voucher-system/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	employees  *repository.EmployeeRepository
	vouchers   *repository.VoucherRepository
	issuance   *voucher.IssuanceEngine
	redemption *voucher.RedemptionEngine
	exporter   *report.Exporter
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	employees *repository.EmployeeRepository,
	vouchers *repository.VoucherRepository,
	issuance *voucher.IssuanceEngine,
	redemption *voucher.RedemptionEngine,
	exporter *report.Exporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		employees:  employees,
		vouchers:   vouchers,
		issuance:   issuance,
		redemption: redemption,
		exporter:   exporter,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GenerateRequest is the issuance request body.
type GenerateRequest struct {
	EmployeeIDs []int64 `json:"employee_ids"`
	IssueDate   string  `json:"issue_date"`
}

// RedeemRequest is the redemption request body.
type RedeemRequest struct {
	RedeemedBy string `json:"redeemed_by"`
	TenantUsed string `json:"tenant_used"`
}

// EmployeeRequest is the create/update employee body.
type EmployeeRequest struct {
	Name         string `json:"name"`
	EmployeeCode string `json:"employee_code"`
	IsActive     *bool  `json:"is_active"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":  "healthy",
			"service": "voucher-system",
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ListEmployees handles GET /api/employees
func (h *Handlers) ListEmployees(c *gin.Context) {
	employees, err := h.employees.GetAllActive()
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: employees})
}

// CreateEmployee handles POST /api/employees
func (h *Handlers) CreateEmployee(c *gin.Context) {
	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	if err := utils.ValidateName(req.Name); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	employee, err := h.employees.Create(utils.SanitizeString(req.Name), req.EmployeeCode)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateName),
			errors.Is(err, repository.ErrUniqueViolation):
			c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		default:
			h.serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: employee})
}

// UpdateEmployee handles PUT /api/employees/:id
func (h *Handlers) UpdateEmployee(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "invalid employee id")
		return
	}

	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	if err := utils.ValidateName(req.Name); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	employee, err := h.employees.Update(id, utils.SanitizeString(req.Name), req.EmployeeCode, active)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmployeeNotFound):
			c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
		case errors.Is(err, repository.ErrDuplicateName),
			errors.Is(err, repository.ErrUniqueViolation):
			c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		default:
			h.serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: employee})
}

// DeleteEmployee handles DELETE /api/employees/:id (soft delete)
func (h *Handlers) DeleteEmployee(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "invalid employee id")
		return
	}

	employee, err := h.employees.SoftDelete(id)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: employee})
}

// EmployeeVoucherStatus handles GET /api/employees/voucher-status?date=
func (h *Handlers) EmployeeVoucherStatus(c *gin.Context) {
	date := c.Query("date")
	if err := utils.ValidateDate(date); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	statuses, err := h.employees.GetEmployeesWithIssuanceStatus(date)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: statuses})
}

// GenerateVouchers handles POST /api/vouchers/generate
func (h *Handlers) GenerateVouchers(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	if err := utils.ValidateEmployeeIDs(req.EmployeeIDs); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if err := utils.ValidateDate(req.IssueDate); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	result, err := h.issuance.Issue(c.Request.Context(), req.EmployeeIDs, req.IssueDate)
	if err != nil {
		if errors.Is(err, codegen.ErrCodeGenerationExhausted) {
			c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: err.Error()})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"vouchers":             result.Created,
			"total":                len(result.Created),
			"skipped":              len(result.SkippedEmployeeIDs),
			"skipped_employee_ids": result.SkippedEmployeeIDs,
		},
	})
}

// CheckVoucher handles GET /api/vouchers/check/:identifier. The check
// persists lazy expiry, so repeated checks of a stale voucher observe
// status expired.
func (h *Handlers) CheckVoucher(c *gin.Context) {
	identifier := c.Param("identifier")

	v, err := h.redemption.Check(c.Request.Context(), identifier)
	if err != nil {
		if errors.Is(err, voucher.ErrNotFound) {
			c.JSON(http.StatusNotFound, Response{
				Success: false,
				Error:   "voucher not found",
				Data:    gin.H{"can_redeem": false},
			})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"voucher":    v,
			"can_redeem": h.redemption.CanRedeemNow(v),
		},
	})
}

// RedeemVoucher handles PUT /api/vouchers/redeem/:identifier
func (h *Handlers) RedeemVoucher(c *gin.Context) {
	identifier := c.Param("identifier")

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	if req.RedeemedBy == "" || req.TenantUsed == "" {
		h.badRequest(c, "redeemed_by and tenant_used are required")
		return
	}

	v, err := h.redemption.Redeem(c.Request.Context(), identifier,
		utils.SanitizeString(req.RedeemedBy), req.TenantUsed)
	if err != nil {
		h.redemptionError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: v})
}

// redemptionError maps engine error kinds to HTTP status codes.
func (h *Handlers) redemptionError(c *gin.Context, err error) {
	var already *voucher.AlreadyRedeemedError
	switch {
	case errors.Is(err, voucher.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "voucher not found"})
	case errors.As(err, &already):
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   "voucher already redeemed",
			Data: gin.H{
				"redeemed_at": already.RedeemedAt,
				"redeemed_by": already.RedeemedBy,
				"tenant_used": already.TenantUsed,
			},
		})
	case errors.Is(err, voucher.ErrExpired):
		c.JSON(http.StatusGone, Response{Success: false, Error: "voucher expired"})
	case errors.Is(err, voucher.ErrInvalidTenant):
		h.badRequest(c, "tenant_used must be one of the fixed tenants")
	case errors.Is(err, voucher.ErrRedemptionConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "redemption conflict"})
	default:
		h.serverError(c, err)
	}
}

// DailyReport handles GET /api/vouchers/report/daily?date&end_date&status
func (h *Handlers) DailyReport(c *gin.Context) {
	date, endDate, status, ok := h.reportParams(c)
	if !ok {
		return
	}

	summary, err := h.vouchers.GetSummary(date, endDate, status)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// ExportReport handles GET /api/vouchers/report/export?date&end_date&status
func (h *Handlers) ExportReport(c *gin.Context) {
	date, endDate, status, ok := h.reportParams(c)
	if !ok {
		return
	}

	workbook, err := h.exporter.ExportWorkbook(date, endDate, status)
	if err != nil {
		h.serverError(c, err)
		return
	}

	filename := "voucher-report-" + date + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// VoucherDetails handles GET /api/vouchers/details?date&end_date&status
func (h *Handlers) VoucherDetails(c *gin.Context) {
	date, endDate, status, ok := h.reportParams(c)
	if !ok {
		return
	}

	details, err := h.vouchers.ListDetails(date, endDate, status)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: details})
}

// VouchersForPrint handles GET /api/vouchers/print?date=
func (h *Handlers) VouchersForPrint(c *gin.Context) {
	date := c.Query("date")
	if err := utils.ValidateDate(date); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	vouchers, err := h.vouchers.ListForPrint(date)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vouchers})
}

// RedemptionHistory handles GET /api/vouchers/history?date=. Only
// successful redemptions are recorded; failed scans have no trail.
func (h *Handlers) RedemptionHistory(c *gin.Context) {
	date := c.Query("date")
	if err := utils.ValidateDate(date); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	vouchers, err := h.vouchers.ListRedeemedOn(date)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vouchers})
}

func (h *Handlers) reportParams(c *gin.Context) (date, endDate, status string, ok bool) {
	date = c.Query("date")
	if err := utils.ValidateDate(date); err != nil {
		h.badRequest(c, err.Error())
		return "", "", "", false
	}
	endDate = c.Query("end_date")
	if endDate != "" {
		if err := utils.ValidateDate(endDate); err != nil {
			h.badRequest(c, err.Error())
			return "", "", "", false
		}
	}
	return date, endDate, c.Query("status"), true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func (h *Handlers) serverError(c *gin.Context, err error) {
	h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
}
