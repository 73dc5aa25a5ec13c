package utils

import (
	"fmt"
	"regexp"
	"time"
)

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate validates a calendar date in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date is required")
	}
	if !dateRegex.MatchString(date) {
		return fmt.Errorf("date must be in YYYY-MM-DD format: %s", date)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date: %s", date)
	}
	return nil
}

// ValidateEmployeeIDs validates an issuance batch: 1 to 100 positive ids.
func ValidateEmployeeIDs(ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("employee_ids must not be empty")
	}
	if len(ids) > 100 {
		return fmt.Errorf("at most 100 employees per batch, got %d", len(ids))
	}
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("invalid employee id: %d", id)
		}
	}
	return nil
}

// ValidateName validates an employee name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 100 {
		return fmt.Errorf("name exceeds 100 characters")
	}
	return nil
}

// SanitizeString removes control characters from free-text input such
// as the redeeming staff name.
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
