package utils

import "testing"

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"valid date", "2025-01-15", false},
		{"leap day", "2024-02-29", false},
		{"empty", "", true},
		{"wrong format", "15/01/2025", true},
		{"no dashes", "20250115", true},
		{"impossible day", "2025-02-30", true},
		{"impossible month", "2025-13-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate(tt.date)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmployeeIDs(t *testing.T) {
	big := make([]int64, 101)
	for i := range big {
		big[i] = int64(i + 1)
	}

	tests := []struct {
		name    string
		ids     []int64
		wantErr bool
	}{
		{"single id", []int64{1}, false},
		{"several ids", []int64{1, 2, 3}, false},
		{"empty", nil, true},
		{"zero id", []int64{0}, true},
		{"negative id", []int64{1, -5}, true},
		{"over batch limit", big, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmployeeIDs(tt.ids)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmployeeIDs(%v) error = %v, wantErr %v", tt.ids, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"normal name", "Budi Santoso", false},
		{"empty", "", true},
		{"too long", string(long), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Budi Santoso", "Budi Santoso"},
		{"Budi\x00Santoso", "BudiSantoso"},
		{"line\nbreak\ttab", "linebreaktab"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeString(tt.input); got != tt.expected {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
