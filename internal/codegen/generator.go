// Package codegen produces voucher identifiers: random human-entryable
// codes and deterministic legacy barcodes.
package codegen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

// Alphabet excludes visually ambiguous characters (0/O, 1/I) so codes
// survive being read aloud or typed from a printed ticket.
const (
	Alphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength = 8

	// maxAttempts bounds unique-code generation. With 32^8 possible
	// codes, hitting this limit means something is wrong with the
	// store rather than with luck.
	maxAttempts = 10
)

// ErrCodeGenerationExhausted is returned when no unique code was found
// within the attempt limit. Callers should treat it as a retryable
// infrastructure fault, not as bad user input.
var ErrCodeGenerationExhausted = errors.New("voucher code generation exhausted attempts")

// ExistsFunc reports whether a candidate code is already taken.
type ExistsFunc func(code string) (bool, error)

// VoucherCode returns a random 8-character code. It is pure output:
// uniqueness is not guaranteed, use UniqueVoucherCode for that.
func VoucherCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	b.Grow(CodeLength)
	for _, c := range buf {
		b.WriteByte(Alphabet[int(c)%len(Alphabet)])
	}
	return b.String(), nil
}

// UniqueVoucherCode generates codes until one passes the exists check,
// up to a bounded number of attempts.
func UniqueVoucherCode(exists ExistsFunc) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := VoucherCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(code)
		if err != nil {
			return "", fmt.Errorf("failed to check code collision: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

// Barcode derives the legacy scanner identifier for a voucher:
// "RK" + issue date without dashes + zero-padded 3-digit sequence.
// Uniqueness comes from the caller supplying a monotonically
// increasing per-date sequence.
func Barcode(issueDate string, sequence int) string {
	return fmt.Sprintf("RK%s%03d", strings.ReplaceAll(issueDate, "-", ""), sequence)
}

// VoucherNumber formats the per-date display sequence ("001", "002"...).
func VoucherNumber(sequence int) string {
	return fmt.Sprintf("%03d", sequence)
}
