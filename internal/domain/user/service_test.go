// internal/domain/user/service_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebitBalanceRejectsNonPositiveAmounts(t *testing.T) {
	// Validation runs before any storage access, so no transaction is needed.
	// Zero-total orders must skip the debit entirely rather than pass 0 here.
	s := &Service{}

	assert.ErrorContains(t, s.DebitBalance(nil, 7, 0, "ORD-1"), "debit amount must be positive")
	assert.ErrorContains(t, s.DebitBalance(nil, 7, -5000, "ORD-1"), "debit amount must be positive")
}

func TestCreditBalanceRejectsNonPositiveAmounts(t *testing.T) {
	s := &Service{}

	assert.ErrorContains(t, s.CreditBalance(nil, 7, 0, "refund", "ORD-1"), "credit amount must be positive")
	assert.ErrorContains(t, s.CreditBalance(nil, 7, -100, "refund", "ORD-1"), "credit amount must be positive")
}
