package enums

import "fmt"

// RecurringExpenseType classifies scheduled monthly obligations.
type RecurringExpenseType string

const (
	RecurringExpenseTypeFixedCost       RecurringExpenseType = "fixed_cost"
	RecurringExpenseTypeOwnerWithdrawal RecurringExpenseType = "owner_withdrawal"
	RecurringExpenseTypeInstallment     RecurringExpenseType = "installment"
)

var validRecurringExpenseTypes = []RecurringExpenseType{
	RecurringExpenseTypeFixedCost,
	RecurringExpenseTypeOwnerWithdrawal,
	RecurringExpenseTypeInstallment,
}

// IsValid reports whether the value matches the canonical expense enum.
func (t RecurringExpenseType) IsValid() bool {
	for _, candidate := range validRecurringExpenseTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseRecurringExpenseType converts raw input into RecurringExpenseType.
func ParseRecurringExpenseType(value string) (RecurringExpenseType, error) {
	for _, candidate := range validRecurringExpenseTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recurring expense type %q", value)
}
