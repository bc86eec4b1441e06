package enums

import "fmt"

// AccountType distinguishes checking (CC) from savings (CA) supplier accounts.
type AccountType string

const (
	AccountTypeChecking AccountType = "CC"
	AccountTypeSavings  AccountType = "CA"
)

var validAccountTypes = []AccountType{
	AccountTypeChecking,
	AccountTypeSavings,
}

// IsValid reports whether the account type is recognized.
func (t AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseAccountType converts a raw string into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
