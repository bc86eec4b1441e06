package enums

import "fmt"

// FundDestination is the bank-defined 3-letter tag classifying the purpose of
// a credit transfer.
type FundDestination string

const (
	FundDestinationSupplierPayment FundDestination = "PAP"
	FundDestinationFees            FundDestination = "PHP"
	FundDestinationSalaries        FundDestination = "PSS"
	FundDestinationPerDiem         FundDestination = "PDA"
	FundDestinationOther           FundDestination = "OTR"
)

var validFundDestinations = []FundDestination{
	FundDestinationSupplierPayment,
	FundDestinationFees,
	FundDestinationSalaries,
	FundDestinationPerDiem,
	FundDestinationOther,
}

// IsValid reports whether the destination code is recognized.
func (d FundDestination) IsValid() bool {
	for _, candidate := range validFundDestinations {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseFundDestination converts a raw string into a FundDestination.
func ParseFundDestination(value string) (FundDestination, error) {
	for _, candidate := range validFundDestinations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fund destination %q", value)
}
