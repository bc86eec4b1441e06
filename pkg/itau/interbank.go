package itau

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

// InterBankRecord carries one transfer to another bank for the 165-column
// layout.
type InterBankRecord struct {
	BankCode          string
	AccountType       enums.AccountType
	CreditAccount     string
	Currency          enums.Currency
	Amount            decimal.Decimal
	BeneficiaryName   string
	BeneficiaryNumber string
	Reference         string
	FundDestination   enums.FundDestination
}

func accountTypeFlag(t enums.AccountType) string {
	if t == enums.AccountTypeSavings {
		return "1"
	}
	return "0"
}

// EncodeInterBankLine renders a transfer to another bank as one 165-character
// line. Same truncation-warning contract as EncodeClassicLine.
func EncodeInterBankLine(r InterBankRecord) (string, []Warning, error) {
	amount, err := EncodeAmount(r.Amount)
	if err != nil {
		return "", nil, err
	}

	dest := r.FundDestination
	if dest == "" {
		dest = enums.FundDestinationSupplierPayment
	}
	name := Sanitize(r.BeneficiaryName)
	reference := Sanitize(r.Reference)

	var warnings []Warning
	warnings = checkWidth(warnings, "bank_code", r.BankCode, 3)
	warnings = checkWidth(warnings, "credit_account", r.CreditAccount, 21)
	warnings = checkWidth(warnings, "beneficiary_name", name, 32)
	warnings = checkWidth(warnings, "beneficiary_number", r.BeneficiaryNumber, 14)
	warnings = checkWidth(warnings, "reference", reference, 70)

	// Beneficiary id is optional; an absent value stays blank rather than
	// reading as all zeros.
	beneficiary := PadLeft("", 14)
	if r.BeneficiaryNumber != "" {
		beneficiary = PadLeftZero(r.BeneficiaryNumber, 14)
	}

	var b strings.Builder
	b.Grow(InterBankLineLength)
	b.WriteString(PadLeft(r.BankCode, 3))           // 1-3     bank routing code
	b.WriteString(accountTypeFlag(r.AccountType))   // 4       account type
	b.WriteString(" ")                              // 5       filler
	b.WriteString(PadLeftZero(r.CreditAccount, 21)) // 6-26    credit account
	b.WriteString(currencyCode(r.Currency))         // 27-30   currency
	b.WriteString(PadLeftZero(amount, 16))          // 31-46   amount
	b.WriteString(PadRight(name, 32))               // 47-78   beneficiary name
	b.WriteString(beneficiary)                      // 79-92   beneficiary id
	b.WriteString(PadRight(reference, 70))          // 93-162  reference
	b.WriteString(PadRight(string(dest), 3))        // 163-165 fund destination

	return b.String(), warnings, nil
}
