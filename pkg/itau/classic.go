package itau

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

// Line lengths for the two Itaú Link Empresa record layouts.
const (
	ClassicLineLength   = 97
	InterBankLineLength = 165
)

const (
	applicationCode = "7777" // supplier-payments application
	paymentType     = "2"    // credit to account
)

// Warning reports a field whose value did not fit its column range and was
// truncated. Encoding still succeeds; the caller decides whether to surface it.
type Warning struct {
	Field string
	Value string
	Width int
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %q truncated to %d characters", w.Field, w.Value, w.Width)
}

// ClassicRecord carries one same-bank transfer for the 97-column layout.
type ClassicRecord struct {
	DebitAccount    string
	CreditAccount   string
	Currency        enums.Currency
	Amount          decimal.Decimal
	ValueDate       time.Time
	Reference       string
	OfficeCode      string
	FundDestination enums.FundDestination
}

func currencyCode(c enums.Currency) string {
	if c == enums.CurrencyUSD {
		return "US.D"
	}
	return "URGP"
}

func checkWidth(warnings []Warning, field, value string, width int) []Warning {
	if len(value) > width {
		warnings = append(warnings, Warning{Field: field, Value: value, Width: width})
	}
	return warnings
}

// EncodeClassicLine renders a same-bank transfer as one 97-character line.
// Over-wide fields are truncated and reported as warnings; the only hard
// failure is an unencodable amount.
func EncodeClassicLine(r ClassicRecord) (string, []Warning, error) {
	amount, err := EncodeAmount(r.Amount)
	if err != nil {
		return "", nil, err
	}

	dest := r.FundDestination
	if dest == "" {
		dest = enums.FundDestinationSupplierPayment
	}
	reference := Sanitize(r.Reference)

	var warnings []Warning
	warnings = checkWidth(warnings, "debit_account", r.DebitAccount, 7)
	warnings = checkWidth(warnings, "reference", reference, 12)
	warnings = checkWidth(warnings, "credit_account", r.CreditAccount, 7)
	warnings = checkWidth(warnings, "office_code", r.OfficeCode, 2)

	var b strings.Builder
	b.Grow(ClassicLineLength)
	b.WriteString(PadLeftZero(r.DebitAccount, 7)) // 1-7   debit account
	b.WriteString(applicationCode)                // 8-11
	b.WriteString(paymentType)                    // 12
	b.WriteString(strings.Repeat(" ", 7))         // 13-19 filler
	b.WriteString(PadRight(reference, 12))        // 20-31 reference
	b.WriteString(strings.Repeat(" ", 28))        // 32-59 filler
	b.WriteString(PadLeftZero(r.CreditAccount, 7)) // 60-66 credit account
	b.WriteString(currencyCode(r.Currency))       // 67-70 currency
	b.WriteString(amount)                         // 71-85 amount
	b.WriteString(EncodeDate(r.ValueDate))        // 86-92 value date
	b.WriteString(PadRight(r.OfficeCode, 2))      // 93-94 office
	b.WriteString(PadRight(string(dest), 3))      // 95-97 fund destination

	return b.String(), warnings, nil
}

// ParseClassicLine recovers the structured fields from a 97-character Classic
// line. Free-text fields come back trimmed; the amount is exact in cents.
func ParseClassicLine(line string) (ClassicRecord, error) {
	if len(line) != ClassicLineLength {
		return ClassicRecord{}, fmt.Errorf("classic line must be %d characters, got %d", ClassicLineLength, len(line))
	}

	cents := decimal.Zero
	if digits := strings.TrimLeft(line[70:85], "0"); digits != "" {
		var err error
		cents, err = decimal.NewFromString(digits)
		if err != nil {
			return ClassicRecord{}, fmt.Errorf("invalid amount field %q", line[70:85])
		}
	}
	date, err := DecodeDate(line[85:92])
	if err != nil {
		return ClassicRecord{}, err
	}

	currency := enums.CurrencyUYU
	if line[66:70] == "US.D" {
		currency = enums.CurrencyUSD
	}

	return ClassicRecord{
		DebitAccount:    strings.TrimLeft(line[0:7], "0"),
		Reference:       strings.TrimRight(line[19:31], " "),
		CreditAccount:   strings.TrimLeft(line[59:66], "0"),
		Currency:        currency,
		Amount:          cents.Shift(-2),
		ValueDate:       date,
		OfficeCode:      strings.TrimRight(line[92:94], " "),
		FundDestination: enums.FundDestination(strings.TrimRight(line[94:97], " ")),
	}, nil
}
