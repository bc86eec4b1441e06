package itau

import "strings"

// OwnBankCode is the routing code of the bank that debits the batch. Payments
// to suppliers holding an account at this bank use the Classic layout.
const OwnBankCode = "113"

// bankCodesByName maps the supplier's bank name to the 3-character routing
// code expected by the Itaú Link Empresa upload format. BROU's code is a
// single digit padded with spaces, not zeros.
var bankCodesByName = map[string]string{
	"Itaú":             "113",
	"BROU":             "  1",
	"Santander":        "137",
	"Scotiabank":       "128",
	"BBVA":             "153",
	"HSBC":             "157",
	"Bandes":           "110",
	"Citibank":         "205",
	"Nación Argentina": "246",
}

// BankCode resolves the routing code for a bank name. The second return
// reports whether the bank is known.
func BankCode(bankName string) (string, bool) {
	code, ok := bankCodesByName[strings.TrimSpace(bankName)]
	return code, ok
}

// IsOwnBank reports whether payer and payee share the debiting bank.
func IsOwnBank(bankName string) bool {
	code, ok := BankCode(bankName)
	return ok && code == OwnBankCode
}
