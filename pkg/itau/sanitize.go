package itau

import "strings"

// transliterations holds the bank-mandated substitutions for characters the
// upload format cannot carry. Eñes become '#' per the Itaú spec; accented
// vowels collapse to their unaccented base.
var transliterations = map[rune]rune{
	'ñ': '#', 'Ñ': '#',
	'á': 'a', 'Á': 'a',
	'é': 'e', 'É': 'e',
	'í': 'i', 'Í': 'i',
	'ó': 'o', 'Ó': 'o',
	'ú': 'u', 'Ú': 'u',
	'ü': 'u', 'Ü': 'u',
}

// Sanitize rewrites free text into the 7-bit subset the bank accepts:
// letters, digits, space and the punctuation allow-list / ? : ( ) . , ' + -.
// Characters outside both the transliteration table and the allow-list become
// a space so later padding keeps column semantics intact.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := transliterations[r]; ok {
			b.WriteRune(sub)
			continue
		}
		if allowed(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return b.String()
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case ' ', '/', '?', ':', '(', ')', '.', ',', '\'', '+', '-':
		return true
	}
	return false
}

// PadRight truncates or right-pads s with spaces to exactly width bytes.
// Truncation is silent; callers use EncodeClassicLine/EncodeInterBankLine
// warnings when they need to know a value was cut.
func PadRight(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// PadLeft truncates or left-pads s with spaces to exactly width bytes.
func PadLeft(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// PadLeftZero truncates or left-pads s with zeros to exactly width bytes.
// Used for numeric account fields.
func PadLeftZero(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return strings.Repeat("0", width-len(s)) + s
}
