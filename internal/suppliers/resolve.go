package suppliers

import (
	"strings"
)

// ResolveOutcome describes how an extracted supplier reference was settled.
type ResolveOutcome string

const (
	OutcomeMatched    ResolveOutcome = "matched"
	OutcomeCreated    ResolveOutcome = "created"
	OutcomeUnresolved ResolveOutcome = "unresolved"
)

// legalSuffixes are company-form tokens that end the useful part of a name
// when deriving a short alias.
var legalSuffixes = map[string]struct{}{
	"s.a.":   {},
	"s.r.l.": {},
	"srl":    {},
	"ltda":   {},
	"ltda.":  {},
}

// NormalizeTaxID strips everything except digits from a RUT or CI value.
func NormalizeTaxID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AliasFromName derives a short alias by cutting the name at the first legal
// suffix token. "Distribuidora Perez S.A." becomes "Distribuidora Perez".
func AliasFromName(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	kept := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := legalSuffixes[strings.ToLower(field)]; ok {
			break
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(name)
	}
	return strings.Join(kept, " ")
}

// nameMatches reports whether the extracted name and a registry value refer
// to the same supplier, by case-insensitive containment in either direction.
func nameMatches(extracted, registered string) bool {
	a := strings.ToLower(strings.TrimSpace(extracted))
	b := strings.ToLower(strings.TrimSpace(registered))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
