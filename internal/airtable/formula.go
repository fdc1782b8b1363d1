package airtable

import "strings"

// Quote renders s as an Airtable formula string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// FieldEquals builds `{field} = 'value'`.
func FieldEquals(field, value string) string {
	return "{" + field + "} = " + Quote(value)
}

// FieldEqualsFold builds a case-insensitive equality on a text field.
func FieldEqualsFold(field, value string) string {
	return "LOWER({" + field + "}) = " + Quote(strings.ToLower(value))
}
