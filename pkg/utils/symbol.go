package utils

import (
	"strings"
)

// NormalizeSymbol uppercases a user-supplied ticker and strips whitespace and a leading "$".
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	return strings.TrimSpace(strings.TrimPrefix(symbol, "$"))
}
