// utils/format.go
package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usdPrinter = message.NewPrinter(language.English)

// FormatUSD renders a dollar amount with thousand separators, e.g. "$1,234.56".
func FormatUSD(v float64) string {
	return usdPrinter.Sprintf("$%.2f", v)
}
