package pricing

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders cents as a grouped amount followed by the currency code,
// e.g. 170000 → "1,700 AED" and 12550 → "125.50 AED".
func Format(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole, frac := cents/100, cents%100
	if frac == 0 {
		return sign + printer.Sprintf("%d %s", whole, currency)
	}
	return sign + printer.Sprintf("%d", whole) + fmt.Sprintf(".%02d %s", frac, currency)
}
