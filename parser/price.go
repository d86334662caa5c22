package parser

import (
	"strings"
)

// DigitsOnly strips every character that is not an ASCII digit.
// Price tokens are kept in the currency's minor units: "$1,234.56" -> "123456".
func DigitsOnly(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
}
