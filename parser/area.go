package parser

import (
	"regexp"
	"strconv"
	"strings"

	"hotel-rates-scraper/models"
)

// areaPattern matches a number followed by an area unit in any of the spellings
// seen on hotel pages. Commas in the number are thousands separators.
var areaPattern = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*(` +
	`(?:square\s*(?:feet|foot|ft|meters|metres|m)|sq\.?\s*(?:feet|ft|meters|metres|m)|sqft|sqm|ft2|m2)\b` +
	`|feet²|ft²|meters²|metres²|m²)`)

// ParseArea finds the first "<number> <unit>" area token in text.
// ok is false when text carries no area; that is not an error.
func ParseArea(text string) (value float64, unit models.AreaUnit, ok bool) {
	match := areaPattern.FindStringSubmatch(normalizeWhitespace(text))
	if match == nil {
		return 0, "", false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0, "", false
	}
	return value, normalizeAreaUnit(match[2]), true
}

// normalizeAreaUnit maps a unit spelling onto SquareFeet or SquareMeters.
// Every feet spelling carries an "f"; no meter spelling does.
func normalizeAreaUnit(raw string) models.AreaUnit {
	if strings.ContainsAny(raw, "fF") {
		return models.SquareFeet
	}
	return models.SquareMeters
}
