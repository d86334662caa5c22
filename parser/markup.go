package parser

import (
	"fmt"
	"strings"
)

// Markup names every element and attribute the parser reads from a hotel page.
// When the upstream page layout changes, this is the only place to update.
type Markup struct {
	HotelName  string // Heading carrying the hotel's display name
	PriceTable string // Table listing room offers
	RoomRow    string // Row within PriceTable describing one room block
	RoomID     string // Attribute identifying the room block on a row
	RoomName   string // Inline label with the room type
	Price      string // Element displaying the price

	// AreaTags and AreaClassHints select the candidates scanned for a room size:
	// any AreaTags element whose class contains one of the hints.
	AreaTags       []string
	AreaClassHints []string
}

// DefaultMarkup matches the current hotel-details page
var DefaultMarkup = Markup{
	HotelName:      "h2.hp__hotel-name",
	PriceTable:     "table.hprt-table",
	RoomRow:        "tr",
	RoomID:         "data-block-id",
	RoomName:       "span.hprt-roomtype-icon-link",
	Price:          "span.prco-valign-middle-helper",
	AreaTags:       []string{"span", "div"},
	AreaClassHints: []string{"bui-badge", "room-size", "facility", "hprt-facility"},
}

// rowSelector returns the selector for rows carrying a room-block id
func (m Markup) rowSelector() string {
	return fmt.Sprintf("%s[%s]", m.RoomRow, m.RoomID)
}

// areaSelector expands tags x hints into one attribute-substring selector
func (m Markup) areaSelector() string {
	parts := make([]string, 0, len(m.AreaTags)*len(m.AreaClassHints))
	for _, tag := range m.AreaTags {
		for _, hint := range m.AreaClassHints {
			parts = append(parts, fmt.Sprintf("%s[class*='%s']", tag, hint))
		}
	}
	return strings.Join(parts, ", ")
}

// Validate reports selectors left empty
func (m Markup) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"hotel name", m.HotelName},
		{"price table", m.PriceTable},
		{"room row", m.RoomRow},
		{"room id", m.RoomID},
		{"room name", m.RoomName},
		{"price", m.Price},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("markup selectors not set: %s", strings.Join(missing, ", "))
	}
	return nil
}
