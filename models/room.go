package models

import (
	"strconv"
	"time"
)

// DateLayout is the wire format for check-in/check-out dates
const DateLayout = "2006-01-02"

// AreaUnit is the normalized unit of a room's floor area
type AreaUnit string

const (
	SquareFeet   AreaUnit = "ft²"
	SquareMeters AreaUnit = "m²"
)

// RoomRecord represents one room offer extracted from a hotel page
type RoomRecord struct {
	HotelName       string
	CheckIn         time.Time
	CheckOut        time.Time
	RoomName        string
	PriceMinorUnits int64    // Digits of the displayed price, currency's smallest unit
	Area            float64  // Only meaningful when AreaUnit is set
	AreaUnit        AreaUnit // Empty when the page shows no room size
	SourceURL       string
}

// HasArea reports whether the record carries a room size
func (r RoomRecord) HasArea() bool {
	return r.AreaUnit != ""
}

// Columns is the column order used by every rendering of the aggregated table
var Columns = []string{
	"hotelName",
	"checkIn",
	"checkOut",
	"roomName",
	"priceMinorUnits",
	"roomArea",
	"areaUnit",
	"sourceUrl",
}

// Values returns the record's cells in Columns order.
// An absent area is rendered as two empty cells.
func (r RoomRecord) Values() []interface{} {
	area, unit := "", ""
	if r.HasArea() {
		area = strconv.FormatFloat(r.Area, 'f', -1, 64)
		unit = string(r.AreaUnit)
	}
	return []interface{}{
		r.HotelName,
		r.CheckIn.Format(DateLayout),
		r.CheckOut.Format(DateLayout),
		r.RoomName,
		r.PriceMinorUnits,
		area,
		unit,
		r.SourceURL,
	}
}

// Table is the aggregated, ordered result of one run.
// It is unique on (CheckIn, CheckOut, RoomName).
type Table []RoomRecord
