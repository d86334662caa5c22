package aggregate

import (
	"cmp"
	"slices"
	"strings"

	"hotel-rates-scraper/models"
)

// key identifies offers that compete for the same table row.
// Hotel is not part of it: one run compares rooms across hotels by name.
type key struct {
	checkIn  int64
	checkOut int64
	roomName string
}

func keyOf(r models.RoomRecord) key {
	return key{
		checkIn:  r.CheckIn.Unix(),
		checkOut: r.CheckOut.Unix(),
		roomName: r.RoomName,
	}
}

// Cheapest reduces records to the lowest-priced offer per (check-in, check-out, room name).
// Records without a room name are dropped; on equal prices the first record wins.
// The table is ordered by check-in, then hotel name, then room name.
func Cheapest(records []models.RoomRecord) models.Table {
	index := make(map[key]int)
	table := make(models.Table, 0, len(records))

	for _, r := range records {
		if strings.TrimSpace(r.RoomName) == "" {
			continue
		}

		// Dedup by key, keep lowest price
		k := keyOf(r)
		if i, ok := index[k]; ok {
			if r.PriceMinorUnits < table[i].PriceMinorUnits {
				table[i] = r
			}
			continue
		}
		index[k] = len(table)
		table = append(table, r)
	}

	slices.SortStableFunc(table, compareRows)
	return table
}

func compareRows(a, b models.RoomRecord) int {
	if c := a.CheckIn.Compare(b.CheckIn); c != 0 {
		return c
	}
	if c := cmp.Compare(a.HotelName, b.HotelName); c != 0 {
		return c
	}
	return cmp.Compare(a.RoomName, b.RoomName)
}
