package aggregate_test

import (
	"testing"
	"time"

	"hotel-rates-scraper/aggregate"
	"hotel-rates-scraper/models"

	"github.com/google/go-cmp/cmp"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func record(hotel string, checkIn time.Time, room string, price int64) models.RoomRecord {
	return models.RoomRecord{
		HotelName:       hotel,
		CheckIn:         checkIn,
		CheckOut:        checkIn.AddDate(0, 0, 7),
		RoomName:        room,
		PriceMinorUnits: price,
		SourceURL:       "https://example.test/" + hotel,
	}
}

func TestCheapest_KeepsLowestPrice(t *testing.T) {
	june := day(time.June, 1)
	records := []models.RoomRecord{
		record("Hotel A", june, "Deluxe", 20000),
		record("Hotel A", june, "Deluxe", 15000),
		record("Hotel A", june, "Suite", 50000),
	}

	got := aggregate.Cheapest(records)
	want := models.Table{
		record("Hotel A", june, "Deluxe", 15000),
		record("Hotel A", june, "Suite", 50000),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cheapest() mismatch (-want +got):\n%s", diff)
	}
}

func TestCheapest_Idempotent(t *testing.T) {
	records := []models.RoomRecord{
		record("Hotel B", day(time.July, 3), "Suite", 42000),
		record("Hotel A", day(time.June, 1), "Deluxe", 20000),
		record("Hotel A", day(time.June, 1), "Deluxe", 15000),
		record("Hotel B", day(time.June, 1), "Twin", 9000),
		record("Hotel A", day(time.July, 3), "Suite", 41000),
		record("Hotel A", day(time.June, 1), "", 100),
	}

	once := aggregate.Cheapest(records)
	twice := aggregate.Cheapest(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Cheapest() is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestCheapest_TiesKeepFirst(t *testing.T) {
	june := day(time.June, 1)
	first := record("Hotel A", june, "Deluxe", 15000)
	second := record("Hotel B", june, "Deluxe", 15000)

	got := aggregate.Cheapest([]models.RoomRecord{first, second})
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].HotelName != "Hotel A" {
		t.Errorf("expected the first record to win a tie, got %q", got[0].HotelName)
	}
}

func TestCheapest_DropsEmptyRoomNames(t *testing.T) {
	june := day(time.June, 1)
	got := aggregate.Cheapest([]models.RoomRecord{
		record("Hotel A", june, "", 100),
		record("Hotel A", june, "   ", 100),
		record("Hotel A", june, "Deluxe", 20000),
	})

	if len(got) != 1 || got[0].RoomName != "Deluxe" {
		t.Errorf("expected only Deluxe to survive, got %+v", got)
	}
}

func TestCheapest_Ordering(t *testing.T) {
	records := []models.RoomRecord{
		record("Hotel B", day(time.July, 3), "Suite", 1),
		record("Hotel B", day(time.June, 1), "Twin", 2),
		record("Hotel A", day(time.June, 1), "Single", 3),
		record("Hotel A", day(time.June, 1), "Double", 4),
	}

	got := aggregate.Cheapest(records)

	type row struct {
		CheckIn time.Time
		Hotel   string
		Room    string
	}
	var gotRows []row
	for _, r := range got {
		gotRows = append(gotRows, row{r.CheckIn, r.HotelName, r.RoomName})
	}
	want := []row{
		{day(time.June, 1), "Hotel A", "Double"},
		{day(time.June, 1), "Hotel A", "Single"},
		{day(time.June, 1), "Hotel B", "Twin"},
		{day(time.July, 3), "Hotel B", "Suite"},
	}
	if diff := cmp.Diff(want, gotRows); diff != "" {
		t.Errorf("Cheapest() order mismatch (-want +got):\n%s", diff)
	}
}

func TestCheapest_DifferentCheckOutIsDistinct(t *testing.T) {
	june := day(time.June, 1)
	short := record("Hotel A", june, "Deluxe", 20000)
	long := short
	long.CheckOut = june.AddDate(0, 0, 8)
	long.PriceMinorUnits = 10000

	got := aggregate.Cheapest([]models.RoomRecord{short, long})
	if len(got) != 2 {
		t.Errorf("expected 2 rows for distinct stays, got %d", len(got))
	}
}

func TestCheapest_Empty(t *testing.T) {
	if got := aggregate.Cheapest(nil); len(got) != 0 {
		t.Errorf("expected empty table, got %d rows", len(got))
	}
}
