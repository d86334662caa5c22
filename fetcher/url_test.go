package fetcher

import (
	"net/url"
	"testing"
	"time"

	"hotel-rates-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTarget(hotel string) models.FetchTarget {
	checkIn := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	return models.FetchTarget{
		HotelID:  hotel,
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, 7),
		Country:  "sg",
		Currency: "SGD",
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		hotel    string
		country  string
		currency string
		checkIn  time.Time
	}{
		{"basic", "marina-bay-sands", "sg", "SGD", time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)},
		{"other country", "the-ritz-london", "gb", "GBP", time.Date(2025, time.January, 24, 0, 0, 0, 0, time.UTC)},
		{"digits in id", "hotel-81-bugis", "sg", "USD", time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)},
		{"year end", "park-hyatt-tokyo", "jp", "JPY", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := models.FetchTarget{
				HotelID:  tt.hotel,
				CheckIn:  tt.checkIn,
				CheckOut: tt.checkIn.AddDate(0, 0, 7),
				Country:  tt.country,
				Currency: tt.currency,
			}

			link, err := BuildURL("https://www.booking.com", "en-gb", target, Occupancy{Adults: 2})
			require.NoError(t, err)

			u, err := url.Parse(link)
			require.NoError(t, err)
			assert.Equal(t, "https", u.Scheme)
			assert.Equal(t, "www.booking.com", u.Host)
			assert.Equal(t, "/hotel/"+tt.country+"/"+tt.hotel+".en-gb.html", u.Path)

			q := u.Query()
			assert.Equal(t, tt.checkIn.Format(models.DateLayout), q.Get("checkin"))
			assert.Equal(t, tt.checkIn.AddDate(0, 0, 7).Format(models.DateLayout), q.Get("checkout"))
			assert.Equal(t, tt.currency, q.Get("selected_currency"))
			assert.Equal(t, "2", q.Get("group_adults"))
			assert.Equal(t, "0", q.Get("group_children"))
			assert.Equal(t, "0", q.Get("dist"))
			assert.Len(t, q, 6)
		})
	}
}

func TestBuildURL_BasePath(t *testing.T) {
	link, err := BuildURL("http://127.0.0.1:8080/mirror", "", testTarget("x"), Occupancy{Adults: 1, Children: 2})
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/mirror/hotel/sg/x.html", u.Path)
	assert.Equal(t, "1", u.Query().Get("group_adults"))
	assert.Equal(t, "2", u.Query().Get("group_children"))
}

func TestBuildURL_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		target models.FetchTarget
	}{
		{"empty hotel", "https://www.booking.com", testTarget("")},
		{"slash in hotel", "https://www.booking.com", testTarget("a/b")},
		{"query in hotel", "https://www.booking.com", testTarget("a?b")},
		{"relative base", "www.booking.com", testTarget("a")},
		{"missing country", "https://www.booking.com", models.FetchTarget{HotelID: "a", Currency: "USD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildURL(tt.base, "en-gb", tt.target, Occupancy{Adults: 2})
			assert.Error(t, err)
		})
	}
}
