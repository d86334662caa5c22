package fetcher

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"hotel-rates-scraper/models"
)

// BuildURL interpolates the target into the hotel-details URL template:
//
//	{base}/hotel/{country}/{hotel}.{lang}.html?checkin=..&checkout=..&dist=0&group_adults=..&group_children=..&selected_currency=..
func BuildURL(base, lang string, target models.FetchTarget, occ Occupancy) (string, error) {
	if target.HotelID == "" || strings.ContainsAny(target.HotelID, "/?#") {
		return "", fmt.Errorf("invalid hotel identifier %q", target.HotelID)
	}
	if target.Country == "" || target.Currency == "" {
		return "", errors.New("country and currency are required")
	}

	parsedURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("base URL %q must be absolute", base)
	}

	page := target.HotelID + ".html"
	if lang != "" {
		page = target.HotelID + "." + lang + ".html"
	}
	parsedURL.Path = path.Join("/", parsedURL.Path, "hotel", target.Country, page)

	query := make(url.Values)
	query.Set("checkin", target.CheckIn.Format(models.DateLayout))
	query.Set("checkout", target.CheckOut.Format(models.DateLayout))
	query.Set("dist", "0")
	query.Set("group_adults", strconv.Itoa(occ.Adults))
	query.Set("group_children", strconv.Itoa(occ.Children))
	query.Set("selected_currency", target.Currency)
	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}
