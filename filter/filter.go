package filter

import (
	"hotel-rates-scraper/config"
	"hotel-rates-scraper/models"
)

// Filter applies filter criteria to room records
type Filter struct {
	cfg config.FilterConfig
}

// NewFilter creates a new Filter instance
func NewFilter(cfg config.FilterConfig) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// Active reports whether any criterion is set
func (f *Filter) Active() bool {
	return f.cfg.MinPrice > 0 || f.cfg.MaxPrice > 0
}

// ApplyFilters filters records based on the configuration
func (f *Filter) ApplyFilters(records []models.RoomRecord) []models.RoomRecord {
	if !f.Active() {
		return records
	}

	var filtered []models.RoomRecord
	for _, record := range records {
		if f.matchesFilters(record) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// matchesFilters checks if a record falls inside the price band.
// A zero bound is open.
func (f *Filter) matchesFilters(record models.RoomRecord) bool {
	if f.cfg.MinPrice > 0 && record.PriceMinorUnits < f.cfg.MinPrice {
		return false
	}
	if f.cfg.MaxPrice > 0 && record.PriceMinorUnits > f.cfg.MaxPrice {
		return false
	}
	return true
}
