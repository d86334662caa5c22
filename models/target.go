package models

import (
	"fmt"
	"time"
)

// DateRange is one stay window
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// String formats the range as "checkin..checkout"
func (d DateRange) String() string {
	return fmt.Sprintf("%s..%s", d.CheckIn.Format(DateLayout), d.CheckOut.Format(DateLayout))
}

// Nights returns the number of nights in the range
func (d DateRange) Nights() int {
	return int(d.CheckOut.Sub(d.CheckIn).Hours() / 24)
}

// FetchTarget is one (hotel, date range) unit of work
type FetchTarget struct {
	HotelID  string // Lower-cased hotel identifier used in the page path
	CheckIn  time.Time
	CheckOut time.Time
	Country  string // ISO 3166-1 alpha-2, lower-cased
	Currency string // ISO 4217 code
}

// String identifies the target in logs
func (t FetchTarget) String() string {
	return fmt.Sprintf("%s@%s..%s", t.HotelID, t.CheckIn.Format(DateLayout), t.CheckOut.Format(DateLayout))
}

// FetchResult is the outcome of fetching one target.
// It is a Success when Err is nil and a Failure otherwise.
type FetchResult struct {
	Target FetchTarget
	URL    string
	Markup string
	Err    error
}

// OK reports whether the fetch succeeded
func (r FetchResult) OK() bool {
	return r.Err == nil
}

// Reason returns a human-readable failure reason, or "" on success
func (r FetchResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Failure is one entry of a run's failure log
type Failure struct {
	Target FetchTarget
	URL    string
	Reason string
	At     time.Time
}
