package parser

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"hotel-rates-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("hotel-rates-scraper/parser")

// Reasons a row is skipped
var (
	ErrMissingRoomName = errors.New("room name not found")
	ErrMissingPrice    = errors.New("price not found")
	ErrInvalidPrice    = errors.New("price is not a number")
)

// ParseError reports a page whose markup could not be read at all
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse page %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RowSkip reports a single room row that produced no record
type RowSkip struct {
	URL     string
	Row     int    // Position of the row on the page
	BlockID string // Room-block id of the row
	Err     error
}

func (e *RowSkip) Error() string {
	return fmt.Sprintf("skipped row %d (block %s) on %s: %v", e.Row, e.BlockID, e.URL, e.Err)
}

func (e *RowSkip) Unwrap() error {
	return e.Err
}

// Page holds everything extracted from one hotel page
type Page struct {
	Records []models.RoomRecord
	Skips   []error
}

// RoomParser extracts room offers from hotel-details markup
type RoomParser struct {
	markup Markup
}

// NewRoomParser creates a RoomParser reading the given markup layout
func NewRoomParser(markup Markup) *RoomParser {
	return &RoomParser{markup: markup}
}

// Rooms returns the room records of a fetched page as a lazy sequence.
// Each step yields either a record with a nil error, or a *RowSkip / *ParseError
// explaining why nothing was produced. The document is parsed on first use.
func (p *RoomParser) Rooms(ctx context.Context, page models.FetchResult) iter.Seq2[models.RoomRecord, error] {
	return func(yield func(models.RoomRecord, error) bool) {
		_, span := tracer.Start(ctx, "parser.Rooms")
		defer span.End()

		var records, skips int
		defer func() {
			span.SetAttributes(
				attribute.String("url", page.URL),
				attribute.Int("records", records),
				attribute.Int("skips", skips),
			)
		}()

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Markup))
		if err != nil {
			skips++
			span.RecordError(err)
			yield(models.RoomRecord{}, &ParseError{URL: page.URL, Err: err})
			return
		}

		hotelName := normalizeWhitespace(doc.Find(p.markup.HotelName).First().Text())
		if hotelName == "" {
			hotelName = page.Target.HotelID
		}

		row := 0
		for _, table := range doc.Find(p.markup.PriceTable).EachIter() {
			for _, tr := range table.Find(p.markup.rowSelector()).EachIter() {
				record, err := p.extractRow(tr, row)
				row++
				if err != nil {
					skips++
					skip := &RowSkip{URL: page.URL, Row: row - 1, BlockID: tr.AttrOr(p.markup.RoomID, ""), Err: err}
					if !yield(models.RoomRecord{}, skip) {
						return
					}
					continue
				}

				record.HotelName = hotelName
				record.CheckIn = page.Target.CheckIn
				record.CheckOut = page.Target.CheckOut
				record.SourceURL = page.URL
				records++
				if !yield(record, nil) {
					return
				}
			}
		}
	}
}

// Parse drains Rooms into a Page
func (p *RoomParser) Parse(ctx context.Context, page models.FetchResult) Page {
	var out Page
	for record, err := range p.Rooms(ctx, page) {
		if err != nil {
			out.Skips = append(out.Skips, err)
			continue
		}
		out.Records = append(out.Records, record)
	}
	return out
}

// extractRow reads one room row. A panic while reading it is turned into
// an error so sibling rows are unaffected.
func (p *RoomParser) extractRow(tr *goquery.Selection, row int) (record models.RoomRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic extracting row %d: %v", row, r)
		}
	}()

	name := tr.Find(p.markup.RoomName).First()
	if name.Length() == 0 {
		return record, ErrMissingRoomName
	}
	record.RoomName = normalizeWhitespace(name.Text())
	if record.RoomName == "" {
		return record, ErrMissingRoomName
	}

	price := tr.Find(p.markup.Price).First()
	if price.Length() == 0 {
		return record, ErrMissingPrice
	}
	digits := DigitsOnly(price.Text())
	if digits == "" {
		return record, ErrMissingPrice
	}
	record.PriceMinorUnits, err = strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return record, fmt.Errorf("%w: %q", ErrInvalidPrice, digits)
	}

	record.Area, record.AreaUnit = p.extractArea(tr)
	return record, nil
}

// extractArea scans the row's candidate elements for the first area token
func (p *RoomParser) extractArea(tr *goquery.Selection) (float64, models.AreaUnit) {
	selector := p.markup.areaSelector()
	if selector == "" {
		return 0, ""
	}
	for _, candidate := range tr.Find(selector).EachIter() {
		if value, unit, ok := ParseArea(strippedText(candidate)); ok {
			return value, unit
		}
	}
	return 0, ""
}
