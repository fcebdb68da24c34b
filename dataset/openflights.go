package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// nullField is how OpenFlights marks a missing value.
const nullField = `\N`

// airportRow mirrors the 14 columns of OpenFlights airports.dat.
type airportRow struct {
	ID        string
	Name      string
	City      string
	Country   string
	IATA      string
	ICAO      string
	Latitude  string
	Longitude string
	Altitude  string
	UTCOffset string
	DST       string
	TzName    string
	Type      string
	Source    string
}

// routeRow mirrors the 9 columns of OpenFlights routes.dat.
type routeRow struct {
	Airline       string
	AirlineID     string
	Source        string
	SourceID      string
	Destination   string
	DestinationID string
	Codeshare     string
	Stops         string
	Equipment     string
}

// riskRow is one line of the country risk index; extra columns are ignored.
type riskRow struct {
	Country string `csv:"country"`
	Score   string `csv:"score"`
}

// airportRecord is a parsed airport before the risk-index join.
type airportRecord struct {
	ID        int     `validate:"gte=0"`
	Name      string  `validate:"required"`
	City      string
	Country   string  `validate:"required"`
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	Altitude  int
	Timezone  string
}

const (
	airportColumns = 14
	routeColumns   = 9
)

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

// fixedWidthReader pads or cuts every record to width columns so positional
// decoding never sees a ragged row.
type fixedWidthReader struct {
	r     *csv.Reader
	width int
}

func (f *fixedWidthReader) fit(record []string) []string {
	if len(record) >= f.width {
		return record[:f.width]
	}
	return append(record, make([]string, f.width-len(record))...)
}

func (f *fixedWidthReader) Read() ([]string, error) {
	record, err := f.r.Read()
	if err != nil {
		return nil, err
	}
	return f.fit(record), nil
}

func (f *fixedWidthReader) ReadAll() ([][]string, error) {
	records, err := f.r.ReadAll()
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i] = f.fit(records[i])
	}
	return records, nil
}

func decodeAirportRows(r io.Reader) ([]airportRow, error) {
	var rows []airportRow
	in := &fixedWidthReader{r: newCSVReader(r), width: airportColumns}
	if err := gocsv.UnmarshalCSVWithoutHeaders(in, &rows); err != nil {
		return nil, fmt.Errorf("decode airports: %w", err)
	}
	return rows, nil
}

func decodeRouteRows(r io.Reader) ([]routeRow, error) {
	var rows []routeRow
	in := &fixedWidthReader{r: newCSVReader(r), width: routeColumns}
	if err := gocsv.UnmarshalCSVWithoutHeaders(in, &rows); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	return rows, nil
}

// lowerHeaderReader lower-cases the header record so "Country" and "country"
// both match.
type lowerHeaderReader struct {
	r      *csv.Reader
	header bool
}

func (l *lowerHeaderReader) lower(record []string) []string {
	for i := range record {
		record[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(record[i], "\ufeff")))
	}
	return record
}

func (l *lowerHeaderReader) Read() ([]string, error) {
	record, err := l.r.Read()
	if err != nil {
		return nil, err
	}
	if !l.header {
		l.header = true
		return l.lower(record), nil
	}
	return record, nil
}

func (l *lowerHeaderReader) ReadAll() ([][]string, error) {
	records, err := l.r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && !l.header {
		l.header = true
		records[0] = l.lower(records[0])
	}
	return records, nil
}

func decodeRiskRows(r io.Reader) ([]riskRow, error) {
	var rows []riskRow
	if err := gocsv.UnmarshalCSV(&lowerHeaderReader{r: newCSVReader(r)}, &rows); err != nil {
		return nil, fmt.Errorf("decode risk index: %w", err)
	}
	return rows, nil
}

func isNull(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == nullField
}

func parseID(s string) (int, error) {
	if isNull(s) {
		return 0, fmt.Errorf("missing id")
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// toRecord converts the raw columns. Validation of ranges happens separately.
func (row airportRow) toRecord() (airportRecord, error) {
	id, err := parseID(row.ID)
	if err != nil {
		return airportRecord{}, fmt.Errorf("airport id %q: %w", row.ID, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(row.Latitude), 64)
	if err != nil {
		return airportRecord{}, fmt.Errorf("airport %d latitude %q: %w", id, row.Latitude, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(row.Longitude), 64)
	if err != nil {
		return airportRecord{}, fmt.Errorf("airport %d longitude %q: %w", id, row.Longitude, err)
	}

	altitude := 0
	if !isNull(row.Altitude) {
		alt, err := strconv.ParseFloat(strings.TrimSpace(row.Altitude), 64)
		if err != nil {
			return airportRecord{}, fmt.Errorf("airport %d altitude %q: %w", id, row.Altitude, err)
		}
		altitude = int(math.Round(alt))
	}

	tz := strings.TrimSpace(row.TzName)
	if isNull(tz) {
		tz = strings.TrimSpace(row.UTCOffset)
		if isNull(tz) {
			tz = ""
		}
	}

	city := strings.TrimSpace(row.City)
	if isNull(city) {
		city = ""
	}

	return airportRecord{
		ID:        id,
		Name:      strings.TrimSpace(row.Name),
		City:      city,
		Country:   strings.TrimSpace(row.Country),
		Latitude:  lat,
		Longitude: lon,
		Altitude:  altitude,
		Timezone:  tz,
	}, nil
}

// endpoints returns the source and destination airport ids of a route row.
func (row routeRow) endpoints() (int, int, error) {
	src, err := parseID(row.SourceID)
	if err != nil {
		return 0, 0, fmt.Errorf("route %s->%s source id %q: %w", row.Source, row.Destination, row.SourceID, err)
	}
	dst, err := parseID(row.DestinationID)
	if err != nil {
		return 0, 0, fmt.Errorf("route %s->%s destination id %q: %w", row.Source, row.Destination, row.DestinationID, err)
	}
	return src, dst, nil
}
