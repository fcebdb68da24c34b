// Package dataset loads OpenFlights airports and routes together with a
// country risk index and turns them into records the graph package accepts.
package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anyascii/go"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/gilby125/airport-network/graph"
	"github.com/gilby125/airport-network/pkg/logger"
)

// Sources names where each input comes from: a local path or an http(s) URL.
type Sources struct {
	Airports  string
	Routes    string
	RiskIndex string
}

// Options tunes remote fetching.
type Options struct {
	HTTPTimeout time.Duration
	RetryMax    int
	Logger      *logger.Logger
}

// Stats counts what happened to every input row.
type Stats struct {
	AirportRows     int `json:"airport_rows"`
	RouteRows       int `json:"route_rows"`
	RiskRows        int `json:"risk_rows"`
	InvalidAirports int `json:"invalid_airports"`
	InvalidRoutes   int `json:"invalid_routes"`
	InvalidRisk     int `json:"invalid_risk"`
	UnknownCountry  int `json:"unknown_country"`
	Unrouted        int `json:"unrouted"`
	DroppedRoutes   int `json:"dropped_routes"`
	DuplicateRoutes int `json:"duplicate_routes"`
	Airports        int `json:"airports"`
	Routes          int `json:"routes"`
}

// Dataset is the cleaned output ready for graph.Load.
type Dataset struct {
	Airports []graph.Airport
	Routes   []graph.Route
	Stats    Stats
}

// Loader fetches, parses and joins the three inputs.
type Loader struct {
	client   *retryablehttp.Client
	validate *validator.Validate
	log      *logger.Logger
}

// NewLoader creates a loader.
func NewLoader(opts Options) *Loader {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.Logger = nil
	client.RetryWaitMin = 500 * time.Millisecond
	if opts.HTTPTimeout > 0 {
		client.HTTPClient.Timeout = opts.HTTPTimeout
	}

	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	return &Loader{
		client:   client,
		validate: validator.New(),
		log:      log.Component("dataset"),
	}
}

// Load reads all three sources concurrently and joins them.
func (l *Loader) Load(ctx context.Context, src Sources) (*Dataset, error) {
	var (
		airports []airportRow
		routes   []routeRow
		risk     []riskRow
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		airports, err = fetch(ctx, l, src.Airports, decodeAirportRows)
		return err
	})
	g.Go(func() error {
		var err error
		routes, err = fetch(ctx, l, src.Routes, decodeRouteRows)
		return err
	})
	g.Go(func() error {
		var err error
		risk, err = fetch(ctx, l, src.RiskIndex, decodeRiskRows)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds, err := l.join(airports, routes, risk)
	if err != nil {
		return nil, err
	}

	l.log.WithFields(map[string]interface{}{
		"airports":         ds.Stats.Airports,
		"routes":           ds.Stats.Routes,
		"invalid_airports": ds.Stats.InvalidAirports,
		"invalid_routes":   ds.Stats.InvalidRoutes,
		"unknown_country":  ds.Stats.UnknownCountry,
		"unrouted":         ds.Stats.Unrouted,
	}).Info("Dataset loaded")
	return ds, nil
}

func fetch[T any](ctx context.Context, l *Loader, source string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rows, err := decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	l.log.Debug("Source read", "source", source, "rows", len(rows))
	return rows, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("empty dataset source")
	}
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", source, err)
		}
		return f, nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", source, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", source, resp.StatusCode)
	}
	return resp.Body, nil
}

var folder = cases.Fold()

// NormalizeCountry folds a country name for joining sources that disagree
// on accents, case and spacing.
func NormalizeCountry(name string) string {
	ascii := anyascii.Transliterate(strings.TrimSpace(name))
	return folder.String(strings.Join(strings.Fields(ascii), " "))
}

func (l *Loader) riskIndex(rows []riskRow, stats *Stats) map[string]float64 {
	index := make(map[string]float64, len(rows))
	for _, row := range rows {
		stats.RiskRows++
		country := NormalizeCountry(row.Country)
		score, err := strconv.ParseFloat(strings.TrimSpace(row.Score), 64)
		if country == "" || err != nil {
			stats.InvalidRisk++
			continue
		}
		if _, ok := index[country]; !ok {
			index[country] = score
		}
	}
	return index
}

// join applies the filters: airports need a known country risk score and at
// least one route mentioning them; routes need both endpoints kept.
func (l *Loader) join(airportRows []airportRow, routeRows []routeRow, riskRows []riskRow) (*Dataset, error) {
	var stats Stats
	risk := l.riskIndex(riskRows, &stats)
	if len(risk) == 0 {
		return nil, fmt.Errorf("risk index has no usable rows (expected country and score columns)")
	}

	type pair struct{ src, dst int }
	var pairs []pair
	referenced := make(map[int]bool)
	for _, row := range routeRows {
		stats.RouteRows++
		src, dst, err := row.endpoints()
		if err != nil {
			stats.InvalidRoutes++
			l.log.Debug("Route dropped", "error", err)
			continue
		}
		referenced[src] = true
		referenced[dst] = true
		pairs = append(pairs, pair{src, dst})
	}

	ds := &Dataset{}
	kept := make(map[int]bool)
	for _, row := range airportRows {
		stats.AirportRows++
		rec, err := row.toRecord()
		if err == nil {
			err = l.validate.Struct(rec)
		}
		if err != nil {
			stats.InvalidAirports++
			l.log.Debug("Airport dropped", "error", err)
			continue
		}
		score, ok := risk[NormalizeCountry(rec.Country)]
		if !ok {
			stats.UnknownCountry++
			continue
		}
		if !referenced[rec.ID] {
			stats.Unrouted++
			continue
		}
		if kept[rec.ID] {
			continue
		}
		kept[rec.ID] = true
		ds.Airports = append(ds.Airports, graph.Airport{
			ID:        rec.ID,
			Name:      rec.Name,
			City:      rec.City,
			Country:   rec.Country,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			Altitude:  rec.Altitude,
			Timezone:  rec.Timezone,
			RiskScore: score,
		})
	}

	seen := make(map[pair]bool)
	for _, p := range pairs {
		if p.src == p.dst || !kept[p.src] || !kept[p.dst] {
			stats.DroppedRoutes++
			continue
		}
		key := p
		if key.src > key.dst {
			key = pair{key.dst, key.src}
		}
		if seen[key] {
			stats.DuplicateRoutes++
			continue
		}
		seen[key] = true
		ds.Routes = append(ds.Routes, graph.Route{Source: p.src, Destination: p.dst})
	}

	stats.Airports = len(ds.Airports)
	stats.Routes = len(ds.Routes)
	ds.Stats = stats
	return ds, nil
}

// Build loads the dataset into a sealed graph.
func (d *Dataset) Build(metric graph.RiskMetric) (*graph.Graph, graph.LoadStats, error) {
	return graph.Load(metric, d.Airports, d.Routes)
}
