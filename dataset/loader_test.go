package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilby125/airport-network/graph"
)

const airportsFixture = `1,"Alpha","Ottawa","Canada","AAA","CAAA",45.0,-75.0,374,-5,"A","America/Toronto","airport","OurAirports"
2,"Bravo","Abidjan","Côte d'Ivoire","BBB","DBBB",5.0,-4.0,21,0,"N","Africa/Abidjan","airport","OurAirports"
3,"Charlie","Poseidonia","Atlantis","CCC","XCCC",10.0,10.0,0,0,"N","\N","airport","OurAirports"
4,"Delta","Toronto","Canada","DDD","CDDD",43.6,-79.6,569,-5,"A","America/Toronto","airport","OurAirports"
5,"Echo","Montreal","Canada","EEE","CEEE",abc,-73.7,118,-5,"A","America/Toronto","airport","OurAirports"
6,"Foxtrot","Nowhere","France","FFF","LFFF",95.0,2.0,0,1,"E","Europe/Paris","airport","OurAirports"
7,"Golf","Paris","France","GGG","LGGG",48.0,2.0,\N,1,"E",\N,"airport","OurAirports"
`

const routesFixture = `AC,330,AAA,1,BBB,2,,0,320
AC,330,BBB,2,AAA,1,,0,320
AF,137,AAA,1,GGG,7,,0,320
XX,1,AAA,1,CCC,3,,0,320
XX,1,AAA,1,ZZZ,\N,,0,320
XX,1,GGG,7,GGG,7,,0,320
XX,1,FFF,6,AAA,1,,0,320
`

const riskFixture = "\ufeffCountry,Score,Region\nCanada,80,Americas\nCote d'Ivoire,55,Africa\nfrance,70,Europe\nNowhere,unknown,None\n"

func writeFixtures(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}
	return Sources{
		Airports:  write("airports.dat", airportsFixture),
		Routes:    write("routes.dat", routesFixture),
		RiskIndex: write("risk_index.csv", riskFixture),
	}
}

func TestLoader_LocalFiles(t *testing.T) {
	ds, err := NewLoader(Options{}).Load(context.Background(), writeFixtures(t))
	require.NoError(t, err)

	ids := make([]int, 0, len(ds.Airports))
	for _, a := range ds.Airports {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []int{1, 2, 7}, ids)
	assert.Equal(t, []graph.Route{{Source: 1, Destination: 2}, {Source: 1, Destination: 7}}, ds.Routes)

	assert.Equal(t, Stats{
		AirportRows:     7,
		RouteRows:       7,
		RiskRows:        4,
		InvalidAirports: 2,
		InvalidRoutes:   1,
		InvalidRisk:     1,
		UnknownCountry:  1,
		Unrouted:        1,
		DroppedRoutes:   3,
		DuplicateRoutes: 1,
		Airports:        3,
		Routes:          2,
	}, ds.Stats)
}

func TestLoader_AirportFields(t *testing.T) {
	ds, err := NewLoader(Options{}).Load(context.Background(), writeFixtures(t))
	require.NoError(t, err)

	byID := make(map[int]graph.Airport)
	for _, a := range ds.Airports {
		byID[a.ID] = a
	}

	alpha := byID[1]
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, "Ottawa", alpha.City)
	assert.Equal(t, 374, alpha.Altitude)
	assert.Equal(t, "America/Toronto", alpha.Timezone)
	assert.Equal(t, 80.0, alpha.RiskScore)

	bravo := byID[2]
	assert.Equal(t, "Côte d'Ivoire", bravo.Country, "source spelling is kept")
	assert.Equal(t, 55.0, bravo.RiskScore)

	golf := byID[7]
	assert.Equal(t, 0, golf.Altitude)
	assert.Equal(t, "1", golf.Timezone, "falls back to the UTC offset")
	assert.Equal(t, 70.0, golf.RiskScore)
}

func TestLoader_BuildsGraph(t *testing.T) {
	ds, err := NewLoader(Options{}).Load(context.Background(), writeFixtures(t))
	require.NoError(t, err)

	g, stats, err := ds.Build(graph.SafetyIndex)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.RouteCount())
	assert.Zero(t, stats.UnknownEndpoints)

	ok, err := g.IsConnected(2, 7)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoader_RemoteSources(t *testing.T) {
	var routeHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/airports.dat", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(airportsFixture))
	})
	mux.HandleFunc("/routes.dat", func(w http.ResponseWriter, r *http.Request) {
		// first attempt fails to exercise the retry
		if atomic.AddInt32(&routeHits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(routesFixture))
	})
	mux.HandleFunc("/risk.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(riskFixture))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	loader := NewLoader(Options{HTTPTimeout: 5 * time.Second, RetryMax: 2})
	loader.client.RetryWaitMin = time.Millisecond
	loader.client.RetryWaitMax = 5 * time.Millisecond

	ds, err := loader.Load(context.Background(), Sources{
		Airports:  srv.URL + "/airports.dat",
		Routes:    srv.URL + "/routes.dat",
		RiskIndex: srv.URL + "/risk.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Stats.Airports)
	assert.Equal(t, 2, ds.Stats.Routes)
	assert.EqualValues(t, 2, atomic.LoadInt32(&routeHits))
}

func TestLoader_Errors(t *testing.T) {
	src := writeFixtures(t)

	t.Run("missing file", func(t *testing.T) {
		bad := src
		bad.Routes = filepath.Join(t.TempDir(), "nope.dat")
		_, err := NewLoader(Options{}).Load(context.Background(), bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope.dat")
	})

	t.Run("empty source", func(t *testing.T) {
		bad := src
		bad.Airports = " "
		_, err := NewLoader(Options{}).Load(context.Background(), bad)
		assert.Error(t, err)
	})

	t.Run("not found upstream", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		bad := src
		bad.RiskIndex = srv.URL + "/risk.csv"
		_, err := NewLoader(Options{RetryMax: 0}).Load(context.Background(), bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("risk index without usable rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "risk.csv")
		require.NoError(t, os.WriteFile(path, []byte("nation,value\nCanada,80\n"), 0o600))
		bad := src
		bad.RiskIndex = path
		_, err := NewLoader(Options{}).Load(context.Background(), bad)
		assert.Error(t, err)
	})
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Canada", "canada"},
		{"  Côte d'Ivoire ", "cote d'ivoire"},
		{"Curaçao", "curacao"},
		{"United   States", "united states"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCountry(tt.in), tt.in)
	}
	assert.Equal(t, NormalizeCountry("RÉUNION"), NormalizeCountry("Reunion"))
}

func TestDecodeAirportRows_RaggedRows(t *testing.T) {
	rows, err := decodeAirportRows(strings.NewReader("9,\"Short\",\"Town\",\"Canada\"\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Short", rows[0].Name)
	assert.Empty(t, rows[0].Latitude)

	_, err = rows[0].toRecord()
	assert.Error(t, err)
}
