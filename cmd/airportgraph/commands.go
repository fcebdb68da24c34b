package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gilby125/airport-network/config"
	"github.com/gilby125/airport-network/dataset"
	"github.com/gilby125/airport-network/graph"
	"github.com/gilby125/airport-network/pkg/logger"
)

// cli holds the flags shared by every subcommand.
type cli struct {
	airports string
	routes   string
	risk     string
	metric   string
	asJSON   bool
	opts     config.DatasetConfig
}

func newRootCmd(defaults config.DatasetConfig) *cobra.Command {
	c := &cli{opts: defaults}

	root := &cobra.Command{
		Use:          "airportgraph",
		Short:        "Query the OpenFlights airport network offline",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.airports, "airports", defaults.AirportsSource, "airports.dat path or URL")
	flags.StringVar(&c.routes, "routes", defaults.RoutesSource, "routes.dat path or URL")
	flags.StringVar(&c.risk, "risk", defaults.RiskIndexSource, "country risk index CSV path or URL")
	flags.StringVar(&c.metric, "metric", defaults.RiskMetric, "risk metric: safety (higher is better) or peace (lower is better)")
	flags.BoolVar(&c.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(c.statsCmd(), c.connectedCmd(), c.closeCmd(), c.rankCmd(), c.nearestCmd())
	return root
}

func (c *cli) load(cmd *cobra.Command) (*graph.Graph, *dataset.Dataset, error) {
	metric, err := graph.ParseRiskMetric(c.metric)
	if err != nil {
		return nil, nil, err
	}
	loader := dataset.NewLoader(dataset.Options{
		HTTPTimeout: c.opts.HTTPTimeout,
		RetryMax:    c.opts.RetryMax,
		Logger:      logger.Default(),
	})
	ds, err := loader.Load(cmd.Context(), dataset.Sources{
		Airports:  c.airports,
		Routes:    c.routes,
		RiskIndex: c.risk,
	})
	if err != nil {
		return nil, nil, err
	}
	g, _, err := ds.Build(metric)
	if err != nil {
		return nil, nil, err
	}
	return g, ds, nil
}

func parseArgs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid airport id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c *cli) print(w io.Writer, v interface{}, table func(*tabwriter.Writer)) error {
	if c.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func (c *cli) airportTable(g *graph.Graph, ids []int) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tRISK\tROUTES")
		for _, id := range ids {
			a, _ := g.Airport(id)
			deg, _ := g.Degree(id)
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%d\n", a.ID, a.Name, a.Country, a.RiskScore, deg)
		}
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Load the dataset and report what was kept and dropped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ds, err := c.load(cmd)
			if err != nil {
				return err
			}
			out := map[string]interface{}{
				"airports": g.Len(),
				"routes":   g.RouteCount(),
				"metric":   g.Metric().String(),
				"dataset":  ds.Stats,
			}
			return c.print(cmd.OutOrStdout(), out, func(tw *tabwriter.Writer) {
				s := ds.Stats
				fmt.Fprintf(tw, "airports\t%d\n", g.Len())
				fmt.Fprintf(tw, "routes\t%d\n", g.RouteCount())
				fmt.Fprintf(tw, "metric\t%s\n", g.Metric())
				fmt.Fprintf(tw, "airport rows\t%d\n", s.AirportRows)
				fmt.Fprintf(tw, "invalid airports\t%d\n", s.InvalidAirports)
				fmt.Fprintf(tw, "unknown country\t%d\n", s.UnknownCountry)
				fmt.Fprintf(tw, "without routes\t%d\n", s.Unrouted)
				fmt.Fprintf(tw, "route rows\t%d\n", s.RouteRows)
				fmt.Fprintf(tw, "invalid routes\t%d\n", s.InvalidRoutes)
				fmt.Fprintf(tw, "dropped routes\t%d\n", s.DroppedRoutes)
				fmt.Fprintf(tw, "duplicate routes\t%d\n", s.DuplicateRoutes)
			})
		},
	}
}

func (c *cli) connectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connected FROM TO",
		Short: "Report whether a chain of routes joins two airports",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseArgs(args)
			if err != nil {
				return err
			}
			g, _, err := c.load(cmd)
			if err != nil {
				return err
			}
			ok, err := g.IsConnected(ids[0], ids[1])
			if err != nil {
				return err
			}
			out := map[string]interface{}{"from": ids[0], "to": ids[1], "connected": ok}
			return c.print(cmd.OutOrStdout(), out, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "%d -> %d\tconnected=%t\n", ids[0], ids[1], ok)
			})
		},
	}
}

func (c *cli) closeCmd() *cobra.Command {
	var (
		maxKm int
		mode  string
	)
	cmd := &cobra.Command{
		Use:   "close ID [ID...]",
		Short: "List airports close to every given airport",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := parseArgs(args)
			if err != nil {
				return err
			}
			proximity, err := graph.ParseProximity(mode)
			if err != nil {
				return err
			}
			g, _, err := c.load(cmd)
			if err != nil {
				return err
			}
			set, err := g.Close(proximity, seeds, maxKm)
			if err != nil {
				return err
			}
			ids := set.Sorted()
			return c.print(cmd.OutOrStdout(), map[string]interface{}{"airports": ids}, c.airportTable(g, ids))
		},
	}
	cmd.Flags().IntVar(&maxKm, "max", 500, "distance limit in kilometers")
	cmd.Flags().StringVar(&mode, "mode", "adjacent", "adjacent or reachable")
	return cmd
}

func (c *cli) rankCmd() *cobra.Command {
	var (
		limit int
		by    string
	)
	cmd := &cobra.Command{
		Use:   "rank ID [ID...]",
		Short: "Rank candidate airports by country risk and route count",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseArgs(args)
			if err != nil {
				return err
			}
			g, _, err := c.load(cmd)
			if err != nil {
				return err
			}
			var ranked []int
			switch by {
			case "composite":
				ranked, err = g.Rank(ids, limit)
			case "degree":
				ranked, err = g.RankByDegree(ids, limit)
			case "risk":
				ranked, err = g.RankByRisk(ids, limit)
			default:
				return fmt.Errorf("unknown ranking %q (composite, degree or risk)", by)
			}
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), map[string]interface{}{"airports": ranked}, c.airportTable(g, ranked))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of results")
	cmd.Flags().StringVar(&by, "by", "composite", "composite, degree or risk")
	return cmd
}

func (c *cli) nearestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nearest LAT LON",
		Short: "Find the airport closest to a coordinate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[0])
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[1])
			}
			g, _, err := c.load(cmd)
			if err != nil {
				return err
			}
			a, dist, err := g.Nearest(lat, lon)
			if err != nil {
				return err
			}
			out := map[string]interface{}{"airport": a, "distance_km": dist}
			return c.print(cmd.OutOrStdout(), out, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d km\n", a.ID, a.Name, a.Country, dist)
			})
		},
		Example: `  airportgraph nearest 48.85 2.35
  airportgraph nearest -- -33.94 151.17`,
	}
}
