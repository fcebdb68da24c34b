package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gilby125/airport-network/graph"
	"github.com/gilby125/airport-network/pkg/cache"
)

// toolset answers MCP tool calls from a loaded graph.
type toolset struct {
	g        *graph.Graph
	cache    *cache.CacheManager // optional
	cacheTTL time.Duration
	maxRank  int
}

type namedAirport struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (t *toolset) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("airport_lookup",
		mcp.WithDescription("Look up an airport by its OpenFlights id, with its direct neighbours"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("OpenFlights airport id (e.g., 3797 for JFK)"),
		),
	), t.lookup)

	s.AddTool(mcp.NewTool("airports_connected",
		mcp.WithDescription("Report whether any chain of routes joins two airports"),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Origin airport id")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Destination airport id")),
	), t.connected)

	s.AddTool(mcp.NewTool("close_airports",
		mcp.WithDescription("Find airports close to every one of the given airports"),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Comma separated airport ids (e.g., '3797,3484')"),
		),
		mcp.WithNumber("max_km",
			mcp.Required(),
			mcp.Description("Distance limit in kilometers"),
		),
		mcp.WithString("mode",
			mcp.Description("'adjacent' (direct route within max_km, default) or 'reachable' (any route chain within max_km)"),
		),
	), t.close)

	s.AddTool(mcp.NewTool("rank_airports",
		mcp.WithDescription("Rank airports by country risk score, then by number of routes"),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Comma separated candidate airport ids"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default 5)"),
		),
	), t.rank)
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return argsMap, nil
}

func intArg(args map[string]interface{}, name string, def int, required bool) (int, error) {
	switch v := args[name].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number", name)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", name)
		}
		return n, nil
	case nil:
		if required {
			return 0, fmt.Errorf("%s is required", name)
		}
		return def, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

func idsArg(args map[string]interface{}) ([]int, error) {
	raw, _ := args["ids"].(string)
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("ids is required")
	}
	ids := make([]int, len(fields))
	for i, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid airport id %q", f)
		}
		ids[i] = id
	}
	return ids, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error marshaling response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (t *toolset) named(ids []int) []namedAirport {
	out := make([]namedAirport, 0, len(ids))
	for _, id := range ids {
		a, err := t.g.Airport(id)
		if err != nil {
			continue
		}
		out = append(out, namedAirport{ID: id, Name: a.Name})
	}
	return out
}

// cached answers from the cache when one is configured.
func (t *toolset) cached(ctx context.Context, key string, fn func() ([]int, error)) ([]int, error) {
	if t.cache == nil {
		return fn()
	}
	var ids []int
	_, err := t.cache.GetOrSet(ctx, key, t.cacheTTL, &ids, func() (interface{}, error) { return fn() })
	return ids, err
}

func (t *toolset) lookup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := intArg(args, "id", 0, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	airport, err := t.g.Airport(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	neighbours, _ := t.g.Neighbours(id)

	return jsonResult(map[string]interface{}{
		"airport":    airport,
		"degree":     len(neighbours),
		"neighbours": t.named(neighbours),
	})
}

func (t *toolset) connected(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := intArg(args, "from", 0, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := intArg(args, "to", 0, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ok, err := t.g.IsConnected(from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]interface{}{
		"from":      from,
		"to":        to,
		"connected": ok,
	})
}

func (t *toolset) close(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seeds, err := idsArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxKm, err := intArg(args, "max_km", 0, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	modeStr, _ := args["mode"].(string)
	mode, err := graph.ParseProximity(modeStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ids, err := t.cached(ctx, cache.CloseKey(mode.String(), seeds, maxKm), func() ([]int, error) {
		set, err := t.g.Close(mode, seeds, maxKm)
		if err != nil {
			return nil, err
		}
		return set.Sorted(), nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]interface{}{
		"mode":     mode.String(),
		"max_km":   maxKm,
		"count":    len(ids),
		"airports": t.named(ids),
	})
}

func (t *toolset) rank(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := idsArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit, err := intArg(args, "limit", 5, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if t.maxRank > 0 && limit > t.maxRank {
		limit = t.maxRank
	}

	ranked, err := t.cached(ctx, cache.RankKey("composite", ids, limit), func() ([]int, error) {
		return t.g.Rank(ids, limit)
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]interface{}{
		"metric":   t.g.Metric().String(),
		"limit":    limit,
		"airports": t.named(ranked),
	})
}
