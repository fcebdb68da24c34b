package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilby125/airport-network/graph"
	"github.com/gilby125/airport-network/pkg/cache"
)

func testTools(t *testing.T) *toolset {
	t.Helper()
	g, _, err := graph.Load(graph.SafetyIndex,
		[]graph.Airport{
			{ID: 1, Name: "One", Country: "Canada", Latitude: 0, Longitude: 0, RiskScore: 80},
			{ID: 2, Name: "Two", Country: "Canada", Latitude: 0, Longitude: 1, RiskScore: 80},
			{ID: 3, Name: "Three", Country: "France", Latitude: 0, Longitude: 2, RiskScore: 60},
			{ID: 4, Name: "Four", Country: "Chile", Latitude: 40, Longitude: 40, RiskScore: 50},
		},
		[]graph.Route{{1, 2}, {2, 3}},
	)
	require.NoError(t, err)
	return &toolset{g: g, maxRank: 10}
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (*mcp.CallToolResult, map[string]interface{}) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var body map[string]interface{}
	if !res.IsError {
		require.NoError(t, json.Unmarshal([]byte(text.Text), &body))
	}
	return res, body
}

func TestLookup(t *testing.T) {
	tools := testTools(t)

	res, body := call(t, tools.lookup, map[string]interface{}{"id": float64(2)})
	assert.False(t, res.IsError)
	assert.Equal(t, float64(2), body["degree"])
	assert.Len(t, body["neighbours"], 2)

	res, _ = call(t, tools.lookup, map[string]interface{}{"id": float64(99)})
	assert.True(t, res.IsError)

	res, _ = call(t, tools.lookup, map[string]interface{}{})
	assert.True(t, res.IsError)
}

func TestConnected(t *testing.T) {
	tools := testTools(t)

	_, body := call(t, tools.connected, map[string]interface{}{"from": float64(1), "to": float64(3)})
	assert.Equal(t, true, body["connected"])

	_, body = call(t, tools.connected, map[string]interface{}{"from": "1", "to": "4"})
	assert.Equal(t, false, body["connected"])
}

func TestClose(t *testing.T) {
	tools := testTools(t)

	_, body := call(t, tools.close, map[string]interface{}{"ids": "1, 3", "max_km": float64(111)})
	assert.Equal(t, "adjacent", body["mode"])
	assert.Equal(t, float64(1), body["count"])

	_, body = call(t, tools.close, map[string]interface{}{"ids": "1", "max_km": float64(300), "mode": "reachable"})
	assert.Equal(t, float64(3), body["count"])

	res, _ := call(t, tools.close, map[string]interface{}{"ids": "1", "max_km": float64(10), "mode": "nearby"})
	assert.True(t, res.IsError)

	res, _ = call(t, tools.close, map[string]interface{}{"ids": "", "max_km": float64(10)})
	assert.True(t, res.IsError)
}

func TestRank_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tools := testTools(t)
	tools.cache = cache.NewCacheManager(cache.NewRedisCache(client, "mcp"))
	tools.cacheTTL = time.Minute

	args := map[string]interface{}{"ids": "3,1,2", "limit": float64(2)}
	_, body := call(t, tools.rank, args)
	airports := body["airports"].([]interface{})
	require.Len(t, airports, 2)
	assert.Equal(t, "Two", airports[0].(map[string]interface{})["name"])
	assert.Equal(t, "One", airports[1].(map[string]interface{})["name"])
	assert.True(t, mr.Exists("mcp:"+cache.RankKey("composite", []int{3, 1, 2}, 2)))

	_, again := call(t, tools.rank, args)
	assert.Equal(t, body, again)

	res, _ := call(t, tools.rank, map[string]interface{}{"ids": "1,42"})
	assert.True(t, res.IsError)
}
