package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gilby125/airport-network/graph"
)

// parseIDs reads a comma separated id list such as "3364,3406, 507".
func parseIDs(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("ids query parameter is required: %w", graph.ErrInvalidArgument)
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid airport id %q: %w", p, graph.ErrInvalidArgument)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ids query parameter is required: %w", graph.ErrInvalidArgument)
	}
	return ids, nil
}

func parseInt(name, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q: %w", name, raw, graph.ErrInvalidArgument)
	}
	return v, nil
}

// requiredInt reads an integer query parameter that has no default.
func requiredInt(c *gin.Context, name string) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%s query parameter is required: %w", name, graph.ErrInvalidArgument)
	}
	return parseInt(name, raw)
}

// optionalInt reads an integer query parameter, falling back to def when absent.
func optionalInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return parseInt(name, raw)
}

func requiredFloat(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, fmt.Errorf("%s query parameter is required: %w", name, graph.ErrInvalidArgument)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q: %w", name, raw, graph.ErrInvalidArgument)
	}
	return v, nil
}
