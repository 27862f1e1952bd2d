package ratelimit

import (
	"strings"
)

// EndpointCost assigns a budget cost to an endpoint. A cost of zero exempts
// the endpoint from rate limiting.
type EndpointCost struct {
	Path   string // Endpoint path (a trailing "/" enables prefix matching)
	Method string // HTTP method (GET, POST, etc.)
	Cost   int    // Tokens drawn per request
}

// CostFor resolves the budget cost for a request. Exact path matches win over
// prefix matches; unmatched requests pay defaultCost.
func CostFor(path string, method string, costs []EndpointCost, defaultCost int) int {
	for i := range costs {
		c := &costs[i]
		if c.Path == path && c.Method == method {
			return c.Cost
		}
	}

	for i := range costs {
		c := &costs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c.Cost
		}
	}

	return defaultCost
}
