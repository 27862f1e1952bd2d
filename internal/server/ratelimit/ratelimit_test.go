package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		Enabled:         true,
		Capacity:        12,
		RefillPerMinute: 60,
		DefaultCost:     1,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointCosts:   DefaultEndpointCosts(),
	}
}

// fixedClock returns a limiter clock frozen at base plus a setter to advance it.
func fixedClock(base time.Time) (func() time.Time, func(time.Duration)) {
	var mu sync.Mutex
	now := base
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}, func(d time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(d)
		}
}

func TestAllow_DrawsEndpointCost(t *testing.T) {
	clock, _ := fixedClock(time.Unix(1000, 0))
	limiter := NewLimiter(testConfig(), WithClock(clock))
	defer limiter.Stop()

	// Capacity 12, analysis costs 5: two calls fit, the third does not.
	for i := 0; i < 2; i++ {
		allowed, info := limiter.Allow("client1", "/v1/analyze", "POST")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if info.Limit != 12 {
			t.Errorf("expected limit 12, got %d", info.Limit)
		}
	}

	allowed, info := limiter.Allow("client1", "/v1/analyze", "POST")
	if allowed {
		t.Error("third analysis should exceed the budget")
	}
	if info.Remaining != 2 {
		t.Errorf("expected 2 tokens remaining, got %d", info.Remaining)
	}
	if info.RetryAfter <= 0 {
		t.Error("denied request should carry a retry-after hint")
	}
}

func TestAllow_SharedBudgetAcrossEndpoints(t *testing.T) {
	clock, _ := fixedClock(time.Unix(1000, 0))
	limiter := NewLimiter(testConfig(), WithClock(clock))
	defer limiter.Stop()

	// Two analyses (cost 5 each) leave 2 tokens; searches (cost 1) drain
	// the rest from the same bucket.
	for i := 0; i < 2; i++ {
		if allowed, _ := limiter.Allow("client1", "/v1/analyze", "POST"); !allowed {
			t.Fatalf("analysis %d should be allowed", i+1)
		}
	}
	for i := 0; i < 2; i++ {
		if allowed, _ := limiter.Allow("client1", "/v1/occupations/search", "GET"); !allowed {
			t.Fatalf("search %d should be allowed", i+1)
		}
	}

	if allowed, _ := limiter.Allow("client1", "/v1/occupations/search", "GET"); allowed {
		t.Error("budget should be exhausted across endpoints")
	}
}

func TestAllow_RefillRestoresBudget(t *testing.T) {
	clock, advance := fixedClock(time.Unix(1000, 0))
	limiter := NewLimiter(testConfig(), WithClock(clock))
	defer limiter.Stop()

	for i := 0; i < 12; i++ {
		if allowed, _ := limiter.Allow("client1", "/v1/occupations/search", "GET"); !allowed {
			t.Fatalf("search %d should be allowed", i+1)
		}
	}
	if allowed, _ := limiter.Allow("client1", "/v1/occupations/search", "GET"); allowed {
		t.Fatal("budget should be empty")
	}

	// Refill is 60 per minute, so 5 seconds restores 5 tokens.
	advance(5 * time.Second)
	allowed, info := limiter.Allow("client1", "/v1/analyze", "POST")
	if !allowed {
		t.Error("refilled budget should cover one analysis")
	}
	if info.Remaining != 0 {
		t.Errorf("expected 0 tokens remaining, got %d", info.Remaining)
	}
}

func TestAllow_ExemptHealthEndpoint(t *testing.T) {
	clock, _ := fixedClock(time.Unix(1000, 0))
	limiter := NewLimiter(testConfig(), WithClock(clock))
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("client1", "/v1/health", "GET")
		if !allowed {
			t.Fatalf("health check %d should never be limited", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("exempt endpoint should report limit 0, got %d", info.Limit)
		}
	}
}

func TestAllow_IsolatesClients(t *testing.T) {
	clock, _ := fixedClock(time.Unix(1000, 0))
	limiter := NewLimiter(testConfig(), WithClock(clock))
	defer limiter.Stop()

	for i := 0; i < 12; i++ {
		limiter.Allow("client1", "/v1/occupations/search", "GET")
	}
	if allowed, _ := limiter.Allow("client1", "/v1/occupations/search", "GET"); allowed {
		t.Fatal("client1 budget should be empty")
	}

	if allowed, _ := limiter.Allow("client2", "/v1/occupations/search", "GET"); !allowed {
		t.Error("client2 should have its own budget")
	}
}

func TestAllow_Whitelist(t *testing.T) {
	config := testConfig()
	config.Whitelist["trusted"] = true
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("trusted", "/v1/evidence/refresh", "POST")
		if !allowed {
			t.Fatalf("whitelisted request %d should be allowed", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("whitelisted client should report limit 0, got %d", info.Limit)
		}
	}
}

func TestAllow_Blacklist(t *testing.T) {
	config := testConfig()
	config.Blacklist["blocked"] = true
	limiter := NewLimiter(config)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("blocked", "/v1/occupations/search", "GET")
	if allowed {
		t.Error("blacklisted client should be denied")
	}
}

func TestAllow_Disabled(t *testing.T) {
	config := testConfig()
	config.Enabled = false
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("client1", "/v1/evidence/refresh", "POST"); !allowed {
			t.Fatalf("request %d should be allowed with limiting disabled", i+1)
		}
	}
}

func TestAllow_ConcurrentExactBudget(t *testing.T) {
	clock, _ := fixedClock(time.Unix(1000, 0))
	config := testConfig()
	config.Capacity = 50
	limiter := NewLimiter(config, WithClock(clock))
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("client1", "/v1/occupations/search", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 50 {
		t.Errorf("expected exactly 50 allowed requests, got %d", allowedCount)
	}
}

func TestCleanupBuckets_RemovesIdleClients(t *testing.T) {
	clock, advance := fixedClock(time.Unix(1000, 0))
	limiter := NewLimiter(testConfig(), WithClock(clock))
	defer limiter.Stop()

	limiter.Allow("idle", "/v1/occupations/search", "GET")
	advance(2 * time.Hour)
	limiter.Allow("active", "/v1/occupations/search", "GET")

	limiter.cleanupBuckets()

	limiter.mu.RLock()
	_, idleKept := limiter.buckets["idle"]
	_, activeKept := limiter.buckets["active"]
	limiter.mu.RUnlock()

	if idleKept {
		t.Error("idle client bucket should be removed")
	}
	if !activeKept {
		t.Error("active client bucket should be kept")
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("client1", "/v1/occupations/search", "GET")
	if !allowed {
		t.Error("first request against defaults should be allowed")
	}
	if info.Limit != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, info.Limit)
	}
}

func TestCostFor_ExactAndDefault(t *testing.T) {
	costs := DefaultEndpointCosts()

	if got := CostFor("/v1/evidence/refresh", "POST", costs, 1); got != 60 {
		t.Errorf("expected refresh cost 60, got %d", got)
	}
	if got := CostFor("/v1/health", "GET", costs, 1); got != 0 {
		t.Errorf("expected health cost 0, got %d", got)
	}
	if got := CostFor("/v1/unknown", "GET", costs, 1); got != 1 {
		t.Errorf("expected default cost 1, got %d", got)
	}
	// Method must match too.
	if got := CostFor("/v1/analyze", "GET", costs, 1); got != 1 {
		t.Errorf("expected default cost for method mismatch, got %d", got)
	}
}

func TestCostFor_PrefixMatch(t *testing.T) {
	costs := []EndpointCost{
		{Path: "/v1/occupations/", Method: "GET", Cost: 2},
		{Path: "/v1/occupations/search", Method: "GET", Cost: 1},
	}

	// Exact match wins over the broader prefix.
	if got := CostFor("/v1/occupations/search", "GET", costs, 9); got != 1 {
		t.Errorf("expected exact match cost 1, got %d", got)
	}
	if got := CostFor("/v1/occupations/47-2031", "GET", costs, 9); got != 2 {
		t.Errorf("expected prefix match cost 2, got %d", got)
	}
}
