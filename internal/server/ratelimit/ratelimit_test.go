package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Rules: []Rule{
			{Path: "/cvs", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
			{Path: "/cvs/", Method: "POST", Limit: 5, Window: time.Hour, Burst: 5},
			{Path: "/health", Method: "GET", Limit: 0},
		},
	}
}

func TestLimiter_EnforcesBurst(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	allowed, _ := l.Allow("1.2.3.4", "/cvs", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/cvs", "POST")
	assert.True(t, allowed)

	allowed, info := l.Allow("1.2.3.4", "/cvs", "POST")
	require.False(t, allowed)
	assert.Equal(t, 2, info.Limit)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("1.2.3.4", "/cvs", "POST")
	l.Allow("1.2.3.4", "/cvs", "POST")

	allowed, _ := l.Allow("5.6.7.8", "/cvs", "POST")
	assert.True(t, allowed)
}

func TestLimiter_PrefixRuleMatchesSubpaths(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	_, info := l.Allow("1.2.3.4", "/cvs/abc/sections/sec_001/rewrite", "POST")
	assert.Equal(t, 5, info.Limit)
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/cvs", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_UnmatchedPathUsesDefault(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	_, info := l.Allow("1.2.3.4", "/other", "GET")
	assert.Equal(t, 100, info.Limit)
}
