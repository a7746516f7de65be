package configs

import (
	"testing"
	"time"

	"github.com/projecteru2/ovsmap/pkg/test/assert"
)

func TestDefaults(t *testing.T) {
	cfg := newDefault()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 32, cfg.MaxConcurrency)
	assert.Equal(t, 10*time.Second, cfg.QueryTimeout.Duration())
	assert.Equal(t, 2, cfg.QueryRetries)
	assert.False(t, cfg.CheckFlowVlans)
	assert.False(t, cfg.MACPrefixFallback)
	assert.Equal(t, "ovs-vsctl", cfg.OvsVsctl)
}

func TestDecodeOverrides(t *testing.T) {
	ss := `
check_flow_vlans = true
mac_prefix_fallback = true
max_concurrency = 8
query_timeout = "3s"
	`
	cfg := newDefault()
	assert.NilErr(t, Decode(ss, &cfg))
	assert.True(t, cfg.CheckFlowVlans)
	assert.True(t, cfg.MACPrefixFallback)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, 3*time.Second, cfg.QueryTimeout.Duration())
	// untouched keys keep their defaults
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestDumpRoundTrip(t *testing.T) {
	cfg := newDefault()
	cfg.MaxConcurrency = 4

	raw, err := cfg.Dump()
	assert.NilErr(t, err)

	var got Config
	assert.NilErr(t, Decode(raw, &got))
	assert.Equal(t, cfg, got)
}
